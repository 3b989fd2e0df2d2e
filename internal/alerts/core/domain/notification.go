package domain

import "time"

// Notification describes one group that met an alert condition.
type Notification struct {
	Alert     string
	Domain    string
	Property  string
	Metric    string
	Key       string
	Value     float64
	Condition Condition
	Window    time.Duration
	Bucket    time.Time
	FiredAt   time.Time
}
