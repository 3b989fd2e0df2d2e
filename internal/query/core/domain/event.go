package domain

import "time"

// Event is a single recorded web analytics event as yielded by an EventSource.
// Missing dimension values are empty strings.
type Event struct {
	Timestamp time.Time
	Domain    string
	VisitorID string
	SessionID string

	// Name is the event name; page views carry View=true.
	Name string
	View bool

	Page           string
	EntryPage      string
	ExitPage       string
	Referrer       string
	Source         string
	UtmSource      string
	UtmMedium      string
	UtmCampaign    string
	UtmContent     string
	UtmTerm        string
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	Device         string
	Country        string
	Region         string
	City           string
	Host           string
}
