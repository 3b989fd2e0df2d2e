package domain

import "errors"

var (
	ErrInvalidInterval      = errors.New("invalid interval")
	ErrInvalidDomain        = errors.New("invalid domain")
	ErrEvaluationTimeout    = errors.New("alert evaluation timed out")
	ErrRegistrationNotFound = errors.New("alert registration not found")
	ErrInvalidDefinition    = errors.New("invalid alert definition")
)
