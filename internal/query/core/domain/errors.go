package domain

import "errors"

var (
	ErrInvalidQuery      = errors.New("invalid query")
	ErrInvalidFilter     = errors.New("invalid filter")
	ErrSourceUnavailable = errors.New("event source unavailable")
)
