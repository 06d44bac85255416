package telemetry

import "errors"

var (
	ErrAlreadyStarted = errors.New("telemetry hub already started")
	ErrNotStarted     = errors.New("telemetry hub not started")
)
