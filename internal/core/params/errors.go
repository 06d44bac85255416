package params

import "errors"

var (
	ErrMissingAsset = errors.New("missing asset")
	ErrInvalidStats = errors.New("invalid stats")
)
