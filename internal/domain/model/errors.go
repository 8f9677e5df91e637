package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrInvalidOptions = errors.New("invalid strategy options")
)
