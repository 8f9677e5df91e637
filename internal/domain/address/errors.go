package address

import "errors"

// Sentinel kinds for address normalization.
var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrBadChecksum    = errors.New("bad address checksum")
)
