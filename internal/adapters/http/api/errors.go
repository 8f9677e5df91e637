package api

import (
	"errors"
	"fmt"
)

// ErrBadRequest marks request bodies the API cannot decode or accept.
var ErrBadRequest = errors.New("bad request")

// wrapKind tags err with an operation name and a sentinel kind.
func wrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
