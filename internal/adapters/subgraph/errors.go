package subgraph

import (
	"errors"
	"strings"
)

// Sentinel kinds for subgraph failures.
var (
	ErrHTTPStatus = errors.New("subgraph http error")
	ErrQuery      = errors.New("subgraph query error")
	ErrDecode     = errors.New("subgraph decode error")
	ErrTransport  = errors.New("subgraph transport error")
)

// GraphQLError is one entry of a GraphQL errors array.
type GraphQLError struct {
	Message string `json:"message"`
}

// QueryError is returned when the subgraph answers with GraphQL errors.
type QueryError struct {
	Errors []GraphQLError
}

func (e *QueryError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return ErrQuery.Error() + ": " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrQuery.
func (e *QueryError) Unwrap() error { return ErrQuery }
