package clickhouse

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the three failure classes of a fetch.
var (
	// ErrTransport covers request construction and network failures.
	ErrTransport = errors.New("clickhouse transport failure")
	// ErrHTTPStatus is returned for any non-2xx response.
	ErrHTTPStatus = errors.New("clickhouse returned non-success status")
	// ErrMalformed is returned when the body is not the expected CSV.
	ErrMalformed = errors.New("malformed clickhouse response")
)

// StatusError carries the details of a non-2xx response.
type StatusError struct {
	Status  string
	Preview string
	Code    int
}

func (e *StatusError) Error() string {
	if e.Preview == "" {
		return fmt.Sprintf("clickhouse request failed (status %d)", e.Code)
	}
	return fmt.Sprintf("clickhouse request failed (status %d): %s", e.Code, e.Preview)
}

// Unwrap makes errors.Is(err, ErrHTTPStatus) hold.
func (e *StatusError) Unwrap() error {
	return ErrHTTPStatus
}

// SchemaError reports a header row that does not match Schema.
type SchemaError struct {
	Got  []string
	Want []string
}

func (e *SchemaError) Error() string {
	if len(e.Got) != len(e.Want) {
		return fmt.Sprintf("schema mismatch: got %d columns [%s], want %d",
			len(e.Got), strings.Join(e.Got, ","), len(e.Want))
	}
	for i := range e.Want {
		if e.Got[i] != e.Want[i] {
			return fmt.Sprintf("schema mismatch: column %d is %q, want %q", i+1, e.Got[i], e.Want[i])
		}
	}
	return "schema mismatch"
}

// Unwrap makes errors.Is(err, ErrMalformed) hold.
func (e *SchemaError) Unwrap() error {
	return ErrMalformed
}
