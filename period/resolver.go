package period

import (
	"fmt"
	"time"
)

// Resolver resolves reporting periods relative to a clock.
type Resolver struct {
	Clock func() time.Time
}

// Resolve returns the window for ref, or for the clock's current date when
// ref is nil.
func (r Resolver) Resolve(ref *time.Time) Period {
	if ref != nil {
		return Resolve(*ref)
	}
	return Resolve(r.now())
}

func (r Resolver) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock()
}

// ParseError reports a reference date that is not a YYYY-MM-DD calendar date.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid reference date %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseDate parses a YYYY-MM-DD reference date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, &ParseError{Value: s, Err: err}
	}
	return t, nil
}
