package silence

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedField is wrapped by a ParseError when a recognized line
	// carries a missing or non-numeric value.
	ErrMalformedField = errors.New("malformed field")

	// ErrUnbalancedMarkers is wrapped by a ParseError when two markers of the
	// same kind follow each other, so starts and ends cannot be paired.
	ErrUnbalancedMarkers = errors.New("unbalanced silence markers")

	// ErrOutOfOrder is wrapped by a ParseError when a marker is earlier than
	// the boundary before it.
	ErrOutOfOrder = errors.New("silence markers out of order")
)

// ParseError reports a diagnostic stream that could not be turned into
// keep intervals.
type ParseError struct {
	Line  int    // 1-based line number, 0 when not tied to a line
	Field string // silence_start, silence_end or time
	Text  string // offending value
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse diagnostics")
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, " %q", e.Text)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AmbiguousDurationWarning is attached to a Result when the total duration
// was unknown and the final interval had to be closed at the sentinel.
//
// It satisfies error so callers can log or escalate it, but Complement never
// returns it as its error value.
type AmbiguousDurationWarning struct {
	Sentinel float64
}

func (w *AmbiguousDurationWarning) Error() string {
	return fmt.Sprintf("total duration unknown: final keep interval closed at sentinel %.0fs", w.Sentinel)
}
