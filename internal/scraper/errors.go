package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrNoYear means no bold heading with a four digit year precedes a schedule column.
	ErrNoYear = errors.New("no year heading")
	// ErrNoMonthDay means a schedule line has no "<Month> <Day>" text.
	ErrNoMonthDay = errors.New("no month and day")
	// ErrNoPage means Events or Extract was called without a document or page URL.
	ErrNoPage = errors.New("page document and URL are required")
)

// ContextError reports a schedule column whose year could not be resolved.
// None of the column's meetings are emitted.
type ContextError struct {
	Column  int
	Heading string
	Err     error
}

func (e *ContextError) Error() string {
	if e.Heading == "" {
		return fmt.Sprintf("schedule column %d: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("schedule column %d: %v (nearest heading %q)", e.Column, e.Err, e.Heading)
}

func (e *ContextError) Unwrap() error { return e.Err }

// LineError reports one schedule line that could not be turned into a date.
// Other lines of the same column are unaffected.
type LineError struct {
	Column int
	Line   string
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("schedule column %d, line %q: %v", e.Column, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
