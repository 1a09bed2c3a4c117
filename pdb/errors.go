package pdb

import (
	"fmt"
)

// ParseError is returned when the input cannot be read as a structure file at
// all. No partial entry is ever returned alongside it.
type ParseError struct {
	// Line is the 1-indexed line where the problem was found, or 0 when the
	// problem isn't tied to a particular line (e.g., empty input).
	Line int

	// Record is the record name (e.g., "ATOM") on the offending line, if
	// there is one.
	Record string

	Reason string
}

func newParseError(line int, record, format string, v ...interface{}) error {
	return &ParseError{
		Line:   line,
		Record: record,
		Reason: fmt.Sprintf(format, v...),
	}
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && len(e.Record) > 0:
		return fmt.Sprintf("line %d (%s): %s", e.Line, e.Record, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

// NewParseError is used by other structure readers (i.e., mmCIF) so that
// every loader reports the same kind of error.
func NewParseError(line int, record, format string, v ...interface{}) error {
	return newParseError(line, record, format, v...)
}
