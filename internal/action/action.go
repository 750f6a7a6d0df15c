// Package action reads the action file and turns its lines into SET requests.
package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FieldCount is the number of whitespace separated fields in an action line.
const FieldCount = 4

// Sentinel causes carried by *ParseError.
var (
	ErrTooFewFields  = errors.New("expected <host> <community> <oid> <integer-value>")
	ErrTooManyFields = errors.New("unexpected fields after the integer value")
	ErrInvalidValue  = errors.New("value is not a 32-bit signed integer")
)

// Request is one validated action.
type Request struct {
	Line      int
	Host      string
	Community string
	OID       string
	Value     int32
}

// String renders the request in action-file syntax.
func (r Request) String() string {
	return fmt.Sprintf("%s %s %s %d", r.Host, r.Community, r.OID, r.Value)
}

// ParseError reports a malformed action line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: invalid action %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("invalid action %q: %v", e.Text, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse splits line on whitespace into host, community, OID and value.
// Fields after the value are ignored unless strict is set, in which case
// they make the line invalid.
func Parse(line string, strict bool) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) < FieldCount {
		return Request{}, &ParseError{Text: line, Err: ErrTooFewFields}
	}
	if strict && len(fields) > FieldCount {
		return Request{}, &ParseError{Text: line, Err: ErrTooManyFields}
	}

	value, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return Request{}, &ParseError{Text: line, Err: fmt.Errorf("%w: %q", ErrInvalidValue, fields[3])}
	}

	return Request{
		Host:      fields[0],
		Community: fields[1],
		OID:       fields[2],
		Value:     int32(value),
	}, nil
}

// IsBlank reports whether line holds nothing but whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// ParseLine is Parse with the 1-based source line number recorded on the
// request or on the returned *ParseError.
func ParseLine(n int, line string, strict bool) (Request, error) {
	req, err := Parse(line, strict)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Line = n
		}
		return Request{}, err
	}
	req.Line = n
	return req, nil
}
