// Package errs defines the coded error type used across the spatial text
// packages.
//
// Every error raised by this module carries a stable identifier (ID) and an
// ordered set of key/value debug fields describing the failing state (page
// numbers, lengths, coordinates). Callers compare errors with [errors.Is]
// against the exported sentinels; matching is by ID, so a sentinel matches
// any error created from it regardless of message or fields.
//
//	if errors.Is(err, errs.ErrPageDimensionMismatch) {
//	    // incompatible page info while merging
//	}
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ID is a stable error identifier.
type ID string

// Identifier ranges:
//
//	SS-1xxx precondition violations
//	SS-2xxx data incompatibility during merges
//	SS-3xxx format and version errors
//	SS-4xxx geometry errors
const (
	IDInvalidArgument        ID = "SS-1001"
	IDInvalidIndex           ID = "SS-1002"
	IDWrongMode              ID = "SS-1003"
	IDLengthMismatch         ID = "SS-1004"
	IDInvariant              ID = "SS-1005"
	IDNotInitialized         ID = "SS-1006"
	IDMissingPageInfo        ID = "SS-2001"
	IDPageDimensionMismatch  ID = "SS-2002"
	IDPageOrder              ID = "SS-2003"
	IDUnsupportedVersion     ID = "SS-3001"
	IDCorruptData            ID = "SS-3002"
	IDUnsupportedFormat      ID = "SS-3003"
	IDUnsupportedOrientation ID = "SS-4001"
	IDDegenerateZone         ID = "SS-4002"
)

// Sentinels for use with errors.Is.
var (
	ErrInvalidArgument        = &Error{ID: IDInvalidArgument, Message: "invalid argument"}
	ErrInvalidIndex           = &Error{ID: IDInvalidIndex, Message: "index out of range"}
	ErrWrongMode              = &Error{ID: IDWrongMode, Message: "operation not valid in this mode"}
	ErrLengthMismatch         = &Error{ID: IDLengthMismatch, Message: "letter array length does not match text length"}
	ErrInvariant              = &Error{ID: IDInvariant, Message: "spatial string invariant violated"}
	ErrNotInitialized         = &Error{ID: IDNotInitialized, Message: "object has not been initialized"}
	ErrMissingPageInfo        = &Error{ID: IDMissingPageInfo, Message: "missing page info"}
	ErrPageDimensionMismatch  = &Error{ID: IDPageDimensionMismatch, Message: "page dimensions do not match"}
	ErrPageOrder              = &Error{ID: IDPageOrder, Message: "page order violation"}
	ErrUnsupportedVersion     = &Error{ID: IDUnsupportedVersion, Message: "unsupported version"}
	ErrCorruptData            = &Error{ID: IDCorruptData, Message: "corrupt data"}
	ErrUnsupportedFormat      = &Error{ID: IDUnsupportedFormat, Message: "unsupported format"}
	ErrUnsupportedOrientation = &Error{ID: IDUnsupportedOrientation, Message: "unsupported page orientation"}
	ErrDegenerateZone         = &Error{ID: IDDegenerateZone, Message: "degenerate raster zone"}
)

// Field is a single debug key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// Error is a coded error with debug fields and an optional cause.
type Error struct {
	ID      ID
	Message string
	Fields  []Field
	Cause   error
}

// New creates an error from a sentinel, replacing the message and attaching
// key/value pairs. Odd trailing keys are recorded with a nil value.
func New(kind *Error, msg string, keysAndValues ...interface{}) *Error {
	return &Error{
		ID:      kind.ID,
		Message: msg,
		Fields:  fieldsFromKV(keysAndValues),
	}
}

// Wrap is like New but records cause as the underlying error.
func Wrap(cause error, kind *Error, msg string, keysAndValues ...interface{}) *Error {
	e := New(kind, msg, keysAndValues...)
	e.Cause = cause
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.ID))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		b.WriteString(" [")
		for i, f := range e.Fields {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%v", f.Key, f.Value)
		}
		b.WriteByte(']')
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same ID.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.ID == e.ID
}

// With returns a copy of the error with an extra debug field.
func (e *Error) With(key string, value interface{}) *Error {
	c := *e
	c.Fields = append(append([]Field(nil), e.Fields...), Field{Key: key, Value: value})
	return &c
}

// Get returns the value of the named debug field.
func (e *Error) Get(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// ToMap converts the error to a flat map, for structured log output.
func (e *Error) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_id": string(e.ID),
		"message":  e.Message,
	}
	for _, f := range e.Fields {
		result[f.Key] = f.Value
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}
	return result
}

// IDOf returns the ID of the first *Error in err's chain.
func IDOf(err error) (ID, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.ID, true
	}
	return "", false
}

func fieldsFromKV(kv []interface{}) []Field {
	if len(kv) == 0 {
		return nil
	}
	fields := make([]Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		var val interface{}
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		fields = append(fields, Field{Key: key, Value: val})
	}
	return fields
}
