package errs

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestErrorIsMatchesByID(t *testing.T) {
	err := New(ErrInvalidIndex, "position beyond end", "pos", 12, "len", 10)

	if !errors.Is(err, ErrInvalidIndex) {
		t.Error("errors.Is should match the sentinel with the same ID")
	}
	if errors.Is(err, ErrWrongMode) {
		t.Error("errors.Is should not match a different sentinel")
	}

	wrapped := fmt.Errorf("inserting: %w", err)
	if !errors.Is(wrapped, ErrInvalidIndex) {
		t.Error("errors.Is should see through fmt.Errorf wrapping")
	}
}

func TestErrorMessageAndFields(t *testing.T) {
	err := New(ErrPageDimensionMismatch, "page sizes differ", "page", 3, "width", 100)

	msg := err.Error()
	for _, want := range []string{"SS-2002", "page sizes differ", "page=3", "width=100"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	v, ok := err.Get("width")
	if !ok || v != 100 {
		t.Errorf("Get(width) = %v, %v", v, ok)
	}
	if _, ok := err.Get("missing"); ok {
		t.Error("Get() of an absent key should report false")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, ErrCorruptData, "truncated letter array", "offset", 40)

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("Wrap should keep the cause reachable")
	}
	if !errors.Is(err, ErrCorruptData) {
		t.Error("Wrap should match its own sentinel")
	}
	if !strings.Contains(err.Error(), "caused by") {
		t.Errorf("Error() = %q, want cause text", err.Error())
	}
}

func TestWithDoesNotMutate(t *testing.T) {
	base := New(ErrInvalidArgument, "bad")
	extended := base.With("k", "v")

	if len(base.Fields) != 0 {
		t.Errorf("With() mutated the receiver: %+v", base.Fields)
	}
	if len(extended.Fields) != 1 || extended.Fields[0].Key != "k" {
		t.Errorf("With() fields = %+v", extended.Fields)
	}
}

func TestOddKeyValues(t *testing.T) {
	err := New(ErrInvalidArgument, "odd", "lonely")
	if len(err.Fields) != 1 || err.Fields[0].Value != nil {
		t.Errorf("Fields = %+v, want one nil-valued field", err.Fields)
	}
}

func TestToMapAndIDOf(t *testing.T) {
	err := Wrap(io.EOF, ErrUnsupportedVersion, "too new", "version", 99)
	m := err.ToMap()
	if m["error_id"] != "SS-3001" || m["version"] != 99 || m["cause"] != "EOF" {
		t.Errorf("ToMap() = %v", m)
	}

	id, ok := IDOf(fmt.Errorf("outer: %w", err))
	if !ok || id != IDUnsupportedVersion {
		t.Errorf("IDOf() = %v, %v", id, ok)
	}
	if _, ok := IDOf(io.EOF); ok {
		t.Error("IDOf() of a plain error should report false")
	}
}
