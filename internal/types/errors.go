package types

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by StructuralError.
var (
	// ErrUnbalanced is reported when BEGIN and END markers do not pair up.
	ErrUnbalanced = errors.New("unbalanced record markers")

	// ErrMissingFN is reported when a record has no FN property where one is mandatory.
	ErrMissingFN = errors.New("record has no FN property")

	// ErrStrayContent is reported for property lines outside of any record.
	ErrStrayContent = errors.New("content outside of a record")
)

// DecodeError is returned when a quoted-printable payload cannot be decoded,
// either because of an invalid escape or because the decoded bytes are not
// valid in the configured encoding.
//
// Raw holds the complete accumulated input, soft line breaks included.
type DecodeError struct {
	Err  error
	Raw  string
	Line int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: failed to decode quoted-printable in %q: %v", e.Line, e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StructuralError is returned when the record structure of the input is broken.
type StructuralError struct {
	Err    error
	Reason string
	Line   int
	Record int // 1-based record ordinal, 0 when no record is open
}

func (e *StructuralError) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("line %d (record %d): %v: %s", e.Line, e.Record, e.Err, e.Reason)
	}
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Reason)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// UnsupportedEncodingError is returned for text encoding names that cannot be resolved.
type UnsupportedEncodingError struct {
	Name string
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported text encoding %q", e.Name)
}

// Warning represents a non-fatal outcome encountered while processing.
//
// Warnings record cards that were dropped on purpose, for example because a
// card filter matched or because the card had no usable identity property.
type Warning struct {
	// Stage where the warning occurred
	Stage string // "filter", "repair", "prune"

	// Warning message
	Message string

	// Input line of the END marker of the affected card (0 if not applicable)
	Line int
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s (at line %d): %s", w.Stage, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
