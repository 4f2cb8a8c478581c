package readstructure

import (
	"errors"
	"fmt"
)

// Sentinel errors for categorization via errors.Is.
var (
	// ErrMissingLength is returned when a segment does not start with a length or '+'.
	ErrMissingLength = errors.New("read structure missing length information")

	// ErrMissingOperator is returned when a length is not followed by a kind.
	ErrMissingOperator = errors.New("read structure missing operator")

	// ErrUnknownKind is returned when a segment kind code is not registered.
	ErrUnknownKind = errors.New("read structure had unknown type")

	// ErrZeroLength is returned for segments of length 0.
	ErrZeroLength = errors.New("read segment must have length > 0 or '+'")

	// ErrLengthOverflow is returned when a segment length does not fit in an int.
	ErrLengthOverflow = errors.New("read segment length too large")

	// ErrNoSegments is returned when a read structure would have no segments.
	ErrNoSegments = errors.New("read structure contains zero elements")

	// ErrNonTerminalIndefinite is returned when an indefinite length segment is not last.
	ErrNonTerminalIndefinite = errors.New("read structure contains a non-terminal segment that has an indefinite length")

	// ErrReadEndsBeforeSegment is returned when a read ends before a segment starts.
	ErrReadEndsBeforeSegment = errors.New("read ends before start of segment")

	// ErrReadEndsAfterSegment is returned when a read ends before a segment ends.
	ErrReadEndsAfterSegment = errors.New("read ends before end of segment")

	// ErrMismatchedLengths is returned when bases and quals differ in length.
	ErrMismatchedLengths = errors.New("mismatching bases and quals lengths")

	// ErrMultipleSegments is returned when a single segment was expected.
	ErrMultipleSegments = errors.New("read segment string contained more than one segment")

	// ErrInvalidKind is returned for characters or strings that name no kind.
	ErrInvalidKind = errors.New("invalid segment type")

	// ErrKindConflict is returned when registering a code twice.
	ErrKindConflict = errors.New("segment type already registered")

	// ErrInvalidLength is returned when building a segment with a length below 1.
	ErrInvalidLength = errors.New("invalid segment length")

	// ErrIndexOutOfRange is returned by checked segment access.
	ErrIndexOutOfRange = errors.New("segment index out of range")
)

// SyntaxError locates a problem in a read structure string. Prefix, Span and
// Suffix concatenate to the normalized (uppercased, whitespace free) input.
type SyntaxError struct {
	Err    error
	Prefix string
	Span   string
	Suffix string
}

func newSyntaxError(err error, chars []rune, start, end int) *SyntaxError {
	return &SyntaxError{
		Err:    err,
		Prefix: string(chars[:start]),
		Span:   string(chars[start:end]),
		Suffix: string(chars[end:]),
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %s[%s]%s", e.Err, e.Prefix, e.Span, e.Suffix)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Input returns the normalized input the error refers to.
func (e *SyntaxError) Input() string {
	return e.Prefix + e.Span + e.Suffix
}

// SegmentError reports a problem with a specific segment.
type SegmentError struct {
	Err     error
	Segment Segment
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Segment)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// LengthMismatchError reports bases and quals of different lengths.
type LengthMismatchError struct {
	Bases int
	Quals int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%v: %d, %d", ErrMismatchedLengths, e.Bases, e.Quals)
}

func (e *LengthMismatchError) Unwrap() error { return ErrMismatchedLengths }

// KindError reports a value that does not resolve to a segment kind.
type KindError struct {
	Value string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%v: %q", ErrInvalidKind, e.Value)
}

func (e *KindError) Unwrap() error { return ErrInvalidKind }
