package readstructure

import (
	"fmt"
	"strconv"
)

// AnyLengthChar stands in for a length in a read structure to mean "one or
// more bases".
const AnyLengthChar = '+'

// Segment is a contiguous run of bases of a single Kind within a read.
// A segment either has a definite length or, as the last segment of a
// ReadStructure, an indefinite length that consumes the rest of the read.
//
// Segments are values; the zero value is not a valid segment.
type Segment struct {
	offset int
	length int // 0 when indefinite
	kind   Kind
}

// NewSegment returns a segment of the given definite length.
func NewSegment(length int, kind Kind) (Segment, error) {
	if length < 1 {
		return Segment{}, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	if _, err := KindFromByte(kind.Code()); err != nil {
		return Segment{}, err
	}
	return Segment{length: length, kind: kind}, nil
}

// NewIndefiniteSegment returns a segment that consumes all remaining bases.
func NewIndefiniteSegment(kind Kind) (Segment, error) {
	if _, err := KindFromByte(kind.Code()); err != nil {
		return Segment{}, err
	}
	return Segment{kind: kind}, nil
}

// ParseSegment parses a single segment such as "8B" or "+T".
func ParseSegment(s string) (Segment, error) {
	rs, err := Parse(s)
	if err != nil {
		return Segment{}, err
	}
	if rs.Len() != 1 {
		return Segment{}, fmt.Errorf("%w: %s", ErrMultipleSegments, s)
	}
	return rs.segments[0], nil
}

// Offset returns the zero-based position of the segment within its read.
func (s Segment) Offset() int { return s.offset }

// Length returns the segment length and whether it is definite.
func (s Segment) Length() (int, bool) {
	return s.length, s.length > 0
}

// HasLength reports whether the segment has a definite length.
func (s Segment) HasLength() bool { return s.length > 0 }

// Kind returns the segment kind.
func (s Segment) Kind() Kind { return s.kind }

// end returns the exclusive end of the segment within a read of readLen bases.
func (s Segment) end(readLen int) (int, error) {
	if readLen < s.offset {
		return 0, &SegmentError{Err: ErrReadEndsBeforeSegment, Segment: s}
	}
	if s.length == 0 {
		return readLen, nil
	}
	if readLen < s.offset+s.length {
		return 0, &SegmentError{Err: ErrReadEndsAfterSegment, Segment: s}
	}
	return s.offset + s.length, nil
}

// withEnd returns a copy of s ending at end. When end is at or before the
// segment offset the copy has no length.
func (s Segment) withEnd(end int) Segment {
	if s.offset >= end {
		s.length = 0
	} else {
		s.length = end - s.offset
	}
	return s
}

// Extract returns the part of bases covered by the segment. The returned
// slice shares storage with bases.
func Extract[T any](s Segment, bases []T) ([]T, error) {
	end, err := s.end(len(bases))
	if err != nil {
		return nil, err
	}
	return bases[s.offset:end], nil
}

// ExtractPaired slices bases and quals in lockstep. They must be the same length.
func ExtractPaired[B, Q any](s Segment, bases []B, quals []Q) ([]B, []Q, error) {
	if len(bases) != len(quals) {
		return nil, nil, &LengthMismatchError{Bases: len(bases), Quals: len(quals)}
	}
	end, err := s.end(len(bases))
	if err != nil {
		return nil, nil, err
	}
	return bases[s.offset:end], quals[s.offset:end], nil
}

// ExtractBases returns the bases covered by the segment.
func (s Segment) ExtractBases(bases []byte) ([]byte, error) {
	return Extract(s, bases)
}

// ExtractBasesAndQuals returns the bases and qualities covered by the segment.
func (s Segment) ExtractBasesAndQuals(bases, quals []byte) ([]byte, []byte, error) {
	return ExtractPaired(s, bases, quals)
}

// String renders the segment as it appears in a read structure.
func (s Segment) String() string {
	return string(s.appendText(nil))
}

func (s Segment) appendText(b []byte) []byte {
	if s.length > 0 {
		b = strconv.AppendInt(b, int64(s.length), 10)
	} else {
		b = append(b, AnyLengthChar)
	}
	return append(b, s.kind.Code())
}

// MarshalText implements encoding.TextMarshaler. Only the length and kind
// are encoded; the offset within the enclosing read structure is not.
func (s Segment) MarshalText() ([]byte, error) {
	return s.appendText(nil), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The result is a
// standalone segment at offset 0, as from ParseSegment. Encode the whole
// ReadStructure to keep segment offsets.
func (s *Segment) UnmarshalText(text []byte) error {
	seg, err := ParseSegment(string(text))
	if err != nil {
		return err
	}
	*s = seg
	return nil
}
