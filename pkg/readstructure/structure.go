package readstructure

import (
	"iter"
	"math"
	"slices"
	"strings"
	"unicode"
)

// ReadStructure is an ordered, validated list of segments describing how the
// bases of a read are allocated. Only the last segment may have an
// indefinite length. ReadStructure values are immutable and safe for
// concurrent use.
type ReadStructure struct {
	segments    []Segment
	fixedLength int
}

// New builds a read structure from segments, recomputing every offset.
func New(segments ...Segment) (ReadStructure, error) {
	if len(segments) == 0 {
		return ReadStructure{}, ErrNoSegments
	}

	indefinite := 0
	firstIndefinite := -1
	fixedLength := 0
	for i, seg := range segments {
		if _, err := KindFromByte(seg.kind.Code()); err != nil {
			return ReadStructure{}, err
		}
		if seg.HasLength() {
			fixedLength += seg.length
			continue
		}
		indefinite++
		if firstIndefinite < 0 {
			firstIndefinite = i
		}
	}

	last := segments[len(segments)-1]
	if (last.HasLength() && indefinite > 0) || indefinite > 1 {
		return ReadStructure{}, &SegmentError{Err: ErrNonTerminalIndefinite, Segment: segments[firstIndefinite]}
	}

	owned := make([]Segment, len(segments))
	offset := 0
	for i, seg := range segments {
		seg.offset = offset
		owned[i] = seg
		offset += seg.length
	}

	return ReadStructure{segments: owned, fixedLength: fixedLength}, nil
}

// Parse parses a read structure string such as "8B8B+T". Input is
// uppercased and whitespace is ignored.
func Parse(s string) (ReadStructure, error) {
	chars := normalize(s)

	var segments []Segment
	for i := 0; i < len(chars); {
		start := i

		definite := false
		length := 0
		switch {
		case chars[i] == AnyLengthChar:
			i++
		case isDigit(chars[i]):
			definite = true
			for i < len(chars) && isDigit(chars[i]) {
				d := int(chars[i] - '0')
				if length > (math.MaxInt-d)/10 {
					for i < len(chars) && isDigit(chars[i]) {
						i++
					}
					return ReadStructure{}, newSyntaxError(ErrLengthOverflow, chars, start, i)
				}
				length = length*10 + d
				i++
			}
		default:
			return ReadStructure{}, newSyntaxError(ErrMissingLength, chars, start, start+1)
		}

		if i == len(chars) {
			return ReadStructure{}, newSyntaxError(ErrMissingOperator, chars, start, i)
		}

		kind, ok := resolveKind(chars[i])
		if !ok {
			return ReadStructure{}, newSyntaxError(ErrUnknownKind, chars, start, i+1)
		}
		if definite && length == 0 {
			return ReadStructure{}, newSyntaxError(ErrZeroLength, chars, start, i)
		}

		segments = append(segments, Segment{length: length, kind: kind})
		i++
	}

	return New(segments...)
}

// MustParse is like Parse but panics on error. It is intended for
// initializing package level values from constant strings.
func MustParse(s string) ReadStructure {
	rs, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return rs
}

func normalize(s string) []rune {
	upper := strings.ToUpper(s)
	chars := make([]rune, 0, len(upper))
	for _, r := range upper {
		if !unicode.IsSpace(r) {
			chars = append(chars, r)
		}
	}
	return chars
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func resolveKind(r rune) (Kind, bool) {
	if r > unicode.MaxASCII {
		return 0, false
	}
	kind, err := KindFromByte(byte(r))
	return kind, err == nil
}

// Len returns the number of segments.
func (rs ReadStructure) Len() int { return len(rs.segments) }

// HasFixedLength reports whether the last segment has a definite length.
func (rs ReadStructure) HasFixedLength() bool {
	last, ok := rs.Last()
	return ok && last.HasLength()
}

// FixedLength returns the total read length when every segment is definite.
func (rs ReadStructure) FixedLength() (int, bool) {
	if !rs.HasFixedLength() {
		return 0, false
	}
	return rs.fixedLength, true
}

// MinLength returns the sum of the definite segment lengths, the shortest
// read the structure can describe.
func (rs ReadStructure) MinLength() int { return rs.fixedLength }

// Segment returns the segment at index i.
func (rs ReadStructure) Segment(i int) (Segment, error) {
	if i < 0 || i >= len(rs.segments) {
		return Segment{}, ErrIndexOutOfRange
	}
	return rs.segments[i], nil
}

// Segments returns a copy of the segments in read order.
func (rs ReadStructure) Segments() []Segment {
	return slices.Clone(rs.segments)
}

// All iterates over the segments in read order.
func (rs ReadStructure) All() iter.Seq2[int, Segment] {
	return func(yield func(int, Segment) bool) {
		for i, seg := range rs.segments {
			if !yield(i, seg) {
				return
			}
		}
	}
}

// SegmentsByKind returns the segments of the given kind in read order.
func (rs ReadStructure) SegmentsByKind(kind Kind) []Segment {
	var out []Segment
	for _, seg := range rs.segments {
		if seg.kind == kind {
			out = append(out, seg)
		}
	}
	return out
}

// Templates returns the template segments.
func (rs ReadStructure) Templates() []Segment { return rs.SegmentsByKind(Template) }

// SampleBarcodes returns the sample barcode segments.
func (rs ReadStructure) SampleBarcodes() []Segment { return rs.SegmentsByKind(SampleBarcode) }

// MolecularBarcodes returns the molecular barcode segments.
func (rs ReadStructure) MolecularBarcodes() []Segment { return rs.SegmentsByKind(MolecularBarcode) }

// Skips returns the skip segments.
func (rs ReadStructure) Skips() []Segment { return rs.SegmentsByKind(Skip) }

// CellularBarcodes returns the cellular barcode segments.
func (rs ReadStructure) CellularBarcodes() []Segment { return rs.SegmentsByKind(CellularBarcode) }

// First returns the first segment.
func (rs ReadStructure) First() (Segment, bool) {
	if len(rs.segments) == 0 {
		return Segment{}, false
	}
	return rs.segments[0], true
}

// Last returns the last segment.
func (rs ReadStructure) Last() (Segment, bool) {
	if len(rs.segments) == 0 {
		return Segment{}, false
	}
	return rs.segments[len(rs.segments)-1], true
}

// Resolve returns the segments as they apply to a read of readLength
// bases, giving a trailing indefinite segment the length of the remaining
// bases. A trailing segment with nothing left to consume has no length.
func (rs ReadStructure) Resolve(readLength int) ([]Segment, error) {
	resolved := make([]Segment, len(rs.segments))
	for i, seg := range rs.segments {
		end, err := seg.end(readLength)
		if err != nil {
			return nil, err
		}
		resolved[i] = seg.withEnd(end)
	}
	return resolved, nil
}

// Equal reports whether rs and other have the same segments.
func (rs ReadStructure) Equal(other ReadStructure) bool {
	return rs.fixedLength == other.fixedLength && slices.Equal(rs.segments, other.segments)
}

// String renders the read structure in its canonical form.
func (rs ReadStructure) String() string {
	b, _ := rs.MarshalText()
	return string(b)
}

// MarshalText implements encoding.TextMarshaler.
func (rs ReadStructure) MarshalText() ([]byte, error) {
	var b []byte
	for _, seg := range rs.segments {
		b = seg.appendText(b)
	}
	return b, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (rs *ReadStructure) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*rs = parsed
	return nil
}
