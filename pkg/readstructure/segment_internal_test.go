package readstructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentWithEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		seg        Segment
		end        int
		wantLength int
		wantOK     bool
	}{
		{"fixed shrinks", Segment{offset: 2, length: 10, kind: Template}, 10, 8, true},
		{"fixed shrinks more", Segment{offset: 2, length: 10, kind: Template}, 8, 6, true},
		{"fixed end at offset", Segment{offset: 2, length: 10, kind: Template}, 2, 0, false},
		{"fixed end before offset", Segment{offset: 2, length: 10, kind: Template}, 1, 0, false},
		{"indefinite gains length", Segment{offset: 2, kind: Template}, 10, 8, true},
		{"indefinite gains less", Segment{offset: 2, kind: Template}, 8, 6, true},
		{"indefinite end at offset", Segment{offset: 2, kind: Template}, 2, 0, false},
		{"indefinite end before offset", Segment{offset: 2, kind: Template}, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.seg.withEnd(tt.end)
			length, ok := got.Length()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLength, length)
			assert.Equal(t, tt.seg.offset, got.offset)
			assert.Equal(t, tt.seg.kind, got.kind)
		})
	}
}

func TestSegmentWithEndLeavesOriginal(t *testing.T) {
	t.Parallel()

	seg := Segment{offset: 4, length: 6, kind: MolecularBarcode}
	_ = seg.withEnd(5)
	assert.Equal(t, 6, seg.length)
}
