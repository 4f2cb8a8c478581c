package convert

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"q1/1", "q1"},
		{"q1/2", "q1"},
		{"q1/3", "q1/3"},
		{"q1", "q1"},
		{"/1", "/1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, readName(tt.in), tt.in)
	}
}

func TestPhred(t *testing.T) {
	t.Parallel()

	got, err := phred([]byte("!+5?I"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 10, 20, 30, 40}, got)

	_, err = phred([]byte{'I', 0x1f})
	require.ErrorIs(t, err, ErrInvalidQuality)
}

func TestTemplateFlags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, sam.Unmapped, templateFlags(0, 1))
	assert.Equal(t, sam.Unmapped|sam.MateUnmapped|sam.Paired|sam.Read1, templateFlags(0, 2))
	assert.Equal(t, sam.Unmapped|sam.MateUnmapped|sam.Paired|sam.Read2, templateFlags(1, 2))
}

func TestWorkers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, Options{Workers: 3}.workers())
	assert.Equal(t, maxWorkers, Options{Workers: 100}.workers())
	assert.GreaterOrEqual(t, Options{}.workers(), 1)
}
