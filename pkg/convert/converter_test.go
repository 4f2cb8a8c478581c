package convert_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scttfrdmn/readstructure-go/pkg/convert"
	"github.com/scttfrdmn/readstructure-go/pkg/fastq"
	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

type read struct {
	name  string
	bases string
	quals string
}

func fastqText(reads ...read) string {
	var b strings.Builder
	for _, r := range reads {
		fmt.Fprintf(&b, "@%s\n%s\n+\n%s\n", r.name, r.bases, r.quals)
	}
	return b.String()
}

func newReader(t *testing.T, text string) *fastq.Reader {
	t.Helper()

	r, err := fastq.NewReader(strings.NewReader(text))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func testOptions(structures ...string) convert.Options {
	opts := convert.DefaultOptions()
	for _, s := range structures {
		opts.ReadStructures = append(opts.ReadStructures, readstructure.MustParse(s))
	}
	opts.Sample = "s1"
	opts.Library = "l1"
	opts.Workers = 2
	return opts
}

func readBAM(t *testing.T, data []byte) (*sam.Header, []*sam.Record) {
	t.Helper()

	br, err := bam.NewReader(bytes.NewReader(data), 1)
	require.NoError(t, err)
	defer br.Close()

	var records []*sam.Record
	for {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		records = append(records, rec)
	}
	return br.Header(), records
}

func tagValue(t *testing.T, rec *sam.Record, tag string) any {
	t.Helper()

	aux := rec.AuxFields.Get(sam.NewTag(tag))
	if aux == nil {
		return nil
	}
	return aux.Value()
}

func TestConvertPaired(t *testing.T) {
	t.Parallel()

	c, err := convert.NewConverter(testOptions("8M+T", "+T"))
	require.NoError(t, err)

	r1 := newReader(t, fastqText(read{"q1/1", "ACGTACGTGATTACA", "IIIIIIII#######"}))
	r2 := newReader(t, fastqText(read{"q1/2", "TTTT", "5555"}))

	var out bytes.Buffer
	stats, err := c.Convert(context.Background(), []*fastq.Reader{r1, r2}, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.RecordsIn)
	assert.Equal(t, int64(2), stats.RecordsOut)

	header, records := readBAM(t, out.Bytes())
	require.Len(t, header.RGs(), 1)
	rg := header.RGs()[0]
	assert.Equal(t, "A", rg.Name())
	assert.Equal(t, "s1", rg.Get(sam.NewTag("SM")))
	assert.Equal(t, "l1", rg.Get(sam.NewTag("LB")))

	require.Len(t, records, 2)
	first, second := records[0], records[1]

	assert.Equal(t, "q1", first.Name)
	assert.Equal(t, "GATTACA", string(first.Seq.Expand()))
	assert.Equal(t, bytes.Repeat([]byte{2}, 7), first.Qual)
	assert.Equal(t, sam.Unmapped|sam.MateUnmapped|sam.Paired|sam.Read1, first.Flags)
	assert.Equal(t, "ACGTACGT", tagValue(t, first, "RX"))
	assert.Equal(t, "IIIIIIII", tagValue(t, first, "QX"))
	assert.Equal(t, "A", tagValue(t, first, "RG"))
	assert.Nil(t, tagValue(t, first, "BC"))

	assert.Equal(t, "q1", second.Name)
	assert.Equal(t, "TTTT", string(second.Seq.Expand()))
	assert.Equal(t, sam.Unmapped|sam.MateUnmapped|sam.Paired|sam.Read2, second.Flags)
	assert.Equal(t, "ACGTACGT", tagValue(t, second, "RX"))
}

func TestConvertDualIndex(t *testing.T) {
	t.Parallel()

	c, err := convert.NewConverter(testOptions("+T", "8B", "8B", "+T"))
	require.NoError(t, err)

	inputs := []*fastq.Reader{
		newReader(t, fastqText(read{"q1", "GATTACA", "IIIIIII"})),
		newReader(t, fastqText(read{"q1", "AAAAAAAA", "IIIIIIII"})),
		newReader(t, fastqText(read{"q1", "CCCCCCCC", "########"})),
		newReader(t, fastqText(read{"q1", "TGTAATC", "IIIIIII"})),
	}

	var out bytes.Buffer
	_, err = c.Convert(context.Background(), inputs, &out)
	require.NoError(t, err)

	_, records := readBAM(t, out.Bytes())
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "AAAAAAAA-CCCCCCCC", tagValue(t, rec, "BC"))
		assert.Equal(t, "IIIIIIII ########", tagValue(t, rec, "QT"))
		assert.Nil(t, tagValue(t, rec, "RX"))
	}
}

func TestConvertSingleEndCellBarcode(t *testing.T) {
	t.Parallel()

	opts := testOptions("4C4M+T")
	opts.Tags.UMI = "ZU"
	opts.Tags.UMIQual = "ZQ"
	c, err := convert.NewConverter(opts)
	require.NoError(t, err)

	r1 := newReader(t, fastqText(read{"q1", "AAAACCCCGGG", "IIIIJJJJKKK"}))

	var out bytes.Buffer
	_, err = c.Convert(context.Background(), []*fastq.Reader{r1}, &out)
	require.NoError(t, err)

	_, records := readBAM(t, out.Bytes())
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, sam.Unmapped, rec.Flags)
	assert.Equal(t, "GGG", string(rec.Seq.Expand()))
	assert.Equal(t, "AAAA", tagValue(t, rec, "CB"))
	assert.Equal(t, "IIII", tagValue(t, rec, "CY"))
	assert.Equal(t, "CCCC", tagValue(t, rec, "ZU"))
	assert.Equal(t, "JJJJ", tagValue(t, rec, "ZQ"))
	assert.Nil(t, tagValue(t, rec, "RX"))
}

func TestConvertPreservesOrder(t *testing.T) {
	t.Parallel()

	opts := testOptions("2M+T")
	opts.BatchSize = 3
	opts.Workers = 4
	c, err := convert.NewConverter(opts)
	require.NoError(t, err)

	const n = 50
	reads := make([]read, n)
	for i := range reads {
		reads[i] = read{fmt.Sprintf("q%02d", i), "ACGATTACA", "IIIIIIIII"}
	}

	var out bytes.Buffer
	stats, err := c.Convert(context.Background(), []*fastq.Reader{newReader(t, fastqText(reads...))}, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(n), stats.RecordsIn)
	assert.Equal(t, int64(n), stats.RecordsOut)

	_, records := readBAM(t, out.Bytes())
	require.Len(t, records, n)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("q%02d", i), rec.Name)
	}
}

func TestConvertErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		structures []string
		inputs     []string
		wantErr    error
	}{
		{
			name:       "name mismatch",
			structures: []string{"+T", "+T"},
			inputs: []string{
				fastqText(read{"q1/1", "ACGT", "IIII"}),
				fastqText(read{"q2/2", "ACGT", "IIII"}),
			},
			wantErr: convert.ErrNameMismatch,
		},
		{
			name:       "uneven inputs",
			structures: []string{"+T", "+T"},
			inputs: []string{
				fastqText(read{"q1", "ACGT", "IIII"}, read{"q2", "ACGT", "IIII"}),
				fastqText(read{"q1", "ACGT", "IIII"}),
			},
			wantErr: convert.ErrUnevenInputs,
		},
		{
			name:       "read too short",
			structures: []string{"8B+T"},
			inputs:     []string{fastqText(read{"q1", "ACGT", "IIII"})},
			wantErr:    readstructure.ErrReadEndsAfterSegment,
		},
		{
			name:       "invalid quality",
			structures: []string{"+T"},
			inputs:     []string{fastqText(read{"q1", "ACGT", "II I"})},
			wantErr:    convert.ErrInvalidQuality,
		},
		{
			name:       "malformed input",
			structures: []string{"+T"},
			inputs:     []string{"q1\nACGT\n+\nIIII\n"},
			wantErr:    fastq.ErrMalformed,
		},
		{
			name:       "input count",
			structures: []string{"+T", "+T"},
			inputs:     []string{fastqText(read{"q1", "ACGT", "IIII"})},
			wantErr:    convert.ErrInputCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := convert.NewConverter(testOptions(tt.structures...))
			require.NoError(t, err)

			inputs := make([]*fastq.Reader, len(tt.inputs))
			for i, text := range tt.inputs {
				inputs[i] = newReader(t, text)
			}

			_, err = c.Convert(context.Background(), inputs, io.Discard)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConvertCanceled(t *testing.T) {
	t.Parallel()

	c, err := convert.NewConverter(testOptions("+T"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r1 := newReader(t, fastqText(read{"q1", "ACGT", "IIII"}))
	_, err = c.Convert(ctx, []*fastq.Reader{r1}, io.Discard)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRecordsStripsMateSuffix(t *testing.T) {
	t.Parallel()

	c, err := convert.NewConverter(testOptions("+T", "+T"))
	require.NoError(t, err)

	records, err := c.Records([]*fastq.Record{
		{Name: "frag/1", Bases: []byte("AC"), Quals: []byte("II")},
		{Name: "frag/2", Bases: []byte("GT"), Quals: []byte("II")},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "frag", records[0].Name)
	assert.Equal(t, "frag", records[1].Name)
}

func TestNewConverterInvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*convert.Options)
	}{
		{"no structures", func(o *convert.Options) { o.ReadStructures = nil }},
		{"no templates", func(o *convert.Options) {
			o.ReadStructures = []readstructure.ReadStructure{readstructure.MustParse("8B")}
		}},
		{"three templates", func(o *convert.Options) {
			o.ReadStructures = []readstructure.ReadStructure{readstructure.MustParse("10T10T+T")}
		}},
		{"empty structure", func(o *convert.Options) {
			o.ReadStructures = append(o.ReadStructures, readstructure.ReadStructure{})
		}},
		{"missing sample", func(o *convert.Options) { o.Sample = "" }},
		{"missing library", func(o *convert.Options) { o.Library = "" }},
		{"missing read group", func(o *convert.Options) { o.ReadGroupID = "" }},
		{"negative workers", func(o *convert.Options) { o.Workers = -1 }},
		{"zero batch size", func(o *convert.Options) { o.BatchSize = 0 }},
		{"compression level", func(o *convert.Options) { o.CompressionLevel = 10 }},
		{"bad tag", func(o *convert.Options) { o.Tags.UMI = "RXX" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := testOptions("+T")
			tt.modify(&opts)
			_, err := convert.NewConverter(opts)
			require.ErrorIs(t, err, convert.ErrInvalidOptions)
		})
	}
}

func TestStatsRate(t *testing.T) {
	t.Parallel()

	assert.Zero(t, convert.Stats{RecordsIn: 10}.Rate())
	assert.InDelta(t, 5.0, convert.Stats{RecordsIn: 10, Elapsed: 2e9}.Rate(), 1e-9)
}
