package convert

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/biogo/hts/sam"

	"github.com/scttfrdmn/readstructure-go/pkg/fastq"
	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

// barcodes accumulates the bases and qualities of one barcode kind.
type barcodes struct {
	bases [][]byte
	quals [][]byte
}

func (b *barcodes) add(bases, quals []byte) {
	b.bases = append(b.bases, bases)
	b.quals = append(b.quals, quals)
}

// aux appends the barcode and quality tags, if any barcodes were seen.
// Barcode sequences are joined with '-' and their qualities with ' '.
func (b *barcodes) aux(fields []sam.Aux, tag, qualTag string) ([]sam.Aux, error) {
	if len(b.bases) == 0 {
		return fields, nil
	}
	seq, err := sam.NewAux(sam.NewTag(tag), string(bytes.Join(b.bases, []byte{'-'})))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s tag: %w", tag, err)
	}
	qual, err := sam.NewAux(sam.NewTag(qualTag), string(bytes.Join(b.quals, []byte{' '})))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s tag: %w", qualTag, err)
	}
	return append(fields, seq, qual), nil
}

type template struct {
	bases []byte
	quals []byte
}

// Converter turns FASTQ records into unmapped SAM records according to a
// set of read structures.
type Converter struct {
	opts   Options
	header *sam.Header
	rg     sam.Aux
}

// NewConverter validates opts and builds the output header.
func NewConverter(opts Options) (*Converter, error) {
	if _, err := opts.Validate(); err != nil {
		return nil, err
	}

	header, err := newHeader(opts)
	if err != nil {
		return nil, err
	}

	rg, err := sam.NewAux(sam.NewTag("RG"), opts.ReadGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to create RG tag: %w", err)
	}

	return &Converter{opts: opts, header: header, rg: rg}, nil
}

// newHeader builds an unsorted header with a single read group.
func newHeader(opts Options) (*sam.Header, error) {
	header, err := sam.NewHeader(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create header: %w", err)
	}
	header.Version = "1.6"
	header.SortOrder = sam.Unsorted

	rg, err := sam.NewReadGroup(opts.ReadGroupID, "", "", opts.Library, "", opts.Platform, "",
		opts.Sample, "", "", time.Time{}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create read group: %w", err)
	}
	if err := header.AddReadGroup(rg); err != nil {
		return nil, fmt.Errorf("failed to add read group: %w", err)
	}

	return header, nil
}

// Header returns the header records are written under.
func (c *Converter) Header() *sam.Header {
	return c.header
}

// Records converts one record from each input, in input order, into one
// unmapped SAM record per template segment.
func (c *Converter) Records(reads []*fastq.Record) ([]*sam.Record, error) {
	if len(reads) != len(c.opts.ReadStructures) {
		return nil, fmt.Errorf("%w: %d records for %d read structures",
			ErrInputCount, len(reads), len(c.opts.ReadStructures))
	}

	name := readName(reads[0].Name)
	for _, r := range reads[1:] {
		if other := readName(r.Name); other != name {
			return nil, fmt.Errorf("%w: %s and %s", ErrNameMismatch, name, other)
		}
	}

	var (
		templates []template
		sample    barcodes
		umi       barcodes
		cell      barcodes
	)
	for i, rs := range c.opts.ReadStructures {
		rec := reads[i]
		for _, seg := range rs.All() {
			bases, quals, err := seg.ExtractBasesAndQuals(rec.Bases, rec.Quals)
			if err != nil {
				return nil, fmt.Errorf("read %s input %d (%s): %w", name, i+1, rs, err)
			}

			switch seg.Kind() {
			case readstructure.Template:
				templates = append(templates, template{bases: bases, quals: quals})
			case readstructure.SampleBarcode:
				sample.add(bases, quals)
			case readstructure.MolecularBarcode:
				umi.add(bases, quals)
			case readstructure.CellularBarcode:
				cell.add(bases, quals)
			}
		}
	}

	aux := []sam.Aux{c.rg}
	var err error
	if aux, err = sample.aux(aux, c.opts.Tags.SampleBarcode, c.opts.Tags.SampleBarcodeQual); err != nil {
		return nil, err
	}
	if aux, err = cell.aux(aux, c.opts.Tags.CellBarcode, c.opts.Tags.CellBarcodeQual); err != nil {
		return nil, err
	}
	if aux, err = umi.aux(aux, c.opts.Tags.UMI, c.opts.Tags.UMIQual); err != nil {
		return nil, err
	}

	records := make([]*sam.Record, 0, len(templates))
	for i, t := range templates {
		qual, err := phred(t.quals)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		rec, err := sam.NewRecord(name, nil, nil, -1, -1, 0, 0, nil,
			bytes.Clone(t.bases), qual, slices.Clone(aux))
		if err != nil {
			return nil, fmt.Errorf("failed to create record %s: %w", name, err)
		}
		rec.Flags = templateFlags(i, len(templates))
		records = append(records, rec)
	}

	return records, nil
}

func templateFlags(i, n int) sam.Flags {
	flags := sam.Unmapped
	if n < 2 {
		return flags
	}
	flags |= sam.Paired | sam.MateUnmapped
	if i == 0 {
		flags |= sam.Read1
	} else {
		flags |= sam.Read2
	}
	return flags
}

// phred decodes Phred+33 quality characters.
func phred(quals []byte) ([]byte, error) {
	out := make([]byte, len(quals))
	for i, q := range quals {
		if q < '!' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidQuality, q)
		}
		out[i] = q - '!'
	}
	return out, nil
}

// readName strips a trailing /1 or /2 mate suffix.
func readName(name string) string {
	if len(name) > 2 && name[len(name)-2] == '/' {
		switch name[len(name)-1] {
		case '1', '2':
			return name[:len(name)-2]
		}
	}
	return strings.TrimSpace(name)
}
