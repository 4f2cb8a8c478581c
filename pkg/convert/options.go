package convert

import (
	"errors"
	"fmt"

	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

var (
	// ErrInvalidOptions is returned by Options.Validate.
	ErrInvalidOptions = errors.New("invalid conversion options")

	// ErrInputCount is returned when inputs and read structures differ in number.
	ErrInputCount = errors.New("number of inputs does not match number of read structures")

	// ErrUnevenInputs is returned when some inputs end before others.
	ErrUnevenInputs = errors.New("inputs contain different numbers of records")

	// ErrNameMismatch is returned when records read together have different names.
	ErrNameMismatch = errors.New("read names do not match across inputs")

	// ErrInvalidQuality is returned for quality characters below '!'.
	ErrInvalidQuality = errors.New("invalid base quality")
)

const (
	// DefaultBatchSize is the number of records handed to a worker at once.
	DefaultBatchSize = 1000

	// DefaultCompressionLevel selects the BGZF default compression.
	DefaultCompressionLevel = -1

	maxWorkers = 32
)

// Tags names the SAM tags barcodes are stored in.
type Tags struct {
	UMI               string `yaml:"umi"`
	UMIQual           string `yaml:"umi-qual"`
	SampleBarcode     string `yaml:"sample-barcode"`
	SampleBarcodeQual string `yaml:"sample-barcode-qual"`
	CellBarcode       string `yaml:"cell-barcode"`
	CellBarcodeQual   string `yaml:"cell-barcode-qual"`
}

// DefaultTags returns the tags recommended by the SAM specification.
func DefaultTags() Tags {
	return Tags{
		UMI:               "RX",
		UMIQual:           "QX",
		SampleBarcode:     "BC",
		SampleBarcodeQual: "QT",
		CellBarcode:       "CB",
		CellBarcodeQual:   "CY",
	}
}

func (t Tags) validate() error {
	for name, tag := range map[string]string{
		"umi":                 t.UMI,
		"umi-qual":            t.UMIQual,
		"sample-barcode":      t.SampleBarcode,
		"sample-barcode-qual": t.SampleBarcodeQual,
		"cell-barcode":        t.CellBarcode,
		"cell-barcode-qual":   t.CellBarcodeQual,
	} {
		if len(tag) != 2 {
			return fmt.Errorf("%w: %s tag %q must be two characters", ErrInvalidOptions, name, tag)
		}
	}
	return nil
}

// Options configures a FASTQ to unmapped BAM conversion.
type Options struct {
	// ReadStructures holds one read structure per input, in input order.
	ReadStructures []readstructure.ReadStructure

	Sample      string
	Library     string
	ReadGroupID string
	Platform    string

	Tags Tags

	// Workers is the number of conversion goroutines; 0 picks a default
	// from the available CPUs.
	Workers   int
	BatchSize int

	// CompressionLevel is the BGZF compression level, -1 to 9.
	CompressionLevel int
}

// DefaultOptions returns options with defaults filled in. Read structures,
// sample and library must still be set.
func DefaultOptions() Options {
	return Options{
		ReadGroupID:      "A",
		Platform:         "ILLUMINA",
		Tags:             DefaultTags(),
		BatchSize:        DefaultBatchSize,
		CompressionLevel: DefaultCompressionLevel,
	}
}

// Validate checks the options and returns the number of template segments
// across all read structures.
func (o Options) Validate() (int, error) {
	if len(o.ReadStructures) == 0 {
		return 0, fmt.Errorf("%w: at least one read structure is required", ErrInvalidOptions)
	}

	templates := 0
	for _, rs := range o.ReadStructures {
		if rs.Len() == 0 {
			return 0, fmt.Errorf("%w: empty read structure", ErrInvalidOptions)
		}
		templates += len(rs.Templates())
	}
	if templates < 1 || templates > 2 {
		return 0, fmt.Errorf("%w: read structures must contain one or two template segments, found %d",
			ErrInvalidOptions, templates)
	}

	switch {
	case o.Sample == "":
		return 0, fmt.Errorf("%w: sample is required", ErrInvalidOptions)
	case o.Library == "":
		return 0, fmt.Errorf("%w: library is required", ErrInvalidOptions)
	case o.ReadGroupID == "":
		return 0, fmt.Errorf("%w: read group ID is required", ErrInvalidOptions)
	case o.Workers < 0:
		return 0, fmt.Errorf("%w: workers must not be negative", ErrInvalidOptions)
	case o.BatchSize < 1:
		return 0, fmt.Errorf("%w: batch size must be positive", ErrInvalidOptions)
	case o.CompressionLevel < -1 || o.CompressionLevel > 9:
		return 0, fmt.Errorf("%w: compression level %d outside -1..9", ErrInvalidOptions, o.CompressionLevel)
	}

	if err := o.Tags.validate(); err != nil {
		return 0, err
	}
	return templates, nil
}

func (o Options) workers() int {
	workers := o.Workers
	if workers <= 0 {
		workers = detectOptimalWorkers()
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
