package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/readstructure-go/internal/config"
	"github.com/scttfrdmn/readstructure-go/internal/logging"
	"github.com/scttfrdmn/readstructure-go/pkg/convert"
	"github.com/scttfrdmn/readstructure-go/pkg/fastq"
	"github.com/scttfrdmn/readstructure-go/pkg/storage"
)

var (
	bamOutput      string
	bamStructures  []string
	bamSample      string
	bamLibrary     string
	bamReadGroup   string
	bamPlatform    string
	bamWorkers     int
	bamBatchSize   int
	bamCompression int
	bamOverwrite   bool
)

var fastqToBAMCmd = &cobra.Command{
	Use:   "fastq-to-bam <fastq>...",
	Short: "Convert FASTQ files to an unmapped BAM",
	Long: `Convert one or more FASTQ files into a single unmapped BAM. Each input
is split by its read structure: template segments become records, sample
barcodes are stored in BC/QT, molecular barcodes in RX/QX and cellular
barcodes in CB/CY. Skipped segments are dropped.

Inputs may be plain, gzip or zstd compressed, and may be local paths, "-"
for stdin, or s3:// URIs. The output may likewise be local, "-" or S3.

Examples:
  # Paired reads with an 8 base UMI at the start of read 1
  readstructure fastq-to-bam -r 8M+T -r +T --sample s1 --library l1 \
    -o s1.unmapped.bam r1.fq.gz r2.fq.gz

  # Dual-indexed run straight from S3
  readstructure fastq-to-bam -r +T -r 8B -r 8B -r +T --sample s1 --library l1 \
    -o s3://bucket/s1.bam s3://bucket/R1.fq.gz s3://bucket/I1.fq.gz \
    s3://bucket/I2.fq.gz s3://bucket/R2.fq.gz`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyConvertFlags(cmd, cfg); err != nil {
			return withExitCode(ExitInvalidUsage, err)
		}
		return fastqToBAM(cmd.Context(), cfg, args, bamOutput, bamOverwrite)
	},
}

func init() {
	f := fastqToBAMCmd.Flags()
	f.StringVarP(&bamOutput, "output", "o", storage.StdioPath,
		"Output BAM path, s3:// URI, or - for stdout")
	f.StringSliceVarP(&bamStructures, "read-structures", "r", nil,
		"Read structure for each input, in input order")
	f.StringVar(&bamSample, "sample", "", "Sample name (SM)")
	f.StringVar(&bamLibrary, "library", "", "Library name (LB)")
	f.StringVar(&bamReadGroup, "read-group-id", "", "Read group ID (default A)")
	f.StringVar(&bamPlatform, "platform", "", "Sequencing platform (default ILLUMINA)")
	f.IntVar(&bamWorkers, "workers", 0,
		"Number of conversion workers (0 = auto-detect)")
	f.IntVar(&bamBatchSize, "batch-size", convert.DefaultBatchSize,
		"Records handed to a worker at once")
	f.IntVar(&bamCompression, "compression-level", convert.DefaultCompressionLevel,
		"BGZF compression level, -1 (default) to 9")
	f.BoolVar(&bamOverwrite, "overwrite", false,
		"Replace the output if it already exists")
}

// applyConvertFlags copies explicitly set flags over the configuration.
func applyConvertFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("read-structures") {
		structures, err := config.ParseStructures(bamStructures)
		if err != nil {
			return err
		}
		c.ReadStructures = structures
	}
	if flags.Changed("sample") {
		c.Sample = bamSample
	}
	if flags.Changed("library") {
		c.Library = bamLibrary
	}
	if flags.Changed("read-group-id") {
		c.ReadGroupID = bamReadGroup
	}
	if flags.Changed("platform") {
		c.Platform = bamPlatform
	}
	if flags.Changed("workers") {
		c.Workers = bamWorkers
	}
	if flags.Changed("batch-size") {
		c.BatchSize = bamBatchSize
	}
	if flags.Changed("compression-level") {
		c.CompressionLevel = bamCompression
	}
	return c.Validate()
}

// fastqToBAM converts inputs into an unmapped BAM at output.
func fastqToBAM(ctx context.Context, c *config.Config, inputs []string, output string, overwrite bool) (err error) {
	logger := logging.FromContext(ctx)

	converter, err := convert.NewConverter(c.Options())
	if err != nil {
		return err
	}
	if len(inputs) != len(c.ReadStructures) {
		return withExitCode(ExitInvalidUsage, fmt.Errorf("%w: %d inputs for %d read structures",
			convert.ErrInputCount, len(inputs), len(c.ReadStructures)))
	}

	if output != storage.StdioPath && !overwrite {
		backend, err := storage.ForPath(ctx, output)
		if err != nil {
			return err
		}
		exists, err := backend.Exists(ctx, output)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", output, err)
		}
		if exists {
			return withExitCode(ExitInvalidUsage,
				fmt.Errorf("output %s already exists (use --overwrite to replace it)", output))
		}
	}

	readers := make([]*fastq.Reader, 0, len(inputs))
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i].Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	for i, path := range inputs {
		logger.Debug("opening input",
			logging.FieldInput, path,
			logging.FieldStructure, c.ReadStructures[i])

		rc, err := storage.Open(ctx, path)
		if err != nil {
			return err
		}
		closers = append(closers, rc)

		r, err := fastq.NewReader(rc)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		closers = append(closers, r)
		readers = append(readers, r)
	}

	out, err := storage.Create(ctx, output)
	if err != nil {
		return err
	}

	logger.Info("converting FASTQ to unmapped BAM",
		logging.FieldInputs, inputs,
		logging.FieldOutput, output,
		logging.FieldStructures, c.ReadStructures,
		logging.FieldSample, c.Sample,
		logging.FieldLibrary, c.Library,
		logging.FieldReadGroup, c.ReadGroupID)

	stats, err := converter.Convert(ctx, readers, out)
	if err != nil {
		logger.Debug("discarding partial output",
			logging.FieldOutput, output,
			logging.FieldError, err)
		if aerr := storage.Abort(out, err); aerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to discard %s: %w", output, aerr))
		}
		return fmt.Errorf("failed to convert to %s: %w", output, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	logger.Info("conversion complete",
		logging.FieldRecordsIn, stats.RecordsIn,
		logging.FieldRecordsOut, stats.RecordsOut,
		logging.FieldElapsed, stats.Elapsed.Round(time.Millisecond),
		logging.FieldRate, fmt.Sprintf("%.0f", stats.Rate()))

	return nil
}
