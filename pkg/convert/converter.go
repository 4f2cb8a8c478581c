// Package convert turns FASTQ inputs into an unmapped BAM, splitting each
// read into template and barcode segments by its read structure.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/scttfrdmn/readstructure-go/internal/logging"
	"github.com/scttfrdmn/readstructure-go/pkg/fastq"
)

// Stats summarizes a conversion.
type Stats struct {
	// RecordsIn counts read tuples, one record from each input.
	RecordsIn int64
	// RecordsOut counts BAM records written.
	RecordsOut int64
	Elapsed    time.Duration
}

// Rate returns input tuples per second.
func (s Stats) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.RecordsIn) / s.Elapsed.Seconds()
}

type batchJob struct {
	index  int
	tuples [][]*fastq.Record
}

type batchResult struct {
	index   int
	tuples  int
	records []*sam.Record
	err     error
}

// Convert reads record tuples from inputs, converts them on a pool of
// workers, and writes the records to out as BAM in input order.
func (c *Converter) Convert(ctx context.Context, inputs []*fastq.Reader, out io.Writer) (Stats, error) {
	start := time.Now()
	var stats Stats

	if len(inputs) != len(c.opts.ReadStructures) {
		return stats, fmt.Errorf("%w: %d inputs for %d read structures",
			ErrInputCount, len(inputs), len(c.opts.ReadStructures))
	}

	logger := logging.FromContext(ctx)
	workers := c.opts.workers()

	bw, err := bam.NewWriterLevel(out, c.header, c.opts.CompressionLevel, workers)
	if err != nil {
		return stats, fmt.Errorf("failed to create BAM writer: %w", err)
	}

	logger.Debug("starting conversion",
		logging.FieldWorkers, workers,
		logging.FieldBatchSize, c.opts.BatchSize,
		logging.FieldCompression, c.opts.CompressionLevel)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan batchJob, workers*2)
	results := make(chan batchResult, workers*2)
	readErr := make(chan error, 1)

	go func() {
		defer close(jobs)
		readErr <- c.readBatches(ctx, inputs, jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.worker(ctx, jobs, results)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	err = collect(bw, results, &stats)
	if err != nil {
		cancel()
		for range results {
		}
	}
	if rerr := <-readErr; err == nil {
		err = rerr
	}
	if err == nil {
		err = ctx.Err()
	}

	if cerr := bw.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close BAM writer: %w", cerr)
	}

	stats.Elapsed = time.Since(start)
	if err != nil {
		return stats, err
	}

	logger.Debug("conversion finished",
		logging.FieldRecordsIn, stats.RecordsIn,
		logging.FieldRecordsOut, stats.RecordsOut,
		logging.FieldElapsed, stats.Elapsed)

	return stats, nil
}

// readBatches groups record tuples into batches and queues them until the
// inputs are exhausted.
func (c *Converter) readBatches(ctx context.Context, inputs []*fastq.Reader, jobs chan<- batchJob) error {
	index := 0
	batch := make([][]*fastq.Record, 0, c.opts.BatchSize)

	send := func() error {
		select {
		case jobs <- batchJob{index: index, tuples: batch}:
		case <-ctx.Done():
			return ctx.Err()
		}
		index++
		batch = make([][]*fastq.Record, 0, c.opts.BatchSize)
		return nil
	}

	for {
		tuple, err := readTuple(inputs)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		batch = append(batch, tuple)
		if len(batch) == c.opts.BatchSize {
			if err := send(); err != nil {
				return err
			}
		}
	}

	if len(batch) > 0 {
		return send()
	}
	return nil
}

// readTuple reads one record from each input. It returns io.EOF only when
// every input is exhausted at once.
func readTuple(inputs []*fastq.Reader) ([]*fastq.Record, error) {
	tuple := make([]*fastq.Record, len(inputs))
	done := 0
	for i, in := range inputs {
		rec, err := in.Read()
		if errors.Is(err, io.EOF) {
			done++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i+1, err)
		}
		tuple[i] = rec
	}

	switch done {
	case 0:
		return tuple, nil
	case len(inputs):
		return nil, io.EOF
	default:
		return nil, ErrUnevenInputs
	}
}

func (c *Converter) worker(ctx context.Context, jobs <-chan batchJob, results chan<- batchResult) {
	for job := range jobs {
		result := batchResult{index: job.index, tuples: len(job.tuples)}
		for _, tuple := range job.tuples {
			records, err := c.Records(tuple)
			if err != nil {
				result.err = err
				result.records = nil
				break
			}
			result.records = append(result.records, records...)
		}

		select {
		case results <- result:
		case <-ctx.Done():
			return
		}
	}
}

// collect writes batches in index order as they complete.
func collect(bw *bam.Writer, results <-chan batchResult, stats *Stats) error {
	pending := make(map[int]batchResult)
	next := 0

	for result := range results {
		if result.err != nil {
			return result.err
		}
		pending[result.index] = result

		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)

			for _, rec := range ready.records {
				if err := bw.Write(rec); err != nil {
					return fmt.Errorf("failed to write record %s: %w", rec.Name, err)
				}
				stats.RecordsOut++
			}
			stats.RecordsIn += int64(ready.tuples)
			next++
		}
	}

	return nil
}
