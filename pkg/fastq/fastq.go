// Package fastq reads FASTQ records from plain, gzip or zstd compressed streams.
package fastq

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrMalformed is returned for records that do not follow the FASTQ layout.
	ErrMalformed = errors.New("malformed FASTQ record")

	// ErrTruncated is returned when the input ends inside a record.
	ErrTruncated = errors.New("truncated FASTQ record")
)

const maxLineSize = 64 * 1024 * 1024

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Record is a single FASTQ record. Quals holds the quality line as written,
// Phred+33 encoded.
type Record struct {
	Name    string
	Comment string
	Bases   []byte
	Quals   []byte
}

// Reader reads FASTQ records.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewReader returns a Reader for r, decompressing gzip or zstd input
// detected from its leading bytes.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	src, closer, err := decompress(br)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 1<<20), maxLineSize)

	return &Reader{scanner: scanner, closer: closer}, nil
}

func decompress(br *bufio.Reader) (io.Reader, io.Closer, error) {
	magic, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("failed to read input: %w", err)
	}

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, gz, nil
	case bytes.HasPrefix(magic, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		rc := dec.IOReadCloser()
		return rc, rc, nil
	default:
		return br, nil, nil
	}
}

// Read returns the next record, or io.EOF when the input is exhausted.
func (r *Reader) Read() (*Record, error) {
	header, err := r.nextHeader()
	if err != nil {
		return nil, err
	}
	if header[0] != '@' {
		return nil, fmt.Errorf("%w: line %d: header does not start with '@'", ErrMalformed, r.line)
	}

	rec := &Record{}
	name, comment, _ := bytes.Cut(header[1:], []byte{' '})
	if i := bytes.IndexByte(name, '\t'); i >= 0 {
		name, comment = name[:i], name[i+1:]
	}
	rec.Name = string(name)
	rec.Comment = string(bytes.TrimSpace(comment))

	bases, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	rec.Bases = bytes.Clone(bases)

	plus, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	if len(plus) == 0 || plus[0] != '+' {
		return nil, fmt.Errorf("%w: line %d: separator does not start with '+'", ErrMalformed, r.line)
	}

	quals, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	if len(quals) != len(rec.Bases) {
		return nil, fmt.Errorf("%w: line %d: %d bases but %d qualities for %s",
			ErrMalformed, r.line, len(rec.Bases), len(quals), rec.Name)
	}
	rec.Quals = bytes.Clone(quals)

	return rec, nil
}

// nextHeader skips blank lines and returns the next header line.
func (r *Reader) nextHeader() ([]byte, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimRight(r.scanner.Bytes(), "\r")
		if len(line) > 0 {
			return line, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read FASTQ: %w", err)
	}
	return nil, io.EOF
}

func (r *Reader) nextLine() ([]byte, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read FASTQ: %w", err)
		}
		return nil, fmt.Errorf("%w: unexpected end of input after line %d", ErrTruncated, r.line)
	}
	r.line++
	return bytes.TrimRight(r.scanner.Bytes(), "\r"), nil
}

// Close releases any decompressor. It does not close the underlying reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
