package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// MetadataTierKey is the key/value metadata entry naming a file's tier.
const MetadataTierKey = "wearsim.tier"

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// PageBufferSize is the target page buffer size in bytes
	PageBufferSize int
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{
		Compression:    CompressionZstd,
		PageBufferSize: 256 * 1024,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none", "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

func (c CompressionType) codec() compress.Codec {
	switch c {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// TierFile returns the path of the file holding one run's tier data.
func TierFile(dir, identity string, start int64) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d.parquet", identity, start))
}

// Writer writes values of type T as Parquet rows of type R.
type Writer[T, R any] struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[R]
	toRow    func(*T) R
	rowCount int64
	closed   bool
}

// ReadingWriter writes the raw tier.
type ReadingWriter = Writer[types.Reading, ReadingRow]

// SegmentWriter writes the segment tier.
type SegmentWriter = Writer[types.WindowSummary, SegmentRow]

// RollupWriter writes the rollup tier.
type RollupWriter = Writer[types.RollupSummary, RollupRow]

// NewReadingWriter creates a raw tier writer.
func NewReadingWriter(path string, opts Options) (*ReadingWriter, error) {
	return newWriter(path, types.TierRaw, opts, ReadingToRow)
}

// NewSegmentWriter creates a segment tier writer.
func NewSegmentWriter(path string, opts Options) (*SegmentWriter, error) {
	return newWriter(path, types.TierSegment, opts, SegmentToRow)
}

// NewRollupWriter creates a rollup tier writer.
func NewRollupWriter(path string, opts Options) (*RollupWriter, error) {
	return newWriter(path, types.TierRollup, opts, RollupToRow)
}

func newWriter[T, R any](path string, tier types.Tier, opts Options, toRow func(*T) R) (*Writer[T, R], error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewIOFailure("create directory", filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewIOFailure("create", path, err)
	}

	writerOpts := []parquet.WriterOption{
		parquet.Compression(opts.Compression.codec()),
		parquet.KeyValueMetadata(MetadataTierKey, tier.String()),
	}
	if opts.PageBufferSize > 0 {
		writerOpts = append(writerOpts, parquet.PageBufferSize(opts.PageBufferSize))
	}

	return &Writer[T, R]{
		path:   path,
		file:   f,
		writer: parquet.NewGenericWriter[R](f, writerOpts...),
		toRow:  toRow,
	}, nil
}

// Write appends values to the Parquet file.
func (w *Writer[T, R]) Write(values []T) error {
	if len(values) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.ErrWriterClosed
	}

	rows := make([]R, len(values))
	for i := range values {
		rows[i] = w.toRow(&values[i])
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return errors.NewIOFailure("write rows", w.path, err)
	}

	w.rowCount += int64(n)
	return nil
}

// Close flushes the footer and closes the file.
func (w *Writer[T, R]) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return errors.NewIOFailure("close writer", w.path, err)
	}

	return errors.NewIOFailure("close", w.path, w.file.Close())
}

// RowCount returns the number of rows written.
func (w *Writer[T, R]) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the file path.
func (w *Writer[T, R]) Path() string {
	return w.path
}

// WriteFile writes values to path in one shot.
func WriteFile[T, R any](path string, tier types.Tier, opts Options, toRow func(*T) R, values []T) (int64, error) {
	w, err := newWriter(path, tier, opts, toRow)
	if err != nil {
		return 0, err
	}

	if err := w.Write(values); err != nil {
		w.Close()
		return 0, err
	}

	if err := w.Close(); err != nil {
		return 0, err
	}

	return w.RowCount(), nil
}

// WriteReadings writes the raw tier file in one shot.
func WriteReadings(path string, opts Options, readings []types.Reading) (int64, error) {
	return WriteFile(path, types.TierRaw, opts, ReadingToRow, readings)
}

// WriteSegments writes the segment tier file in one shot.
func WriteSegments(path string, opts Options, summaries []types.WindowSummary) (int64, error) {
	return WriteFile(path, types.TierSegment, opts, SegmentToRow, summaries)
}

// WriteRollups writes the rollup tier file in one shot.
func WriteRollups(path string, opts Options, rollups []types.RollupSummary) (int64, error) {
	return WriteFile(path, types.TierRollup, opts, RollupToRow, rollups)
}
