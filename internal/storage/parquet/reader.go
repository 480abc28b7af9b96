package parquet

import (
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// Reader reads Parquet rows of type R back as values of type T.
type Reader[T, R any] struct {
	file    *os.File
	reader  *parquet.GenericReader[R]
	fromRow func(*R) T
	path    string
}

// ReadingReader reads the raw tier.
type ReadingReader = Reader[types.Reading, ReadingRow]

// SegmentReader reads the segment tier.
type SegmentReader = Reader[types.WindowSummary, SegmentRow]

// RollupReader reads the rollup tier.
type RollupReader = Reader[types.RollupSummary, RollupRow]

// NewReadingReader opens a raw tier file.
func NewReadingReader(path string) (*ReadingReader, error) {
	return newReader(path, RowToReading)
}

// NewSegmentReader opens a segment tier file.
func NewSegmentReader(path string) (*SegmentReader, error) {
	return newReader(path, RowToSegment)
}

// NewRollupReader opens a rollup tier file.
func NewRollupReader(path string) (*RollupReader, error) {
	return newReader(path, RowToRollup)
}

func newReader[T, R any](path string, fromRow func(*R) T) (*Reader[T, R], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOFailure("open", path, err)
	}

	return &Reader[T, R]{
		file:    f,
		reader:  parquet.NewGenericReader[R](f, parquet.ReadBufferSize(1024*1024)),
		fromRow: fromRow,
		path:    path,
	}, nil
}

// Read reads up to n values. It returns io.EOF once the file is exhausted.
func (r *Reader[T, R]) Read(n int) ([]T, error) {
	rows := make([]R, n)
	count, err := r.reader.Read(rows)
	if count == 0 && err != nil {
		return nil, err
	}

	values := make([]T, count)
	for i := 0; i < count; i++ {
		values[i] = r.fromRow(&rows[i])
	}

	return values, nil
}

// ReadAll reads every remaining value in the file.
func (r *Reader[T, R]) ReadAll() ([]T, error) {
	rows := make([]R, r.reader.NumRows())

	total := 0
	for total < len(rows) {
		n, err := r.reader.Read(rows[total:])
		total += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.NewIOFailure("read rows", r.path, err)
		}
		if n == 0 {
			break
		}
	}

	values := make([]T, total)
	for i := 0; i < total; i++ {
		values[i] = r.fromRow(&rows[i])
	}

	return values, nil
}

// NumRows returns the total number of rows in the file.
func (r *Reader[T, R]) NumRows() int64 {
	return r.reader.NumRows()
}

// Close closes the reader.
func (r *Reader[T, R]) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *Reader[T, R]) Path() string {
	return r.path
}

// ReadFile reads every value of a tier file in one shot.
func ReadFile[T, R any](path string, fromRow func(*R) T) ([]T, error) {
	r, err := newReader(path, fromRow)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return r.ReadAll()
}

// FileInfo holds information about a Parquet file.
type FileInfo struct {
	Path         string
	Size         int64
	NumRows      int64
	NumRowGroups int
	Tier         string
	Columns      []string
}

// GetFileInfo returns information about a Parquet file.
func GetFileInfo(path string) (*FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOFailure("open", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.NewIOFailure("stat", path, err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, errors.NewIOFailure("open parquet", path, err)
	}

	info := &FileInfo{
		Path:         path,
		Size:         stat.Size(),
		NumRows:      pf.NumRows(),
		NumRowGroups: len(pf.RowGroups()),
	}

	if tier, ok := pf.Lookup(MetadataTierKey); ok {
		info.Tier = tier
	}

	for _, field := range pf.Schema().Fields() {
		info.Columns = append(info.Columns, field.Name())
	}

	return info, nil
}
