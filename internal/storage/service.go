package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/logging"
	"github.com/xtxerr/wearsim/internal/storage/config"
	"github.com/xtxerr/wearsim/internal/storage/parquet"
	"github.com/xtxerr/wearsim/internal/storage/query"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// Service writes tier files and, when queries are enabled, owns the DuckDB
// query service. Tier writes are safe for concurrent use; each call writes
// its own file.
type Service struct {
	mu sync.RWMutex

	config *config.Config
	opts   parquet.Options

	// nil unless query.enabled
	query *query.Service

	closed atomic.Bool

	// Statistics
	filesWritten atomic.Int64
	rowsWritten  atomic.Int64
}

// ServiceStats holds combined statistics.
type ServiceStats struct {
	FilesWritten int64
	RowsWritten  int64
	Query        query.ServiceStats
}

// DiskUsage holds the size of one tier.
type DiskUsage struct {
	FileCount int
	TotalSize int64
}

// New creates the storage service and its directories.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, errors.Wrap(err, "ensure directories")
	}

	opts := parquet.DefaultOptions()
	opts.Compression = parquet.ParseCompressionType(cfg.Export.Parquet.Compression)

	s := &Service{
		config: cfg,
		opts:   opts,
	}

	if cfg.Query.Enabled {
		qry, err := query.New(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "create query")
		}
		s.query = qry
	}

	return s, nil
}

// WriteReadings writes the raw tier file of one run.
func (s *Service) WriteReadings(identity string, start int64, readings []types.Reading) (string, error) {
	return writeTier(s, types.TierRaw, identity, start, readings, parquet.WriteReadings)
}

// WriteSegments writes the segment tier file of one run.
func (s *Service) WriteSegments(identity string, start int64, summaries []types.WindowSummary) (string, error) {
	return writeTier(s, types.TierSegment, identity, start, summaries, parquet.WriteSegments)
}

// WriteRollups writes the rollup tier file of one run.
func (s *Service) WriteRollups(identity string, start int64, rollups []types.RollupSummary) (string, error) {
	return writeTier(s, types.TierRollup, identity, start, rollups, parquet.WriteRollups)
}

func writeTier[T any](s *Service, tier types.Tier, identity string, start int64, values []T,
	write func(string, parquet.Options, []T) (int64, error)) (string, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed.Load() {
		return "", errors.ErrServiceClosed
	}

	path := s.TierFile(tier, identity, start)

	rows, err := write(path, s.opts, values)
	if err != nil {
		return "", err
	}

	s.filesWritten.Add(1)
	s.rowsWritten.Add(rows)

	logging.Component("storage").Debug("tier written",
		"tier", tier.String(),
		"path", path,
		"rows", rows)

	return path, nil
}

// TierFile returns the path of the tier file of one run.
func (s *Service) TierFile(tier types.Tier, identity string, start int64) string {
	return parquet.TierFile(s.config.TierDir(tier.String()), identity, start)
}

// Query returns the query service, or nil when queries are disabled.
func (s *Service) Query() *query.Service {
	return s.query
}

// Config returns the current configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Close releases the query service. It is safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Swap(true) {
		return nil
	}

	if s.query != nil {
		if err := s.query.Close(); err != nil {
			return fmt.Errorf("close query: %w", err)
		}
	}

	return nil
}

// Stats returns combined statistics.
func (s *Service) Stats() ServiceStats {
	stats := ServiceStats{
		FilesWritten: s.filesWritten.Load(),
		RowsWritten:  s.rowsWritten.Load(),
	}
	if s.query != nil {
		stats.Query = s.query.Stats()
	}
	return stats
}

// DiskUsage returns the parquet file count and size of each tier. Tiers
// whose directory does not exist are reported empty.
func (s *Service) DiskUsage() map[types.Tier]DiskUsage {
	usage := make(map[types.Tier]DiskUsage)

	for _, tier := range types.AllTiers() {
		matches, _ := filepath.Glob(filepath.Join(s.config.TierDir(tier.String()), "*.parquet"))

		var u DiskUsage
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			u.FileCount++
			u.TotalSize += info.Size()
		}
		usage[tier] = u
	}

	return usage
}

// FormatDiskUsage returns a formatted string of disk usage.
func (s *Service) FormatDiskUsage() string {
	usage := s.DiskUsage()

	var result string
	var totalSize int64
	var totalFiles int

	for _, tier := range types.AllTiers() {
		u := usage[tier]
		totalSize += u.TotalSize
		totalFiles += u.FileCount

		result += fmt.Sprintf("  %-8s %d files, %s\n", tier.String()+":", u.FileCount, formatBytes(u.TotalSize))
	}

	return fmt.Sprintf("Disk Usage:\n%s  Total:   %d files, %s\n", result, totalFiles, formatBytes(totalSize))
}

func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
	)

	switch {
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
