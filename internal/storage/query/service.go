// Package query runs SQL over the artifacts of a run with an embedded DuckDB.
//
// DuckDB reads the Parquet tiers and the fine-window CSV in place; nothing
// is imported. The service is read-only and never modifies the files it
// queries.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/config"
	"github.com/xtxerr/wearsim/internal/storage/types"
	"github.com/xtxerr/wearsim/internal/validation"
)

// Service provides query capabilities over stored data.
type Service struct {
	mu sync.RWMutex

	config *config.Config
	db     *sql.DB

	// Statistics
	statsMu sync.Mutex
	stats   ServiceStats
}

// ServiceStats holds service statistics.
type ServiceStats struct {
	QueriesExecuted int64
	RowsReturned    int64
	Errors          int64
}

// Filter restricts the rows returned by a tier query. Zero values do not
// filter.
type Filter struct {
	Identity string
	Start    int64 // inclusive lower bound on start_seg
	End      int64 // inclusive upper bound on end_seg
	Limit    int
}

// New creates a new query service backed by an in-memory DuckDB database.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.NewDatabase("open duckdb", err)
	}

	if cfg.Query.MemoryLimit != "" {
		_, err = db.Exec("SET memory_limit=" + validation.QuoteSQLString(cfg.Query.MemoryLimit))
		if err != nil {
			db.Close()
			return nil, errors.NewDatabase("set memory limit", err)
		}
	}

	return &Service{
		config: cfg,
		db:     db,
	}, nil
}

// Close closes the query service.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Segments returns window summaries from the segment tier.
func (s *Service) Segments(ctx context.Context, f Filter) ([]types.WindowSummary, error) {
	source, ok := s.tierSource(types.TierSegment)
	if !ok {
		return []types.WindowSummary{}, nil
	}

	where, args := f.where()
	query := `
		SELECT
			user_id, min_hr, max_hr, avg_hr, avg_rr,
			start_seg, end_seg, count,
			hr_p50, hr_p90, hr_p99
		FROM ` + source + where + `
		ORDER BY start_seg, user_id` + f.limit()

	return runQuery(s, ctx, query, args, scanSegment)
}

// Rollups returns rollup summaries from the rollup tier.
func (s *Service) Rollups(ctx context.Context, f Filter) ([]types.RollupSummary, error) {
	source, ok := s.tierSource(types.TierRollup)
	if !ok {
		return []types.RollupSummary{}, nil
	}

	where, args := f.where()
	query := `
		SELECT
			user_id, avg_hr, min_hr, max_hr, avg_rr,
			start_seg, end_seg, windows
		FROM ` + source + where + `
		ORDER BY start_seg, user_id` + f.limit()

	return runQuery(s, ctx, query, args, scanRollup)
}

// SegmentsFromCSV reads a fine-window CSV export. Columns are resolved by
// header name, so column order in the file does not matter. Rows come back
// in file order.
func (s *Service) SegmentsFromCSV(ctx context.Context, path string) ([]types.WindowSummary, error) {
	query := `
		SELECT
			CAST(user_id AS VARCHAR),
			CAST(min_hr AS INTEGER), CAST(max_hr AS INTEGER),
			CAST(avg_hr AS DOUBLE), CAST(avg_rr AS DOUBLE),
			CAST(start_seg AS BIGINT), CAST(end_seg AS BIGINT),
			CAST(0 AS BIGINT),
			CAST(NULL AS DOUBLE), CAST(NULL AS DOUBLE), CAST(NULL AS DOUBLE)
		FROM read_csv(` + validation.QuoteSQLString(path) + `, header = true)`

	results, err := runQuery(s, ctx, query, nil, scanSegment)
	if err != nil {
		return nil, errors.NewIOFailure("query csv", path, err)
	}
	return results, nil
}

// ExactRollups recomputes rollups directly from the raw tier. Each group
// holds windowSize*groupSize consecutive readings of one identity within one
// file; partial groups are dropped.
//
// Rollup takes the unweighted mean of window averages. For full windows
// of equal size both agree up to floating-point rounding, so comparing the
// two checks the rollup stage against the readings it was derived from.
//
// files restricts the computation to the given raw tier files; with none,
// every file of the raw tier is read.
func (s *Service) ExactRollups(ctx context.Context, windowSize, groupSize int, files ...string) ([]types.RollupSummary, error) {
	if windowSize <= 0 {
		return nil, errors.NewInvalidArgument("window_size_seconds", windowSize, "must be positive")
	}
	if groupSize <= 0 {
		return nil, errors.NewInvalidArgument("group_size", groupSize, "must be positive")
	}

	source := make([]string, 0, len(files))
	for _, f := range files {
		source = append(source, validation.QuoteSQLString(f))
	}
	if len(source) == 0 {
		pattern, ok := s.tierPattern(types.TierRaw)
		if !ok {
			return []types.RollupSummary{}, nil
		}
		source = append(source, validation.QuoteSQLString(pattern))
	}

	span := windowSize * groupSize
	query := fmt.Sprintf(`
		WITH positioned AS (
			SELECT
				*,
				(row_number() OVER (PARTITION BY filename, user_id ORDER BY timestamp) - 1) // %d AS grp
			FROM read_parquet([%s], filename = true)
		)
		SELECT
			user_id, avg(heart_rate), min(heart_rate), max(heart_rate),
			avg(respiratory_rate), min(timestamp), max(timestamp),
			CAST(%d AS INTEGER)
		FROM positioned
		GROUP BY filename, user_id, grp
		HAVING count(*) = %d
		ORDER BY filename, grp, user_id`, span, strings.Join(source, ", "), groupSize, span)

	return runQuery(s, ctx, query, nil, scanRollup)
}

// ExecuteSQL executes a raw SQL query using DuckDB.
// This is useful for ad-hoc queries and debugging.
func (s *Service) ExecuteSQL(ctx context.Context, query string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.countError()
		return nil, errors.NewDatabase("execute", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	s.count(len(results))

	return results, rows.Err()
}

// Stats returns query statistics.
func (s *Service) Stats() ServiceStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// tierPattern returns the glob matching every file of tier. It reports
// false when the tier holds no files yet.
func (s *Service) tierPattern(tier types.Tier) (string, bool) {
	pattern := filepath.Join(s.config.TierDir(tier.String()), "*.parquet")

	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return pattern, true
}

// tierSource returns a read_parquet expression over every file of tier.
func (s *Service) tierSource(tier types.Tier) (string, bool) {
	pattern, ok := s.tierPattern(tier)
	if !ok {
		return "", false
	}
	return "read_parquet(" + validation.QuoteSQLString(pattern) + ")", true
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Identity != "" {
		args = append(args, f.Identity)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Start != 0 {
		args = append(args, f.Start)
		conds = append(conds, fmt.Sprintf("start_seg >= $%d", len(args)))
	}
	if f.End != 0 {
		args = append(args, f.End)
		conds = append(conds, fmt.Sprintf("end_seg <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

func (f Filter) limit() string {
	if f.Limit <= 0 {
		return ""
	}
	return fmt.Sprintf("\n\t\tLIMIT %d", f.Limit)
}

type scanner interface {
	Scan(dest ...any) error
}

func runQuery[T any](s *Service, ctx context.Context, query string, args []any, scan func(scanner) (T, error)) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.countError()
		return nil, errors.NewDatabase("query", err)
	}
	defer rows.Close()

	results := []T{}
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			s.countError()
			return nil, errors.Wrap(err, "scan row")
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		s.countError()
		return nil, errors.NewDatabase("iterate rows", err)
	}

	s.count(len(results))
	return results, nil
}

func scanSegment(row scanner) (types.WindowSummary, error) {
	var w types.WindowSummary
	var p50, p90, p99 sql.NullFloat64

	err := row.Scan(
		&w.Identity, &w.MinHeartRate, &w.MaxHeartRate,
		&w.AvgHeartRate, &w.AvgRespiratoryRate,
		&w.StartTimestamp, &w.EndTimestamp, &w.Count,
		&p50, &p90, &p99,
	)
	if err != nil {
		return w, err
	}

	if p50.Valid && p90.Valid && p99.Valid {
		w.SetPercentiles(p50.Float64, p90.Float64, p99.Float64)
	}

	return w, nil
}

func scanRollup(row scanner) (types.RollupSummary, error) {
	var r types.RollupSummary

	err := row.Scan(
		&r.Identity, &r.AvgHeartRate, &r.MinHeartRate, &r.MaxHeartRate,
		&r.AvgRespiratoryRate, &r.StartTimestamp, &r.EndTimestamp, &r.Windows,
	)
	return r, err
}

func (s *Service) count(rows int) {
	s.statsMu.Lock()
	s.stats.QueriesExecuted++
	s.stats.RowsReturned += int64(rows)
	s.statsMu.Unlock()
}

func (s *Service) countError() {
	s.statsMu.Lock()
	s.stats.Errors++
	s.statsMu.Unlock()
}
