// Package parquet stores the three tiers of a run as Parquet files.
//
// The package provides:
//   - ReadingWriter/ReadingReader for the raw series
//   - SegmentWriter/SegmentReader for fine-window summaries, including
//     optional heart-rate percentiles
//   - RollupWriter/RollupReader for coarse summaries
//   - Support for multiple compression algorithms (snappy, zstd, lz4, gzip)
//
// Every file is stamped with its tier in the key/value metadata so that
// GetFileInfo can report what a file holds without knowing its schema.
package parquet
