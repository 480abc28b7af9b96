// Package storage owns the tiered Parquet store of a run and the DuckDB
// query service that reads it back.
//
// Layout:
//
//	<parquet dir>/
//	    raw/<identity>_<start>.parquet      one row per reading
//	    segment/<identity>_<start>.parquet  one row per fine window
//	    rollup/<identity>_<start>.parquet   one row per rollup group
//
// Every run writes one file per tier. Several runs may share a parquet
// directory; the query service reads every file of a tier at once.
//
// Sub-packages:
//   - aggregate: fine-window and rollup statistics
//   - parquet:   typed tier writers and readers
//   - query:     DuckDB over the tiers and the fine-window CSV
//   - config:    run configuration
//   - types:     readings, summaries, tiers
package storage
