// Package dataprocessing converts raw self-monitoring exports into
// observations and aggregates them into the report data model.
//
// The Parser accepts three input formats (standard CSV, XLSX workbooks, and
// Diaguard backups) and produces the same ordered observation sequence for
// all of them. The Summarizer groups observations by calendar date and
// computes both per-day summaries and whole-dataset statistics.
package dataprocessing
