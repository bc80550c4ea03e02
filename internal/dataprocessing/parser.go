package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"glikoz/internal/errors"
	"glikoz/pkg/contracts/domain"
)

// Format identifies the input file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatDiaguard Format = "diaguard"
)

// DefaultTimestampLayout is the timestamp layout of the standard CSV export.
const DefaultTimestampLayout = "2006-01-02 15:04"

// Recognized column names. The date column is required; all others are
// optional per row and per file.
const (
	colDate         = "date"
	colGlucose      = "glucose"
	colFastInsulin  = "fast_insulin"
	colBasalInsulin = "basal_insulin"
	colCarbs        = "carbs"
)

var valueColumns = []string{colGlucose, colFastInsulin, colBasalInsulin, colCarbs}

// Parser converts raw tabular export rows into Observations. Parsing is
// strict: a missing or unparseable date, or a present but non-numeric value,
// fails the whole parse. There is no partial output.
type Parser struct {
	logger *slog.Logger
	layout string
}

// NewParser creates a parser using the given timestamp layout. A nil logger
// falls back to slog.Default; an empty layout falls back to
// DefaultTimestampLayout.
func NewParser(logger *slog.Logger, layout string) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	return &Parser{logger: logger, layout: layout}
}

// DetectFormat guesses the input format from the file extension. Anything
// that is not .xlsx is treated as CSV; Diaguard backups have no reserved
// extension and must be requested explicitly.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// ParseFile reads the file at path in the given format and returns the
// observations in input order.
func (p *Parser) ParseFile(ctx context.Context, path string, format Format) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewNotFoundError(path, err)
	}
	defer f.Close()

	p.logger.InfoContext(ctx, "parsing input file",
		slog.String("path", path),
		slog.String("format", string(format)))

	switch format {
	case FormatXLSX:
		return p.parseXLSX(ctx, f)
	case FormatDiaguard:
		return p.ParseDiaguardBackup(ctx, f)
	default:
		return p.ParseCSV(ctx, f)
	}
}

// ParseCSV reads the standard comma-separated export: a required header row
// naming the columns, then one observation per non-empty row.
func (p *Parser) ParseCSV(ctx context.Context, r io.Reader) ([]domain.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("malformed CSV input", err)
	}

	return p.parseRows(ctx, rows)
}

// parseRows handles the shared header-then-data layout used by both the CSV
// and XLSX inputs. Rows must include a header naming at least the date
// column; unrecognized columns are ignored.
func (p *Parser) parseRows(ctx context.Context, rows [][]string) ([]domain.Observation, error) {
	if len(rows) == 0 {
		return nil, errors.NewParsingError("input has no header row", nil)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	observations := make([]domain.Observation, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, header is row 1
		if isEmptyRow(row) {
			continue
		}
		obs, err := p.parseRow(row, columns, rowNum)
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}

	p.logger.InfoContext(ctx, "parsed observations",
		slog.Int("row_count", len(rows)-1),
		slog.Int("observation_count", len(observations)))

	return observations, nil
}

// mapColumns maps recognized header names to their positions. Matching is
// case-insensitive and whitespace-tolerant; on duplicates the last
// occurrence wins.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case colDate:
			columns[colDate] = i
		case colGlucose:
			columns[colGlucose] = i
		case colFastInsulin:
			columns[colFastInsulin] = i
		case colBasalInsulin:
			columns[colBasalInsulin] = i
		case colCarbs:
			columns[colCarbs] = i
		}
	}

	if _, ok := columns[colDate]; !ok {
		return nil, errors.NewParsingError("header is missing required column: date", nil)
	}
	return columns, nil
}

func (p *Parser) parseRow(row []string, columns map[string]int, rowNum int) (domain.Observation, error) {
	var obs domain.Observation

	raw := cellAt(row, columns[colDate])
	if raw == "" {
		return obs, errors.NewRowError(rowNum, "date is missing", nil)
	}
	ts, err := time.Parse(p.layout, raw)
	if err != nil {
		return obs, errors.NewRowError(rowNum, fmt.Sprintf("invalid date %q", raw), err)
	}
	obs.Timestamp = ts

	for _, name := range valueColumns {
		idx, ok := columns[name]
		if !ok {
			continue
		}
		cell := cellAt(row, idx)
		if cell == "" {
			continue // not recorded, field stays nil
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
		if err != nil {
			return obs, errors.NewRowError(rowNum, fmt.Sprintf("invalid %s value %q", name, cell), err)
		}
		switch name {
		case colGlucose:
			obs.Glucose = &value
		case colFastInsulin:
			obs.FastInsulin = &value
		case colBasalInsulin:
			obs.BasalInsulin = &value
		case colCarbs:
			obs.Carbs = &value
		}
	}

	return obs, nil
}

// cellAt returns the trimmed cell at idx, or "" when the row is too short.
// Short rows are common in loosely-populated exports and mean "not recorded".
func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
