package dataprocessing

import (
	"context"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"glikoz/internal/errors"
	"glikoz/pkg/contracts/domain"
)

// parseXLSX reads an XLSX workbook exported from a spreadsheet app. The first
// sheet must carry the same header-then-data layout as the standard CSV.
func (p *Parser) parseXLSX(ctx context.Context, r io.Reader) ([]domain.Observation, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.NewParsingError("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError("failed to read workbook rows", err)
	}

	p.logger.DebugContext(ctx, "reading workbook sheet",
		slog.String("sheet", sheet),
		slog.Int("total_rows", len(rows)))

	return p.parseRows(ctx, rows)
}
