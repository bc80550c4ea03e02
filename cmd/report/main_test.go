package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glikoz/internal/config"
	"glikoz/internal/dataprocessing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_GeneratesReport(t *testing.T) {
	input := writeInput(t,
		"date,glucose,fast_insulin,basal_insulin,carbs\n"+
			"2024-01-01 08:00,120,2,10,30\n"+
			"2024-01-01 20:00,140,,,20\n")
	output := filepath.Join(t.TempDir(), "report.tex")

	err := run(context.Background(), testLogger(), config.Default(), input, output, "auto")
	require.NoError(t, err)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), `\documentclass[a4paper]{article}`)
	assert.Contains(t, string(content), `2024-01-01 & 2 & 130.00 & 2.00 & 10.00 & 50.00 \\`)
	assert.Contains(t, string(content), `\end{document}`)
}

func TestRun_ParseFailureWritesNothing(t *testing.T) {
	input := writeInput(t, "date,glucose\n2024-13-40 99:99,120\n")
	output := filepath.Join(t.TempDir(), "report.tex")

	err := run(context.Background(), testLogger(), config.Default(), input, output, "auto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_HeaderOnlyInputProducesNoDataReport(t *testing.T) {
	input := writeInput(t, "date,glucose,fast_insulin,basal_insulin,carbs\n")
	output := filepath.Join(t.TempDir(), "report.tex")

	err := run(context.Background(), testLogger(), config.Default(), input, output, "auto")
	require.NoError(t, err)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "No data is available for this report.")
	assert.NotContains(t, string(content), "Daily Summary")
}

func TestResolveFormat(t *testing.T) {
	format, err := resolveFormat("export.xlsx", "auto")
	require.NoError(t, err)
	assert.Equal(t, dataprocessing.FormatXLSX, format)

	format, err = resolveFormat("backup.csv", "diaguard")
	require.NoError(t, err)
	assert.Equal(t, dataprocessing.FormatDiaguard, format)

	_, err = resolveFormat("export.csv", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "pdf"`)
}
