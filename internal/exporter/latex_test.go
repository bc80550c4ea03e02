package exporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glikoz/pkg/contracts/domain"
)

func sampleReport() *domain.ReportData {
	return &domain.ReportData{
		Days: []domain.DaySummary{
			{
				Date:         "2024-01-01",
				EntryCount:   2,
				GlucoseCount: 2,
				MeanGlucose:  domain.Float(130),
				FastInsulin:  domain.Float(2),
				BasalInsulin: domain.Float(10),
				Carbs:        domain.Float(50),
			},
		},
		Stats: domain.ReportStats{
			HbA1c:                     domain.Float(6.5),
			TotalEntryCount:           2,
			GlucoseEntryCount:         2,
			MeanDailyGlucoseEntryRate: 2,
			MeanFastInsulinPerDay:     2,
			TimeInRange:               1,
		},
	}
}

func renderToString(t *testing.T, w *LaTeXWriter, data *domain.ReportData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, w.Render(&buf, data))
	return buf.String()
}

func TestRender_Document(t *testing.T) {
	w := NewLaTeXWriter(nil, Options{})
	out := renderToString(t, w, sampleReport())

	assert.Contains(t, out, `\documentclass[a4paper]{article}`)
	assert.Contains(t, out, `\usepackage{pgfplots}`)
	assert.Contains(t, out, `\usepackage{pgf-pie}`)
	assert.Contains(t, out, `\title{Glikoz Report}`)
	assert.Contains(t, out, `\maketitle`)
	assert.True(t, strings.HasSuffix(out, "\\end{document}\n"))
}

func TestRender_EscapesTitle(t *testing.T) {
	w := NewLaTeXWriter(nil, Options{Title: "Progress & Review"})
	out := renderToString(t, w, sampleReport())

	assert.Contains(t, out, `\title{Progress \& Review}`)
	assert.NotContains(t, out, `\title{Progress & Review}`)
}

func TestRender_Stats(t *testing.T) {
	w := NewLaTeXWriter(nil, Options{})
	out := renderToString(t, w, sampleReport())

	assert.Contains(t, out, `\textbf{HbA1c:} 6.50`)
	assert.Contains(t, out, `\textbf{Entry Count:} 2`)
	assert.Contains(t, out, `\textbf{Glucose Entry Count:} 2`)
	assert.Contains(t, out, `\textbf{Mean Daily Glucose Entry Rate:} 2.00`)
	assert.Contains(t, out, `\textbf{Total Low Count:} 0`)
	assert.Contains(t, out, `\textbf{Mean Daily Fast Insulin Intake:} 2.00`)
}

func TestRender_OmitsHbA1cWhenAbsent(t *testing.T) {
	data := sampleReport()
	data.Stats.HbA1c = nil

	w := NewLaTeXWriter(nil, Options{})
	out := renderToString(t, w, data)

	assert.NotContains(t, out, "HbA1c")
}

func TestRender_DayTable(t *testing.T) {
	w := NewLaTeXWriter(nil, Options{})
	out := renderToString(t, w, sampleReport())

	assert.Contains(t, out, `\subsection*{Daily Summary}`)
	assert.Contains(t, out, `Date & Readings & Mean Glucose & Fast Insulin & Basal Insulin & Carbs \\`)
	assert.Contains(t, out, `2024-01-01 & 2 & 130.00 & 2.00 & 10.00 & 50.00 \\`)
}

func TestRender_AbsentMetricsLeaveCellsEmpty(t *testing.T) {
	data := sampleReport()
	data.Days[0].FastInsulin = nil
	data.Days[0].BasalInsulin = nil
	data.Days[0].Carbs = nil

	w := NewLaTeXWriter(nil, Options{})
	out := renderToString(t, w, data)

	assert.Contains(t, out, `2024-01-01 & 2 & 130.00 &  &  &  \\`)
}

func TestRender_PieDropsZeroSlices(t *testing.T) {
	w := NewLaTeXWriter(nil, Options{})
	out := renderToString(t, w, sampleReport())

	assert.Contains(t, out, `\pie[color={green}]{100.0/In Range}`)
	assert.NotContains(t, out, "Below Range}")
}

func TestRender_PieKeepsAllNonZeroSlices(t *testing.T) {
	data := sampleReport()
	data.Stats.TimeInRange = 0.5
	data.Stats.TimeBelowRange = 0.25
	data.Stats.TimeAboveRange = 0.25

	w := NewLaTeXWriter(nil, Options{})
	out := renderToString(t, w, data)

	assert.Contains(t, out, `\pie[color={green,blue,red}]{50.0/In Range,25.0/Below Range,25.0/Above Range}`)
}

func TestRender_NoData(t *testing.T) {
	w := NewLaTeXWriter(nil, Options{})

	for _, data := range []*domain.ReportData{nil, {}} {
		out := renderToString(t, w, data)
		assert.Contains(t, out, "No data is available for this report.")
		assert.NotContains(t, out, "Daily Summary")
		assert.Contains(t, out, `\end{document}`)
	}
}

func TestRender_Precision(t *testing.T) {
	w := NewLaTeXWriter(nil, Options{Precision: 1})
	out := renderToString(t, w, sampleReport())

	assert.Contains(t, out, `2024-01-01 & 2 & 130.0 & 2.0 & 10.0 & 50.0 \\`)
}

func TestRender_LineGraphSkipsEmptyHours(t *testing.T) {
	data := sampleReport()
	data.Stats.MeanGlucoseByHour[8] = 110
	data.Stats.MeanGlucoseByHour[18] = 200

	w := NewLaTeXWriter(nil, Options{})
	out := renderToString(t, w, data)

	start := strings.Index(out, `\subsection*{Mean Glucose by Hour}`)
	require.GreaterOrEqual(t, start, 0)
	lineGraph := out[start:]

	assert.Contains(t, lineGraph, "(8,110)")
	assert.Contains(t, lineGraph, "(18,200)")
	assert.NotContains(t, lineGraph, "(12,0)")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "out.tex")

	w := NewLaTeXWriter(nil, Options{})
	require.NoError(t, w.WriteFile(context.Background(), path, sampleReport()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `\documentclass[a4paper]{article}`)
	assert.Contains(t, string(content), "2024-01-01 & 2 & 130.00 & 2.00 & 10.00 & 50.00")
}
