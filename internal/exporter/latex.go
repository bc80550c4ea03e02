package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"glikoz/internal/errors"
	"glikoz/pkg/contracts/domain"
)

// LaTeXWriter renders report data into a LaTeX document.
type LaTeXWriter struct {
	logger    *slog.Logger
	title     string
	precision int
}

// Options configures the rendered document.
type Options struct {
	Title     string // document title, escaped before rendering
	Precision int    // decimal places for computed values
}

// NewLaTeXWriter creates a writer. An empty title falls back to
// "Glikoz Report"; the default precision is 2.
func NewLaTeXWriter(logger *slog.Logger, options Options) *LaTeXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if options.Title == "" {
		options.Title = "Glikoz Report"
	}
	if options.Precision <= 0 {
		options.Precision = 2
	}
	return &LaTeXWriter{
		logger:    logger,
		title:     options.Title,
		precision: options.Precision,
	}
}

// WriteFile renders the report and writes it to path, creating the parent
// directory if needed. The document is rendered fully in memory first so a
// rendering failure never leaves a partial file behind.
func (w *LaTeXWriter) WriteFile(ctx context.Context, path string, data *domain.ReportData) error {
	var b strings.Builder
	w.render(&b, data)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create report directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create report file %s", path), err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, b.String()); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to write report file %s", path), err)
	}
	if err := f.Close(); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to close report file %s", path), err)
	}

	w.logger.InfoContext(ctx, "wrote report",
		slog.String("path", path),
		slog.Int("day_count", len(data.Days)))

	return nil
}

// Render writes the document source to out. Exposed for callers that manage
// their own output (and for tests).
func (w *LaTeXWriter) Render(out io.Writer, data *domain.ReportData) error {
	var b strings.Builder
	w.render(&b, data)
	_, err := io.WriteString(out, b.String())
	return err
}

func (w *LaTeXWriter) render(b *strings.Builder, data *domain.ReportData) {
	w.writeHeader(b)

	if data == nil || data.Stats.TotalEntryCount == 0 {
		b.WriteString("No data is available for this report.\n")
		w.writeFooter(b)
		return
	}

	w.writeStats(b, data.Stats)
	w.writeDayTable(b, data.Days)
	w.writePieChart(b, "Time in Range", data.Stats)
	w.writeStackedBarChart(b, "Time in Range by Hour", data.Stats)
	w.writeLineGraph(b, "Mean Glucose by Hour", data.Stats.MeanGlucoseByHour)
	w.writeFooter(b)
}

func (w *LaTeXWriter) writeHeader(b *strings.Builder) {
	header := []string{
		`\documentclass[a4paper]{article}`,
		`\usepackage{graphicx}`,
		`\usepackage{pgfplots}`,
		`\usepackage{pgf-pie}`,
		`\pgfplotsset{compat=1.18}`,
		`\begin{document}`,
		`\title{` + escapeLaTeX(w.title) + `}`,
		`\date{\today}`,
		`\maketitle`,
		"",
	}
	b.WriteString(strings.Join(header, "\n"))
}

func (w *LaTeXWriter) writeFooter(b *strings.Builder) {
	b.WriteString("\n\\end{document}\n")
}

func (w *LaTeXWriter) writeStats(b *strings.Builder, stats domain.ReportStats) {
	if stats.HbA1c != nil {
		w.writeStat(b, "HbA1c", formatFloat(*stats.HbA1c, w.precision))
	}
	w.writeStat(b, "Entry Count", formatCount(stats.TotalEntryCount))
	w.writeStat(b, "Glucose Entry Count", formatCount(stats.GlucoseEntryCount))
	w.writeStat(b, "Mean Daily Glucose Entry Rate", formatFloat(stats.MeanDailyGlucoseEntryRate, w.precision))
	w.writeStat(b, "Total Low Count", formatCount(stats.LowCount))
	w.writeStat(b, "Total Very Low Count", formatCount(stats.VeryLowCount))
	w.writeStat(b, "Mean Daily Fast Insulin Intake", formatFloat(stats.MeanFastInsulinPerDay, w.precision))
}

func (w *LaTeXWriter) writeStat(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "\\textbf{%s:} %s\n\n", escapeLaTeX(label), value)
}

// writeDayTable renders one row per day group. Metrics that were never
// recorded on a day come through as nil and render as empty cells.
func (w *LaTeXWriter) writeDayTable(b *strings.Builder, days []domain.DaySummary) {
	b.WriteString("\\subsection*{Daily Summary}\n")
	b.WriteString("\\begin{center}\n")
	b.WriteString("\\begin{tabular}{lrrrrr}\n")
	b.WriteString("Date & Readings & Mean Glucose & Fast Insulin & Basal Insulin & Carbs \\\\\n")
	b.WriteString("\\hline\n")
	for _, day := range days {
		fmt.Fprintf(b, "%s & %s & %s & %s & %s & %s \\\\\n",
			escapeLaTeX(day.Date),
			formatCount(day.GlucoseCount),
			formatOptional(day.MeanGlucose, w.precision),
			formatOptional(day.FastInsulin, w.precision),
			formatOptional(day.BasalInsulin, w.precision),
			formatOptional(day.Carbs, w.precision),
		)
	}
	b.WriteString("\\end{tabular}\n")
	b.WriteString("\\end{center}\n\n")
}

// writePieChart renders the in/below/above range shares. Zero-valued slices
// are dropped so pgf-pie does not draw empty wedges.
func (w *LaTeXWriter) writePieChart(b *strings.Builder, title string, stats domain.ReportStats) {
	slices := []struct {
		value float64
		label string
		color string
	}{
		{stats.TimeInRange, "In Range", "green"},
		{stats.TimeBelowRange, "Below Range", "blue"},
		{stats.TimeAboveRange, "Above Range", "red"},
	}

	var parts, colors []string
	for _, slice := range slices {
		if slice.value > 0 {
			parts = append(parts, fmt.Sprintf("%.1f/%s", slice.value*100, slice.label))
			colors = append(colors, slice.color)
		}
	}

	fmt.Fprintf(b, "\\subsection*{%s}\n", escapeLaTeX(title))
	b.WriteString("\\begin{center}\n")
	b.WriteString("\\begin{tikzpicture}\n")
	fmt.Fprintf(b, "\\pie[color={%s}]{%s}\n", strings.Join(colors, ","), strings.Join(parts, ","))
	b.WriteString("\\end{tikzpicture}\n")
	b.WriteString("\\end{center}\n\n")
}

func (w *LaTeXWriter) writeStackedBarChart(b *strings.Builder, title string, stats domain.ReportStats) {
	fmt.Fprintf(b, "\\subsection*{%s}\n", escapeLaTeX(title))
	b.WriteString("\\begin{center}\n")
	b.WriteString("\\begin{tikzpicture}\n")
	b.WriteString("\\begin{axis}[\n")
	b.WriteString("    ybar stacked,\n")
	b.WriteString("    width=1.2\\textwidth,\n")
	b.WriteString("    height=8cm,\n")
	b.WriteString("    xlabel={Hour},\n")
	b.WriteString("    ylabel={Percentage},\n")
	b.WriteString("    ymin=0,\n")
	b.WriteString("    ymax=1,\n")
	b.WriteString("    ytick={0.25,0.5,0.75},\n")
	b.WriteString("    enlarge x limits=false,\n")
	b.WriteString("    xtick=data,\n")
	fmt.Fprintf(b, "    xticklabels={%s},\n", strings.Join(hourLabels(), ","))
	b.WriteString("    x tick label style={font=\\small},\n")
	b.WriteString("    legend style={at={(0.5,-0.2)}, anchor=north, legend columns=3},\n")
	b.WriteString("]\n")

	series := []struct {
		values [24]float64
		label  string
		color  string
	}{
		{stats.TimeInRangeByHour, "In Range", "green"},
		{stats.TimeBelowRangeByHour, "Below Range", "blue"},
		{stats.TimeAboveRangeByHour, "Above Range", "red"},
	}
	for _, s := range series {
		fmt.Fprintf(b, "\\addplot[fill=%s] coordinates {\n", s.color)
		for hour, value := range s.values {
			fmt.Fprintf(b, "    (%d,%s)\n", hour, formatCoordinate(value))
		}
		b.WriteString("};\n")
		fmt.Fprintf(b, "\\addlegendentry{%s}\n", s.label)
	}

	b.WriteString("\\end{axis}\n")
	b.WriteString("\\end{tikzpicture}\n")
	b.WriteString("\\end{center}\n\n")
}

func (w *LaTeXWriter) writeLineGraph(b *strings.Builder, title string, values [24]float64) {
	fmt.Fprintf(b, "\\subsection*{%s}\n", escapeLaTeX(title))
	b.WriteString("\\begin{center}\n")
	b.WriteString("\\begin{tikzpicture}\n")
	b.WriteString("\\begin{axis}[\n")
	b.WriteString("    width=1.2\\textwidth,\n")
	b.WriteString("    height=8cm,\n")
	b.WriteString("    xlabel={Hour},\n")
	b.WriteString("    ylabel={Glucose (mg/dL)},\n")
	b.WriteString("    xmin=0, xmax=23,\n")
	b.WriteString("    xtick={0,1,...,23},\n")
	fmt.Fprintf(b, "    xticklabels={%s},\n", strings.Join(hourLabels(), ","))
	b.WriteString("    x tick label style={font=\\small},\n")
	b.WriteString("    grid=major,\n")
	b.WriteString("    legend style={at={(0.5,-0.15)}, anchor=north},\n")
	b.WriteString("]\n")
	b.WriteString("\\addplot[mark=*, blue, thick] coordinates {\n")
	for hour, value := range values {
		// hours without readings stay zero and are left off the curve
		if value > 0 {
			fmt.Fprintf(b, "    (%d,%s)\n", hour, formatCoordinate(value))
		}
	}
	b.WriteString("};\n")
	b.WriteString("\\addlegendentry{Mean Glucose}\n")
	b.WriteString("\\end{axis}\n")
	b.WriteString("\\end{tikzpicture}\n")
	b.WriteString("\\end{center}\n\n")
}

func hourLabels() []string {
	labels := make([]string, 24)
	for h := range labels {
		labels[h] = fmt.Sprintf("%02d", h)
	}
	return labels
}
