// Command report generates a LaTeX report from a diabetes self-monitoring
// export.
//
// Usage:
//
//	report [flags] <input-path> <output-path>
//
// The input is a CSV file with columns date, glucose, fast_insulin,
// basal_insulin, carbs (XLSX workbooks and Diaguard backups are also
// accepted, see -format). The output is LaTeX source meant to be compiled by
// an external toolchain. Exit code 0 on success, non-zero on any parse or
// I/O failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"glikoz/internal/config"
	"glikoz/internal/dataprocessing"
	"glikoz/internal/exporter"
	"glikoz/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to optional YAML config file")
	format := flag.String("format", "auto", "input format: auto | csv | xlsx | diaguard")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	input, output := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithTraceID(context.Background())

	if err := run(ctx, logger, cfg, input, output, *format); err != nil {
		logger.ErrorContext(ctx, "report generation failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Report generated successfully: %s\n", output)
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, input, output, format string) error {
	inputFormat, err := resolveFormat(input, format)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting report generation",
		slog.String("input", input),
		slog.String("output", output),
		slog.String("format", string(inputFormat)))

	parser := dataprocessing.NewParser(logger, cfg.Report.TimestampLayout)
	observations, err := parser.ParseFile(ctx, input, inputFormat)
	if err != nil {
		return err
	}

	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{
		LowThreshold:     cfg.Report.LowThreshold,
		VeryLowThreshold: cfg.Report.VeryLowThreshold,
		HighThreshold:    cfg.Report.HighThreshold,
		HbA1cWindowDays:  cfg.Report.HbA1cWindowDays,
	})
	data := summarizer.Build(ctx, observations)

	writer := exporter.NewLaTeXWriter(logger, exporter.Options{
		Title:     cfg.Report.Title,
		Precision: cfg.Report.Precision,
	})
	return writer.WriteFile(ctx, output, data)
}

func resolveFormat(path, format string) (dataprocessing.Format, error) {
	switch format {
	case "auto":
		return dataprocessing.DetectFormat(path), nil
	case "csv":
		return dataprocessing.FormatCSV, nil
	case "xlsx":
		return dataprocessing.FormatXLSX, nil
	case "diaguard":
		return dataprocessing.FormatDiaguard, nil
	default:
		return "", fmt.Errorf("unknown format %q (want auto, csv, xlsx or diaguard)", format)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: report [flags] <input-path> <output-path>\n\nFlags:\n")
	flag.PrintDefaults()
}
