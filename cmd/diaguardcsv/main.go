// Command diaguardcsv converts a Diaguard CSV backup into the standard
// five-column export (date, glucose, fast_insulin, basal_insulin, carbs)
// consumed by the report command.
//
// Usage:
//
//	diaguardcsv <backup-path> <output-path>
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"glikoz/internal/config"
	"glikoz/internal/dataprocessing"
	"glikoz/internal/errors"
	"glikoz/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to optional YAML config file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	input, output := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "diaguardcsv: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "diaguardcsv: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithTraceID(context.Background())

	if err := run(ctx, logger, cfg, input, output); err != nil {
		logger.ErrorContext(ctx, "conversion failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "diaguardcsv: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Converted backup written to: %s\n", output)
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, input, output string) error {
	parser := dataprocessing.NewParser(logger, cfg.Report.TimestampLayout)
	observations, err := parser.ParseFile(ctx, input, dataprocessing.FormatDiaguard)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create output file %s", output), err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"date", "glucose", "fast_insulin", "basal_insulin", "carbs"}); err != nil {
		return errors.NewStorageError("failed to write CSV header", err)
	}
	for _, obs := range observations {
		record := []string{
			obs.Timestamp.Format(cfg.Report.TimestampLayout),
			formatField(obs.Glucose),
			formatField(obs.FastInsulin),
			formatField(obs.BasalInsulin),
			formatField(obs.Carbs),
		}
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError("failed to write CSV record", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush CSV output", err)
	}

	logger.InfoContext(ctx, "converted diaguard backup",
		slog.String("input", input),
		slog.String("output", output),
		slog.Int("observation_count", len(observations)))

	return nil
}

// formatField renders an optional value; absent values stay empty so the
// converted CSV keeps the distinction between "no data" and a recorded zero.
func formatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: diaguardcsv [flags] <backup-path> <output-path>\n\nFlags:\n")
	flag.PrintDefaults()
}
