// Command process cleans a retail sales CSV once and writes the canonical
// table plus its KPI summary, without starting the server. Useful for
// validating a new source file before pointing the dashboard at it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"salespulse/internal/config"
	"salespulse/internal/dataset"
	"salespulse/internal/exporter"
	"salespulse/internal/filter"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

func main() {
	var (
		source = flag.String("source", "", "sales CSV to process (default: configured source file)")
		out    = flag.String("out", "", "write the cleaned table to this file (.csv or .xlsx)")
	)
	flag.Parse()

	if err := run(*source, *out); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(source, out string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	if source == "" {
		source = cfg.Dataset.SourceFile
	}

	loader := dataset.NewLoader(logger)
	table, err := loader.Load(ctx, source)
	if err != nil {
		return err
	}

	engine := filter.NewEngine(filter.Config{TopProducts: cfg.Dataset.TopProducts})
	summary := engine.Summarize(table.Records)

	report := struct {
		Source       string            `json:"source"`
		Rows         int               `json:"rows"`
		DroppedDates int               `json:"dropped_dates"`
		Duplicates   int               `json:"duplicates"`
		Summary      domain.KPISummary `json:"summary"`
	}{
		Source:       table.Source,
		Rows:         table.Len(),
		DroppedDates: table.DroppedDates,
		Duplicates:   table.Duplicates,
		Summary:      summary,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if out != "" {
		switch {
		case strings.HasSuffix(out, ".xlsx"):
			return exporter.NewXLSXWriter(logger).WriteTable(out, table.Records)
		case strings.HasSuffix(out, ".csv"):
			return exporter.NewCSVWriter(logger).WriteTable(out, table.Records)
		default:
			return fmt.Errorf("unsupported output format: %s", out)
		}
	}
	return nil
}
