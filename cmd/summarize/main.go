// Command summarize produces a clinical summary for one analysis document
// using the configured model, falling back to the template on failure.
//
//	summarize [-json] ai-results/<job_id>.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Sakshi281205/sleeppeddlers/internal/config"
	"github.com/Sakshi281205/sleeppeddlers/internal/infrastructure"
	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/internal/summarization"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal("load .env failed:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	logger := infrastructure.NewLogger(&cfg.Logging, os.Stderr)
	if err := run(context.Background(), &cfg.Model, os.Args[1:], os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *summarization.Config, args []string, out io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print the summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: summarize [-json] <analysis.json>")
	}

	analysis, err := readAnalysis(fs.Arg(0))
	if err != nil {
		return err
	}

	model, err := summarization.NewModel(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("summarization model: %w", err)
	}
	summary := summarization.NewSummarizer(model, cfg.TimeoutDuration(), logger).Summarize(ctx, analysis)

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(out, "=== Clinical Summary ===\n\n%s\n\n(model: %s at %s)\n",
		summary.Text,
		summary.ModelUsed,
		summary.GeneratedAt.Format("2006-01-02T15:04:05Z"),
	)
	return nil
}

func readAnalysis(path string) (*jobs.AnalysisDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}

	var doc jobs.AnalysisDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	if doc.AIAnalysis.Findings == "" {
		return nil, fmt.Errorf("parse analysis: %s has no ai_analysis.findings", path)
	}
	return &doc, nil
}
