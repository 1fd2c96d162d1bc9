package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/internal/summarization"
)

const analysisJSON = `{
  "job_id": "abc",
  "ai_analysis": {
    "findings": "urgent_finding",
    "confidence": 0.96,
    "image_key": "uploads/abc",
    "model_version": "v0.1-stub",
    "processing_time": "0.31 seconds"
  }
}`

func writeAnalysis(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abc.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write analysis: %v", err)
	}
	return path
}

func noModel() *summarization.Config {
	return &summarization.Config{Provider: summarization.ProviderNone}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunPrintsFallbackSummary(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), noModel(), []string{writeAnalysis(t, analysisJSON)}, &out, discardLogger())
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if !strings.Contains(out.String(), summarization.HighSeverityTemplate) {
		t.Errorf("output missing high severity template:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "(model: fallback_template at ") {
		t.Errorf("output missing provenance line:\n%s", out.String())
	}
}

func TestRunJSON(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), noModel(), []string{"-json", writeAnalysis(t, analysisJSON)}, &out, discardLogger())
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var summary summarization.Summary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if summary.ModelUsed != jobs.FallbackModel {
		t.Errorf("model_used = %s", summary.ModelUsed)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		want string
	}{
		{"no file", func(*testing.T) []string { return nil }, "usage"},
		{"missing file", func(*testing.T) []string { return []string{"/nonexistent/abc.json"} }, "read analysis"},
		{"not json", func(t *testing.T) []string { return []string{writeAnalysis(t, "nope")} }, "parse analysis"},
		{"no findings", func(t *testing.T) []string { return []string{writeAnalysis(t, `{"job_id":"abc"}`)} }, "no ai_analysis.findings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), noModel(), tt.args(t), io.Discard, discardLogger())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() error = %v, want %q", err, tt.want)
			}
		})
	}
}
