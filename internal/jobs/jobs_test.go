package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
	"github.com/Sakshi281205/sleeppeddlers/pkg/storage"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"artifact", jobs.ArtifactKey("abc"), "uploads/abc"},
		{"job", jobs.JobKey("abc"), "jobs/abc.json"},
		{"analysis", jobs.AnalysisKey("abc"), "ai-results/abc.json"},
		{"result", jobs.ResultKey("abc"), "results/abc.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestIDFromKeys(t *testing.T) {
	tests := []struct {
		key      string
		fromJob  string
		fromBlob string
	}{
		{"jobs/abc.json", "abc", ""},
		{"uploads/abc", "", "abc"},
		{"uploads/", "", ""},
		{"uploads/a/b", "", ""},
		{"results/abc.json", "", ""},
		{"jobs/abc", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := jobs.IDFromJobKey(tt.key); got != tt.fromJob {
				t.Errorf("IDFromJobKey = %q, want %q", got, tt.fromJob)
			}
			if got := jobs.IDFromArtifactKey(tt.key); got != tt.fromBlob {
				t.Errorf("IDFromArtifactKey = %q, want %q", got, tt.fromBlob)
			}
		})
	}
}

func TestJobDocumentWireFormat(t *testing.T) {
	doc := jobs.JobDocument{
		JobID:     "abc",
		Status:    jobs.StatusAIComplete,
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		ImageKey:  "uploads/abc",
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"job_id":"abc","status":"ai_complete","timestamp":"2025-03-01T12:00:00Z","image_key":"uploads/abc"}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewStore(storage.NewMemory("triage"))

	analysis := &jobs.AnalysisDocument{
		JobID: "abc",
		AIAnalysis: jobs.Analysis{
			Findings:     "normal",
			Confidence:   0.73,
			ImageKey:     "uploads/abc",
			ModelVersion: "v0.1-stub",
		},
	}
	if err := store.PutAnalysis(ctx, analysis); err != nil {
		t.Fatalf("PutAnalysis: %v", err)
	}

	got, err := store.GetAnalysisAt(ctx, jobs.AnalysisKey("abc"))
	if err != nil {
		t.Fatalf("GetAnalysisAt: %v", err)
	}
	if *got != *analysis {
		t.Errorf("got %+v, want %+v", got, analysis)
	}
}

func TestStoreOverwriteIsLossy(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewStore(storage.NewMemory("triage"))

	store.PutJob(ctx, &jobs.JobDocument{
		JobID: "abc", Status: jobs.StatusProcessing, ImageKey: "uploads/abc",
		ContentType: "image/png", SizeBytes: 1024,
	})
	store.PutJob(ctx, &jobs.JobDocument{
		JobID: "abc", Status: jobs.StatusAIComplete, ImageKey: "uploads/abc",
	})

	got, err := store.GetJob(ctx, "abc")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.ContentType != "" || got.SizeBytes != 0 {
		t.Errorf("overwrite should drop metadata, got %+v", got)
	}
}

func TestStoreMissingAndMalformed(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemory("triage")
	store := jobs.NewStore(blobs)

	if _, err := store.GetResult(ctx, "missing"); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("GetResult(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := store.FindArtifact(ctx, "uploads/missing"); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("FindArtifact(missing) error = %v, want ErrNotFound", err)
	}

	blobs.Upload(ctx, "jobs/bad.json", strings.NewReader("{"), "application/json")
	if _, err := store.GetJob(ctx, "bad"); !errors.Is(err, jobs.ErrMalformed) {
		t.Errorf("GetJob(bad) error = %v, want ErrMalformed", err)
	}
}

func TestStoreUnaddressableKeyIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewStore(storage.NewMemory("triage"))

	if _, err := store.GetJob(ctx, "a..b"); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("GetJob(a..b) error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetResult(ctx, "../jobs/x"); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("GetResult(../jobs/x) error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetAnalysisAt(ctx, ""); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("GetAnalysisAt(\"\") error = %v, want ErrNotFound", err)
	}
}
