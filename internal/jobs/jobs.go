// Package jobs defines the documents that carry a job through the pipeline
// and a typed store over the blob layer. Every write replaces the whole
// document at its key; there is no read-modify-write.
package jobs

import (
	"strings"
	"time"
)

// Status is the lifecycle state recorded in a JobDocument.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusAIComplete Status = "ai_complete"
	StatusError      Status = "error"
	// StatusDone is never written. Readers report it when a ResultDocument exists.
	StatusDone Status = "done"
)

// Key prefixes for each document kind.
const (
	UploadsPrefix  = "uploads/"
	JobsPrefix     = "jobs/"
	AnalysesPrefix = "ai-results/"
	ResultsPrefix  = "results/"
)

// FallbackModel is recorded as ModelUsed when the summary came from a template.
const FallbackModel = "fallback_template"

// JobDocument is the mutable per-job status record.
type JobDocument struct {
	JobID       string    `json:"job_id"`
	Status      Status    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	ImageKey    string    `json:"image_key"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Analysis is the classifier output.
type Analysis struct {
	Findings       string  `json:"findings"`
	Confidence     float64 `json:"confidence"`
	ImageKey       string  `json:"image_key"`
	ModelVersion   string  `json:"model_version"`
	ProcessingTime string  `json:"processing_time"`
}

// AnalysisDocument wraps the classifier output for one job. It is written
// once; re-runs write equal content.
type AnalysisDocument struct {
	JobID      string   `json:"job_id"`
	AIAnalysis Analysis `json:"ai_analysis"`
}

// ResultDocument is the terminal record. Its presence means the job is done.
type ResultDocument struct {
	JobID           string           `json:"job_id"`
	AIAnalysis      AnalysisDocument `json:"ai_analysis"`
	ClinicalSummary string           `json:"clinical_summary"`
	ModelUsed       string           `json:"model_used"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Fallback reports whether the summary came from the template path.
func (r *ResultDocument) Fallback() bool {
	return r.ModelUsed == FallbackModel
}

func ArtifactKey(jobID string) string { return UploadsPrefix + jobID }
func JobKey(jobID string) string      { return JobsPrefix + jobID + ".json" }
func AnalysisKey(jobID string) string { return AnalysesPrefix + jobID + ".json" }
func ResultKey(jobID string) string   { return ResultsPrefix + jobID + ".json" }

// IDFromJobKey strips the jobs/ prefix and .json suffix from key. It returns
// "" when key is not a job document key.
func IDFromJobKey(key string) string {
	id, ok := strings.CutPrefix(key, JobsPrefix)
	if !ok {
		return ""
	}
	id, ok = strings.CutSuffix(id, ".json")
	if !ok {
		return ""
	}
	return id
}

// IDFromArtifactKey returns the job id encoded in an artifact key, or "".
func IDFromArtifactKey(key string) string {
	id, ok := strings.CutPrefix(key, UploadsPrefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// Now returns the current time at the second precision stored in documents.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
