// Package status reconciles a job's documents into one externally visible
// status. It only reads from the store.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
)

// View is the reconciled status of a job.
type View struct {
	JobID     string      `json:"job_id"`
	Status    jobs.Status `json:"status"`
	UpdatedAt time.Time   `json:"updated_at"`
	Error     string      `json:"error,omitempty"`
}

// Reader answers status and result queries. Result documents are cached
// once seen; absent results are never cached.
type Reader struct {
	store *jobs.Store
	cache *lru.Cache[string, *jobs.ResultDocument]
}

// NewReader creates a Reader. cacheSize <= 0 disables the result cache.
func NewReader(store *jobs.Store, cacheSize int) (*Reader, error) {
	r := &Reader{store: store}
	if cacheSize > 0 {
		cache, err := lru.New[string, *jobs.ResultDocument](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create result cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// Status reports done when a ResultDocument exists, regardless of what the
// JobDocument says; otherwise the JobDocument status verbatim.
func (r *Reader) Status(ctx context.Context, jobID string) (*View, error) {
	result, err := r.Result(ctx, jobID)
	switch {
	case err == nil:
		return &View{JobID: jobID, Status: jobs.StatusDone, UpdatedAt: result.GeneratedAt}, nil
	case !errors.Is(err, jobs.ErrNotFound):
		return nil, err
	}

	doc, err := r.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &View{
		JobID:     jobID,
		Status:    doc.Status,
		UpdatedAt: doc.Timestamp,
		Error:     doc.Error,
	}, nil
}

// Result returns the ResultDocument, or jobs.ErrNotFound.
func (r *Reader) Result(ctx context.Context, jobID string) (*jobs.ResultDocument, error) {
	if r.cache != nil {
		if doc, ok := r.cache.Get(jobID); ok {
			return doc, nil
		}
	}

	doc, err := r.store.GetResult(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Add(jobID, doc)
	}
	return doc, nil
}
