package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Sakshi281205/sleeppeddlers/pkg/storage"
)

const jsonContentType = "application/json"

// Store reads and writes pipeline documents on a blob backend.
type Store struct {
	blobs storage.System
}

func NewStore(blobs storage.System) *Store {
	return &Store{blobs: blobs}
}

// Blobs exposes the underlying backend for artifact access.
func (s *Store) Blobs() storage.System {
	return s.blobs
}

func (s *Store) PutJob(ctx context.Context, doc *JobDocument) error {
	return s.put(ctx, JobKey(doc.JobID), doc)
}

// PutJobAt writes doc at an explicit key. Stages addressed by a job_key
// routing hint write back to that key.
func (s *Store) PutJobAt(ctx context.Context, key string, doc *JobDocument) error {
	return s.put(ctx, key, doc)
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*JobDocument, error) {
	var doc JobDocument
	if err := s.get(ctx, JobKey(jobID), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) PutAnalysis(ctx context.Context, doc *AnalysisDocument) error {
	return s.put(ctx, AnalysisKey(doc.JobID), doc)
}

// GetAnalysisAt reads the analysis document at key.
func (s *Store) GetAnalysisAt(ctx context.Context, key string) (*AnalysisDocument, error) {
	var doc AnalysisDocument
	if err := s.get(ctx, key, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) PutResult(ctx context.Context, doc *ResultDocument) error {
	return s.put(ctx, ResultKey(doc.JobID), doc)
}

func (s *Store) GetResult(ctx context.Context, jobID string) (*ResultDocument, error) {
	var doc ResultDocument
	if err := s.get(ctx, ResultKey(jobID), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// PutArtifact writes the raw uploaded bytes.
func (s *Store) PutArtifact(ctx context.Context, jobID string, data []byte, contentType string) error {
	if err := s.blobs.Upload(ctx, ArtifactKey(jobID), bytes.NewReader(data), contentType); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// FindArtifact returns artifact metadata at key, or ErrNotFound.
func (s *Store) FindArtifact(ctx context.Context, key string) (*storage.Metadata, error) {
	meta, err := s.blobs.Find(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find artifact %s: %w", key, err)
	}
	return meta, nil
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.blobs.Upload(ctx, key, bytes.NewReader(data), jsonContentType); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	blob, err := s.blobs.Download(ctx, key)
	if err != nil {
		// A key no document can live at is an unknown job, not a store fault.
		if errors.Is(err, storage.ErrNotFound) ||
			errors.Is(err, storage.ErrInvalidKey) ||
			errors.Is(err, storage.ErrEmptyKey) {
			return ErrNotFound
		}
		return fmt.Errorf("read %s: %w", key, err)
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(blob.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, key, err)
	}
	return nil
}
