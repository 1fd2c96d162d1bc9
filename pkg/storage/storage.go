// Package storage provides the blob layer beneath the job document store:
// keyed objects with a content type, last-write-wins per key, and no
// cross-key transactions. Backends: Azure Blob Storage, S3-compatible
// (MinIO), PostgreSQL, and in-memory.
package storage

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/Sakshi281205/sleeppeddlers/pkg/lifecycle"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory   = "memory"
	BackendAzure    = "azure"
	BackendMinIO    = "minio"
	BackendPostgres = "postgres"
)

// System is a keyed object store. Every Upload fully replaces the object at key.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Container names the bucket, container, or table objects live in.
	Container() string
	// Upload streams data to key, replacing any existing object.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns the object at key. The caller must close Body.
	// Returns ErrNotFound if the object does not exist.
	Download(ctx context.Context, key string) (*Blob, error)
	// Find returns object metadata without the body (head-object).
	// Returns ErrNotFound if the object does not exist.
	Find(ctx context.Context, key string) (*Metadata, error)
	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the object at key. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error
}

// Blob is a downloaded object.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Metadata describes an object without its body.
type Metadata struct {
	Key          string    `json:"key"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectEvent is an object-created notification.
type ObjectEvent struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Watcher delivers object-created notifications for keys under a prefix until
// ctx is cancelled. Watch does not block; fn must not block either.
type Watcher interface {
	Watch(ctx context.Context, prefix string, fn func(context.Context, ObjectEvent)) error
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
