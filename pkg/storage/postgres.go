package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Sakshi281205/sleeppeddlers/pkg/lifecycle"
)

type postgres struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// NewPostgres stores objects as rows of the documents table created by
// cmd/migrate. The connection pool is owned by the database system.
func NewPostgres(db *sql.DB, logger *slog.Logger) System {
	return &postgres{
		db:     db,
		table:  "documents",
		logger: logger.With("system", "storage", "backend", BackendPostgres),
	}
}

func (p *postgres) Container() string {
	return p.table
}

func (p *postgres) Start(lc *lifecycle.Coordinator) error {
	p.logger.Info("starting storage system", "table", p.table)
	return nil
}

func (p *postgres) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}

	q := `
		INSERT INTO documents (key, content_type, body, size_bytes, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (key) DO UPDATE
		SET content_type = EXCLUDED.content_type,
			body = EXCLUDED.body,
			size_bytes = EXCLUDED.size_bytes,
			updated_at = EXCLUDED.updated_at`

	if _, err := p.db.ExecContext(ctx, q, key, contentType, data, len(data)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (p *postgres) Download(ctx context.Context, key string) (*Blob, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var (
		contentType string
		body        []byte
	)
	row := p.db.QueryRowContext(ctx, `SELECT content_type, body FROM documents WHERE key = $1`, key)
	if err := row.Scan(&contentType, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}

	return &Blob{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentType:   contentType,
		ContentLength: int64(len(body)),
	}, nil
}

func (p *postgres) Find(ctx context.Context, key string) (*Metadata, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	meta := &Metadata{Key: key}
	row := p.db.QueryRowContext(
		ctx,
		`SELECT content_type, size_bytes, updated_at FROM documents WHERE key = $1`,
		key,
	)
	if err := row.Scan(&meta.ContentType, &meta.Size, &meta.LastModified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select metadata %s: %w", key, err)
	}
	return meta, nil
}

func (p *postgres) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	var exists bool
	row := p.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE key = $1)`, key)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return exists, nil
}

func (p *postgres) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	res, err := p.db.ExecContext(ctx, `DELETE FROM documents WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
