package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Sakshi281205/sleeppeddlers/pkg/lifecycle"
)

const objectCreatedEvents = "s3:ObjectCreated:*"

type s3 struct {
	client *minio.Client
	bucket string
	region string
	logger *slog.Logger
}

// NewMinIO creates an S3-compatible backend. The returned System also
// implements Watcher using MinIO bucket notifications.
func NewMinIO(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &s3{
		client: client,
		bucket: cfg.Container,
		region: cfg.MinIO.Region,
		logger: logger.With("system", "storage", "backend", BackendMinIO),
	}, nil
}

func (s *s3) Container() string {
	return s.bucket
}

func (s *s3) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system")

	lc.OnStartup("storage", func() error {
		ctx := lc.Context()
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.logger.Error("bucket lookup failed", "error", err)
			return err
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
				s.logger.Error("bucket creation failed", "error", err)
				return err
			}
		}

		s.logger.Info("storage bucket ready", "bucket", s.bucket)
		return nil
	})

	return nil
}

func (s *s3) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *s3) Download(ctx context.Context, key string) (*Blob, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}

	// GetObject is lazy; Stat surfaces a missing key.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	return &Blob{
		Body:          obj,
		ContentType:   info.ContentType,
		ContentLength: info.Size,
	}, nil
}

func (s *s3) Find(ctx context.Context, key string) (*Metadata, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	return &Metadata{
		Key:          key,
		ContentType:  info.ContentType,
		Size:         info.Size,
		LastModified: info.LastModified,
	}, nil
}

func (s *s3) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := s.Find(ctx, key); err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *s3) Delete(ctx context.Context, key string) error {
	// S3 deletes are idempotent; stat first to report missing keys.
	if _, err := s.Find(ctx, key); err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// Watch subscribes to MinIO bucket notifications for objects created under prefix.
func (s *s3) Watch(ctx context.Context, prefix string, fn func(context.Context, ObjectEvent)) error {
	ch := s.client.ListenBucketNotification(ctx, s.bucket, prefix, "", []string{objectCreatedEvents})

	go func() {
		for info := range ch {
			if info.Err != nil {
				s.logger.Error("bucket notification error", "error", info.Err)
				continue
			}
			for _, rec := range info.Records {
				key, err := url.QueryUnescape(rec.S3.Object.Key)
				if err != nil {
					key = rec.S3.Object.Key
				}
				fn(ctx, ObjectEvent{
					Bucket:      rec.S3.Bucket.Name,
					Key:         key,
					ContentType: rec.S3.Object.ContentType,
					Size:        rec.S3.Object.Size,
				})
			}
		}
		s.logger.Info("bucket notifications closed", "prefix", prefix)
	}()

	s.logger.Info("listening for bucket notifications", "prefix", prefix)
	return nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}
