// Package storage archives generated export files in MinIO (or any S3
// compatible store) and hands out presigned download links.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-survey-backend/internal/config"
)

// ObjectStore is the part of *minio.Client used by Archive.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, params url.Values) (*url.URL, error)
}

// Archive stores export files in one bucket. It satisfies
// services.ExportArchive.
type Archive struct {
	Store  ObjectStore
	Bucket string
	URLTTL time.Duration
}

// NewMinIOArchive connects to the configured endpoint and makes sure the
// bucket exists.
func NewMinIOArchive(ctx context.Context, cfg config.ExportStorageConfig, log zerolog.Logger) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	a := &Archive{Store: client, Bucket: cfg.Bucket, URLTTL: cfg.URLTTL}
	created, err := a.EnsureBucket(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.Bucket).
		Bool("created", created).
		Msg("export archive ready")
	return a, nil
}

// EnsureBucket creates the bucket when missing and reports whether it did.
func (a *Archive) EnsureBucket(ctx context.Context) (bool, error) {
	exists, err := a.Store.BucketExists(ctx, a.Bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket %q: %w", a.Bucket, err)
	}
	if exists {
		return false, nil
	}
	if err := a.Store.MakeBucket(ctx, a.Bucket, minio.MakeBucketOptions{}); err != nil {
		return false, fmt.Errorf("create bucket %q: %w", a.Bucket, err)
	}
	return true, nil
}

// Put uploads data under objectName and returns a presigned GET URL that
// downloads it under its base name.
func (a *Archive) Put(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	if objectName == "" {
		return "", errors.New("object name is required")
	}
	_, err := a.Store.PutObject(ctx, a.Bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(objectName)))
	u, err := a.Store.PresignedGetObject(ctx, a.Bucket, objectName, a.URLTTL, params)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectName, err)
	}
	return u.String(), nil
}
