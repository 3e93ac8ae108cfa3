// Package s3storage implements the attachment store on MinIO/S3. Uploaded
// objects live in one bucket that is made anonymously readable, so the link
// written into the sheet works for anyone who has it.
package s3storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sheetdrop/sheetdrop/internal/config"
	"github.com/sheetdrop/sheetdrop/internal/model"
)

const defaultContentType = "application/octet-stream"

// Storage wraps the MinIO client for attachment uploads and worker downloads.
type Storage struct {
	client  *minio.Client
	bucket  string
	region  string
	baseURL string
}

// New creates a MinIO client from the Config.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	scheme := "http"
	if cfg.S3UseSSL {
		scheme = "https"
	}
	return &Storage{
		client:  client,
		bucket:  cfg.S3Bucket,
		region:  cfg.S3Region,
		baseURL: fmt.Sprintf("%s://%s", scheme, cfg.S3Endpoint),
	}, nil
}

// EnsureBucket creates the attachments bucket if needed and applies an
// anyone-may-read policy to it, mirroring the "anyone with the link" access
// model of the hosted backends.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	policy := fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"AWS": ["*"]},
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("set bucket policy %s: %w", s.bucket, err)
	}
	return nil
}

// Upload stores one attachment under a fresh key prefix and returns its
// public URL. Any failure yields an UploadError carrying the filename so the
// pipeline can skip the file without aborting the batch.
func (s *Storage) Upload(ctx context.Context, att model.Attachment) (model.AttachmentRef, error) {
	contentType := att.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	key := fmt.Sprintf("attachments/%s/%s", uuid.NewString(), path.Base(att.Filename))
	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(att.Data), int64(len(att.Data)), opts)
	if err != nil {
		return model.AttachmentRef{}, &model.UploadError{Filename: att.Filename, Err: err}
	}
	return model.AttachmentRef{
		Filename:  att.Filename,
		URL:       s.objectURL(key),
		ObjectKey: key,
	}, nil
}

// Download fetches object bytes for the indexing worker.
func (s *Storage) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

func (s *Storage) objectURL(key string) string {
	u := url.URL{Path: "/" + s.bucket + "/" + key}
	return s.baseURL + u.EscapedPath()
}
