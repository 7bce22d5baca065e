// Package media stores uploaded images and videos in an S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"inkpress/internal/middleware"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Resource types accepted by the store.
const (
	ResourceImage = "image"
	ResourceVideo = "video"
)

// UploadOptions describes where and how an object is stored.
type UploadOptions struct {
	Folder       string
	ResourceType string
	ContentType  string
	Filename     string
}

// Object is a stored upload.
type Object struct {
	URL          string `json:"url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
	Size         int64  `json:"size"`
}

// MinioConfig configures a MinioStore.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	// PublicURL replaces the endpoint/bucket prefix of returned URLs, e.g. a CDN origin.
	PublicURL string
}

// MinioStore implements the media store on minio-go.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore builds the client. It does not contact the server.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("minio endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, publicURL: public}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	middleware.Logger.InfoContext(ctx, "created media bucket", "bucket", s.bucket)
	return nil
}

// ObjectName joins the folder, resource type and file name into an object key.
func ObjectName(opts UploadOptions) string {
	return path.Join(opts.Folder, opts.ResourceType, opts.Filename)
}

func (s *MinioStore) objectURL(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicURL + "/" + strings.Join(segments, "/")
}

// Upload streams r into the bucket.
func (s *MinioStore) Upload(ctx context.Context, r io.Reader, size int64, opts UploadOptions) (*Object, error) {
	name := ObjectName(opts)
	info, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", name, err)
	}
	return &Object{
		URL:          s.objectURL(name),
		PublicID:     name,
		ResourceType: opts.ResourceType,
		Size:         info.Size,
	}, nil
}

// Delete removes the object stored under publicID.
func (s *MinioStore) Delete(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", publicID, err)
	}
	return nil
}
