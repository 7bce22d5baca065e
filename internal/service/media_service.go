package service

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"inkpress/internal/media"
	"inkpress/internal/middleware"
	"inkpress/internal/models"

	"github.com/google/uuid"
)

const defaultMediaFolder = "inkpress"

var folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}(/[a-z0-9][a-z0-9_-]{0,63}){0,3}$`)

// MediaStore persists uploaded objects.
type MediaStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, opts media.UploadOptions) (*media.Object, error)
	Delete(ctx context.Context, publicID string) error
}

type MediaService struct {
	store    MediaStore
	maxBytes int64
}

type UploadInput struct {
	Reader   io.Reader
	Size     int64
	Filename string
	Folder   string
}

func NewMediaService(store MediaStore, maxBytes int64) *MediaService {
	return &MediaService{store: store, maxBytes: maxBytes}
}

func (s *MediaService) available() error {
	if s == nil || s.store == nil {
		return models.NewUpstreamError("media store", errMediaDisabled)
	}
	return nil
}

// Upload sniffs the content type, checks the size limit and stores the file
// under folder/resourceType/<uuid>.<ext>.
func (s *MediaService) Upload(ctx context.Context, in UploadInput) (*media.Object, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	if in.Reader == nil || in.Size <= 0 {
		return nil, models.NewValidationError("file is required")
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, models.NewValidationError("file exceeds the upload size limit")
	}

	folder := strings.Trim(strings.ToLower(strings.TrimSpace(in.Folder)), "/")
	if folder == "" {
		folder = defaultMediaFolder
	}
	if !folderPattern.MatchString(folder) {
		return nil, models.NewValidationError("folder may only contain lowercase letters, digits, '-', '_' and '/'")
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(in.Reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, models.NewValidationError("could not read upload")
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	var resourceType string
	switch {
	case strings.HasPrefix(contentType, "image/"):
		resourceType = media.ResourceImage
	case strings.HasPrefix(contentType, "video/"):
		resourceType = media.ResourceVideo
	default:
		return nil, models.NewValidationError("only image and video uploads are accepted")
	}

	obj, err := s.store.Upload(ctx, io.MultiReader(bytes.NewReader(head), in.Reader), in.Size, media.UploadOptions{
		Folder:       folder,
		ResourceType: resourceType,
		ContentType:  contentType,
		Filename:     uuid.NewString() + extensionFor(in.Filename, contentType),
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "media upload failed", "folder", folder, "error", err)
		return nil, models.NewUpstreamError("media store", err)
	}
	return obj, nil
}

// extensionFor prefers the client's extension and falls back to one derived from the sniffed type.
func extensionFor(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" && len(ext) <= 6 && !strings.ContainsAny(ext, "/\\ ") {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func (s *MediaService) Delete(ctx context.Context, publicID string) error {
	if err := s.available(); err != nil {
		return err
	}
	publicID = strings.TrimSpace(publicID)
	if publicID == "" || strings.Contains(publicID, "..") || strings.HasPrefix(publicID, "/") {
		return models.NewValidationError("public_id is invalid")
	}
	if err := s.store.Delete(ctx, publicID); err != nil {
		return models.NewUpstreamError("media store", err)
	}
	return nil
}
