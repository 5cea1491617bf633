package application

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// ImageService delegates raw image bytes to the blob store. No decoding or
// validation beyond the name is done.
type ImageService struct {
	blobs  BlobStore
	logger *log.Logger
	newKey func() string
}

func NewImageService(blobs BlobStore, logger *log.Logger) *ImageService {
	if logger == nil {
		logger = log.Default()
	}
	return &ImageService{blobs: blobs, logger: logger, newKey: uuid.NewString}
}

// Upload stores data under a freshly generated key that keeps the file
// extension of name, and returns that key. The client file name never
// becomes the key, so uploads from different users cannot collide.
func (s *ImageService) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	clean, err := CleanImageName(name)
	if err != nil {
		return "", err
	}
	key := s.newKey() + strings.ToLower(path.Ext(clean))
	if err := s.blobs.Upload(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	s.logger.Printf("stored image %s as %s (%s)", clean, key, humanize.Bytes(uint64(len(data))))
	return key, nil
}

func (s *ImageService) ResolveURL(ctx context.Context, name string) (string, error) {
	clean, err := CleanImageName(name)
	if err != nil {
		return "", err
	}
	return s.blobs.ResolveURL(ctx, clean)
}

func (s *ImageService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	clean, err := CleanImageName(name)
	if err != nil {
		return nil, "", err
	}
	return s.blobs.Open(ctx, clean)
}

// CleanImageName reduces an uploaded file name to a flat blob name.
func CleanImageName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.ContainsAny(trimmed, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidImageName, name)
	}
	base := path.Base(trimmed)
	if base == "." || base == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidImageName, name)
	}
	return base, nil
}
