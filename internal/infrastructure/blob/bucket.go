// Package blob stores uploaded images in a gocloud.dev bucket under the
// images/ prefix and resolves them to URLs served by the API.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	"github.com/campavao/my-places/internal/places/application"
)

const keyPrefix = "images/"

// ErrNotFound is application.ErrNotFound; missing blobs are reported with it.
var ErrNotFound = application.ErrNotFound

// Store implements application.BlobStore.
type Store struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

// Open opens the bucket at bucketURL, e.g. mem:// or file:///var/lib/my-places?create_dir=true.
// Resolved image URLs are rooted at publicBaseURL.
func Open(ctx context.Context, bucketURL, publicBaseURL string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	return &Store{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}, nil
}

// Key is the bucket key for an image name.
func Key(name string) string {
	return keyPrefix + name
}

func (s *Store) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, Key(name), data, opts); err != nil {
		return fmt.Errorf("write %s: %w", Key(name), err)
	}
	return nil
}

// ResolveURL returns the public URL of an existing image.
func (s *Store) ResolveURL(ctx context.Context, name string) (string, error) {
	exists, err := s.bucket.Exists(ctx, Key(name))
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", Key(name), err)
	}
	if !exists {
		return "", fmt.Errorf("image %s: %w", name, ErrNotFound)
	}
	return s.publicBaseURL + "/images/" + url.PathEscape(name), nil
}

// Open streams an image and reports its content type.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	reader, err := s.bucket.NewReader(ctx, Key(name), nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, "", fmt.Errorf("image %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", Key(name), err)
	}
	return reader, reader.ContentType(), nil
}

func (s *Store) Close() error {
	return s.bucket.Close()
}
