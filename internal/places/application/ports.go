package application

import (
	"context"
	"errors"
	"io"

	"github.com/campavao/my-places/internal/places/domain"
)

var (
	// ErrNotFound is returned by repositories and services when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotOwner is returned when a place id is not listed on the caller's profile.
	ErrNotOwner = errors.New("place is not owned by user")
	// ErrInvalidPlace wraps validation failures of a submitted place.
	ErrInvalidPlace = errors.New("invalid place")
	// ErrInvalidImageName is returned for blank names or names containing a path separator.
	ErrInvalidImageName = errors.New("invalid image name")
)

// PlaceRepository persists whole place documents keyed by id.
type PlaceRepository interface {
	// Put creates or fully overwrites the document.
	Put(ctx context.Context, place domain.Place) error
	Get(ctx context.Context, id string) (domain.Place, error)
}

// UserRepository persists user profiles keyed by auth user id.
type UserRepository interface {
	Put(ctx context.Context, user domain.UserProfile) error
	Get(ctx context.Context, id string) (domain.UserProfile, error)
	// AppendPlace atomically appends placeID to the user's list, creating a
	// bare profile when none exists.
	AppendPlace(ctx context.Context, userID, placeID string) error
}

// BlobStore stores raw image bytes under opaque names.
type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	ResolveURL(ctx context.Context, name string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// PlaceList is the result of listing a user's places.
type PlaceList struct {
	Places []domain.Place
	// Skipped holds referenced ids whose documents could not be read.
	Skipped []string
}
