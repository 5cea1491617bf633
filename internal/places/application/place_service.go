package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/campavao/my-places/internal/places/domain"
)

// PlaceService implements the place use-cases on behalf of a signed-in user.
type PlaceService struct {
	places PlaceRepository
	users  UserRepository
	logger *log.Logger
	now    func() time.Time
}

func NewPlaceService(places PlaceRepository, users UserRepository, logger *log.Logger) *PlaceService {
	if logger == nil {
		logger = log.Default()
	}
	return &PlaceService{
		places: places,
		users:  users,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create persists an empty shell under a fresh id and appends it to the
// owner's place list. A missing profile is created on the fly.
func (s *PlaceService) Create(ctx context.Context, userID string) (domain.Place, error) {
	place := domain.NewPlace(uuid.NewString())
	place.UpdatedAt = s.now()
	if err := s.places.Put(ctx, place); err != nil {
		return domain.Place{}, fmt.Errorf("create place: %w", err)
	}

	if err := s.users.AppendPlace(ctx, userID, place.ID); err != nil {
		return domain.Place{}, fmt.Errorf("append place to profile: %w", err)
	}
	return place, nil
}

// Get returns one owned place, upgraded to the current schema.
func (s *PlaceService) Get(ctx context.Context, userID, placeID string) (domain.Place, error) {
	if err := s.checkOwner(ctx, userID, placeID); err != nil {
		return domain.Place{}, err
	}
	place, err := s.places.Get(ctx, placeID)
	if err != nil {
		return domain.Place{}, err
	}
	return s.upgrade(ctx, place), nil
}

// Save fully overwrites an owned place. Last writer wins.
func (s *PlaceService) Save(ctx context.Context, userID string, place domain.Place) (domain.Place, error) {
	if err := s.checkOwner(ctx, userID, place.ID); err != nil {
		return domain.Place{}, err
	}
	place, _ = domain.Migrate(place)
	if err := place.Validate(); err != nil {
		return domain.Place{}, fmt.Errorf("%w: %v", ErrInvalidPlace, err)
	}
	place.SchemaVersion = domain.CurrentSchemaVersion
	place.UpdatedAt = s.now()
	if err := s.places.Put(ctx, place); err != nil {
		return domain.Place{}, fmt.Errorf("save place: %w", err)
	}
	return place, nil
}

// List returns the owner's places in profile order. Ids whose documents are
// missing or unreadable are logged and reported in Skipped.
func (s *PlaceService) List(ctx context.Context, userID string) (PlaceList, error) {
	profile, err := s.users.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return PlaceList{Places: []domain.Place{}, Skipped: []string{}}, nil
	}
	if err != nil {
		return PlaceList{}, fmt.Errorf("load profile: %w", err)
	}

	result := PlaceList{
		Places:  make([]domain.Place, 0, len(profile.PlaceIDs)),
		Skipped: []string{},
	}
	for _, id := range profile.PlaceIDs {
		if err := ctx.Err(); err != nil {
			return PlaceList{}, err
		}
		place, err := s.places.Get(ctx, id)
		if err != nil {
			s.logger.Printf("skip place %s for user %s: %v", id, userID, err)
			result.Skipped = append(result.Skipped, id)
			continue
		}
		result.Places = append(result.Places, s.upgrade(ctx, place))
	}
	return result, nil
}

// upgrade migrates a legacy document and writes it back so generated item
// ids stay stable across reads. A failed write-back is only logged.
func (s *PlaceService) upgrade(ctx context.Context, place domain.Place) domain.Place {
	migrated, changed := domain.Migrate(place)
	if !changed {
		return migrated
	}
	if err := s.places.Put(ctx, migrated); err != nil {
		s.logger.Printf("write back migrated place %s: %v", migrated.ID, err)
	}
	return migrated
}

func (s *PlaceService) checkOwner(ctx context.Context, userID, placeID string) error {
	profile, err := s.users.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return ErrNotOwner
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if !profile.Owns(placeID) {
		return ErrNotOwner
	}
	return nil
}
