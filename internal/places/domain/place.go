package domain

import (
	"time"
)

// CurrentSchemaVersion is the canonical place document version written by this service.
const CurrentSchemaVersion = 2

// Place is one catalogued restaurant or location owned by a user.
// An empty Name marks a place that has not been completed yet.
type Place struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Location      string         `json:"location,omitempty"`
	Website       string         `json:"website,omitempty"`
	Cuisine       string         `json:"cuisine,omitempty"`
	Price         PriceTier      `json:"price,omitempty"`
	ImageName     string         `json:"imageName,omitempty"`
	ThingsToTry   []string       `json:"thingsToTry,omitempty"`
	Review        CompleteReview `json:"completeReview"`
	SchemaVersion int            `json:"schemaVersion,omitempty"`
	UpdatedAt     time.Time      `json:"updatedAt,omitempty"`
}

// NewPlace returns the empty shell persisted when a user adds a place.
func NewPlace(id string) Place {
	return Place{
		ID:            id,
		ThingsToTry:   []string{},
		Review:        CompleteReview{Items: []ReviewItem{}},
		SchemaVersion: CurrentSchemaVersion,
	}
}

// IsSentinel reports whether the place still carries the empty sentinel name.
func (p Place) IsSentinel() bool {
	return p.Name == ""
}

// Clone returns a deep copy so drafts never share slices with snapshots.
func (p Place) Clone() Place {
	clone := p
	if p.ThingsToTry != nil {
		clone.ThingsToTry = append([]string{}, p.ThingsToTry...)
	}
	clone.Review = p.Review.Clone()
	return clone
}

// Equal compares two places field by field, including the nested review and
// item order. Persistence metadata (SchemaVersion, UpdatedAt) is ignored.
func (p Place) Equal(other Place) bool {
	if p.ID != other.ID ||
		p.Name != other.Name ||
		p.Description != other.Description ||
		p.Location != other.Location ||
		p.Website != other.Website ||
		p.Cuisine != other.Cuisine ||
		p.Price != other.Price ||
		p.ImageName != other.ImageName {
		return false
	}
	if len(p.ThingsToTry) != len(other.ThingsToTry) {
		return false
	}
	for i := range p.ThingsToTry {
		if p.ThingsToTry[i] != other.ThingsToTry[i] {
			return false
		}
	}
	return p.Review.Equal(other.Review)
}

// WebsiteURL returns the absolute link for the website field, or "" when unset.
func (p Place) WebsiteURL() string {
	return NormalizeWebsite(p.Website)
}

// MapURL returns the map search link for the location field, or "" when unset.
func (p Place) MapURL() string {
	return MapSearchURL(p.Location)
}

// UserProfile is the per-user document listing owned place ids in display order.
type UserProfile struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Email    string   `json:"email,omitempty"`
	PlaceIDs []string `json:"places"`
}

// Owns reports whether placeID is referenced by the profile.
func (u UserProfile) Owns(placeID string) bool {
	for _, id := range u.PlaceIDs {
		if id == placeID {
			return true
		}
	}
	return false
}
