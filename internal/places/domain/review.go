package domain

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxRating is the highest value any sub-score or item review may take.
	MaxRating = 5
	// StarCount is the number of stars a rating widget renders.
	StarCount = 5
)

// Axis names one of the fixed review sub-scores.
type Axis int

const (
	AxisAtmosphere Axis = iota
	AxisService
	AxisMusic
	AxisBathroom
)

// Axes lists the fixed sub-scores in display order.
var Axes = []Axis{AxisAtmosphere, AxisService, AxisMusic, AxisBathroom}

func (a Axis) String() string {
	switch a {
	case AxisAtmosphere:
		return "Atmosphere"
	case AxisService:
		return "Service"
	case AxisMusic:
		return "Music"
	case AxisBathroom:
		return "Bathroom"
	}
	return "Unknown"
}

// CompleteReview is the multi-axis review embedded in every place.
type CompleteReview struct {
	Atmosphere int          `json:"atmosphere"`
	Service    int          `json:"service"`
	Music      int          `json:"music"`
	Bathroom   int          `json:"bathroom"`
	Items      []ReviewItem `json:"items"`
}

// Axis returns the value of a fixed sub-score.
func (r CompleteReview) Axis(a Axis) int {
	switch a {
	case AxisAtmosphere:
		return r.Atmosphere
	case AxisService:
		return r.Service
	case AxisMusic:
		return r.Music
	case AxisBathroom:
		return r.Bathroom
	}
	return 0
}

// SetAxis stores a clamped value into a fixed sub-score.
func (r *CompleteReview) SetAxis(a Axis, value int) {
	value = ClampRating(value)
	switch a {
	case AxisAtmosphere:
		r.Atmosphere = value
	case AxisService:
		r.Service = value
	case AxisMusic:
		r.Music = value
	case AxisBathroom:
		r.Bathroom = value
	}
}

// Overall averages the fixed sub-scores together with every item review.
// Each added item joins the denominator, so items re-weight the average.
func (r CompleteReview) Overall() float64 {
	sum := 0
	for _, axis := range Axes {
		sum += r.Axis(axis)
	}
	for _, item := range r.Items {
		sum += item.Review
	}
	return float64(sum) / float64(len(Axes)+len(r.Items))
}

// Clone deep-copies the item list.
func (r CompleteReview) Clone() CompleteReview {
	clone := r
	if r.Items != nil {
		clone.Items = append([]ReviewItem{}, r.Items...)
	}
	return clone
}

// Equal compares sub-scores and items in order.
func (r CompleteReview) Equal(other CompleteReview) bool {
	for _, axis := range Axes {
		if r.Axis(axis) != other.Axis(axis) {
			return false
		}
	}
	if len(r.Items) != len(other.Items) {
		return false
	}
	for i := range r.Items {
		if r.Items[i] != other.Items[i] {
			return false
		}
	}
	return true
}

// ReviewItem rates one food or drink. ID is stable for the item's lifetime;
// Name is display text only and may collide.
type ReviewItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Review      int      `json:"review"`
	Type        ItemType `json:"type"`
	Description string   `json:"description,omitempty"`
	ImageName   string   `json:"imageName,omitempty"`
}

// NewReviewItem returns an empty item with a fresh id.
func NewReviewItem() ReviewItem {
	return ReviewItem{ID: uuid.NewString(), Type: ItemAppetizer}
}

// ClampRating limits a rating to [0, MaxRating].
func ClampRating(value int) int {
	if value < 0 {
		return 0
	}
	if value > MaxRating {
		return MaxRating
	}
	return value
}

// StarFilled reports whether the star at 1-based position is filled for rating.
func StarFilled(position int, rating float64) bool {
	return float64(position) <= rating
}

// StarsFilled returns the fill state of every star; fractional ratings fill
// only whole stars.
func StarsFilled(rating float64) [StarCount]bool {
	var stars [StarCount]bool
	for i := range stars {
		stars[i] = StarFilled(i+1, rating)
	}
	return stars
}

// RenderStars draws a rating as filled and empty star glyphs.
func RenderStars(rating float64) string {
	var b strings.Builder
	for _, filled := range StarsFilled(rating) {
		if filled {
			b.WriteString("★")
		} else {
			b.WriteString("☆")
		}
	}
	return b.String()
}
