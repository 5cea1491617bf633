// Package card holds the per-place view state: which of the three card views
// is showing, the editable draft, dirty tracking against the last persisted
// snapshot, and the save handshake with the persistence gateway.
package card

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campavao/my-places/internal/places/domain"
)

var (
	ErrNameRequired      = errors.New("name is required")
	ErrSaveInFlight      = errors.New("a save is already in progress")
	ErrInvalidTransition = errors.New("invalid view transition")
	ErrItemNotFound      = errors.New("review item not found")
)

// View is the presentation state of a card.
type View int

const (
	ViewMinimized View = iota
	ViewFull
	ViewEdit
)

func (v View) String() string {
	switch v {
	case ViewMinimized:
		return "minimized"
	case ViewFull:
		return "full"
	case ViewEdit:
		return "edit"
	}
	return "unknown"
}

// ScrollTarget names the container a transition brings into view.
type ScrollTarget int

const (
	ScrollCard ScrollTarget = iota
	ScrollForm
)

// Scroller receives a scroll-into-view request on every view change.
type Scroller func(placeID string, target ScrollTarget)

// Saver overwrites the durable copy of a place.
type Saver interface {
	SavePlace(ctx context.Context, place domain.Place) error
}

// SaveRequest is handed out by BeginSave and must be passed back to
// CompleteSave once the write settles.
type SaveRequest struct {
	Token uint64
	Place domain.Place
}

// Controller owns one card's draft. It is not safe for concurrent use; the
// owning event loop serialises every call.
type Controller struct {
	view     View
	draft    domain.Place
	snapshot domain.Place
	scroll   Scroller

	nextToken uint64
	inFlight  uint64

	overallKey   string
	overallValue float64
}

// New builds a controller over the last persisted copy of a place. Places
// still carrying the empty sentinel name open directly in edit view.
func New(persisted domain.Place, scroll Scroller) *Controller {
	if scroll == nil {
		scroll = func(string, ScrollTarget) {}
	}
	c := &Controller{
		draft:    persisted.Clone(),
		snapshot: persisted.Clone(),
		scroll:   scroll,
		view:     ViewMinimized,
	}
	if persisted.IsSentinel() {
		c.view = ViewEdit
	}
	return c
}

func (c *Controller) View() View {
	return c.view
}

func (c *Controller) ID() string {
	return c.draft.ID
}

// Draft returns a copy of the in-memory place.
func (c *Controller) Draft() domain.Place {
	return c.draft.Clone()
}

// Snapshot returns a copy of the last persisted place.
func (c *Controller) Snapshot() domain.Place {
	return c.snapshot.Clone()
}

func (c *Controller) Expand() error {
	return c.transition(ViewMinimized, ViewFull, ScrollCard)
}

func (c *Controller) Edit() error {
	return c.transition(ViewFull, ViewEdit, ScrollForm)
}

func (c *Controller) Collapse() error {
	return c.transition(ViewFull, ViewMinimized, ScrollCard)
}

func (c *Controller) transition(from, to View, target ScrollTarget) error {
	if c.view != from {
		return fmt.Errorf("%w: %s to %s from %s", ErrInvalidTransition, from, to, c.view)
	}
	c.view = to
	c.scroll(c.draft.ID, target)
	return nil
}

// IsChanged reports whether the draft differs from the persisted snapshot.
func (c *Controller) IsChanged() bool {
	return !c.draft.Equal(c.snapshot)
}

// SaveLabel is the caption of the save-or-close action.
func (c *Controller) SaveLabel() string {
	if c.IsChanged() {
		return "Save"
	}
	return "Close"
}

// CanSave reports whether the save-or-close action is enabled.
func (c *Controller) CanSave() bool {
	return c.view == ViewEdit && !c.draft.IsSentinel() && c.inFlight == 0
}

// Saving reports whether a save is awaiting CompleteSave.
func (c *Controller) Saving() bool {
	return c.inFlight != 0
}

// BeginSave starts the save-then-close sequence. The returned request carries
// a copy of the draft to write. Saving an unchanged draft still issues a write.
func (c *Controller) BeginSave() (SaveRequest, error) {
	if c.view != ViewEdit {
		return SaveRequest{}, fmt.Errorf("%w: save from %s", ErrInvalidTransition, c.view)
	}
	if c.draft.IsSentinel() {
		return SaveRequest{}, ErrNameRequired
	}
	if c.inFlight != 0 {
		return SaveRequest{}, ErrSaveInFlight
	}
	c.nextToken++
	c.inFlight = c.nextToken
	return SaveRequest{Token: c.inFlight, Place: c.draft.Clone()}, nil
}

// CompleteSave settles the request issued by BeginSave. On success the saved
// copy becomes the new snapshot and the card moves to full view. On failure
// the card stays in edit view with the draft intact and saveErr is returned.
// Results for stale tokens are ignored.
func (c *Controller) CompleteSave(req SaveRequest, saveErr error) error {
	if req.Token == 0 || req.Token != c.inFlight {
		return nil
	}
	c.inFlight = 0
	if saveErr != nil {
		return saveErr
	}
	c.snapshot = req.Place.Clone()
	c.view = ViewFull
	c.scroll(c.draft.ID, ScrollCard)
	return nil
}

// SaveAndClose runs BeginSave, the write and CompleteSave in one call.
func (c *Controller) SaveAndClose(ctx context.Context, saver Saver) error {
	req, err := c.BeginSave()
	if err != nil {
		return err
	}
	return c.CompleteSave(req, saver.SavePlace(ctx, req.Place))
}

func (c *Controller) SetName(name string) {
	c.draft.Name = strings.TrimSpace(name)
}

func (c *Controller) SetDescription(description string) {
	c.draft.Description = description
}

func (c *Controller) SetLocation(location string) {
	c.draft.Location = location
}

func (c *Controller) SetWebsite(website string) {
	c.draft.Website = strings.TrimSpace(website)
}

func (c *Controller) SetCuisine(cuisine string) {
	c.draft.Cuisine = strings.TrimSpace(cuisine)
}

func (c *Controller) SetPrice(price domain.PriceTier) error {
	tier, err := domain.NewPriceTier(int(price))
	if err != nil {
		return err
	}
	c.draft.Price = tier
	return nil
}

func (c *Controller) SetImageName(name string) {
	c.draft.ImageName = name
}

// AddThingToTry appends a non-blank entry.
func (c *Controller) AddThingToTry(thing string) {
	thing = strings.TrimSpace(thing)
	if thing == "" {
		return
	}
	c.draft.ThingsToTry = append(c.draft.ThingsToTry, thing)
}

// SetAxis records a star click for one of the fixed sub-scores.
func (c *Controller) SetAxis(axis domain.Axis, rating int) {
	c.draft.Review.SetAxis(axis, rating)
}

func (c *Controller) WebsiteURL() string {
	return c.draft.WebsiteURL()
}

func (c *Controller) MapURL() string {
	return c.draft.MapURL()
}

// Overall returns the aggregate rating of the draft review, recomputed only
// when a sub-score or the item list changed.
func (c *Controller) Overall() float64 {
	key := reviewFingerprint(c.draft.Review)
	if key != c.overallKey {
		c.overallKey = key
		c.overallValue = c.draft.Review.Overall()
	}
	return c.overallValue
}

func reviewFingerprint(review domain.CompleteReview) string {
	var b strings.Builder
	for _, axis := range domain.Axes {
		fmt.Fprintf(&b, "%d,", review.Axis(axis))
	}
	for _, item := range review.Items {
		fmt.Fprintf(&b, "%s:%d,", item.ID, item.Review)
	}
	return b.String()
}

// Items returns a copy of the draft's review items in display order.
func (c *Controller) Items() []domain.ReviewItem {
	return append([]domain.ReviewItem{}, c.draft.Review.Items...)
}

// AddItem appends an empty item to the draft and opens an editor on it.
func (c *Controller) AddItem() *ItemEditor {
	item := domain.NewReviewItem()
	c.draft.Review.Items = append(c.draft.Review.Items, item)
	return &ItemEditor{parent: c, index: len(c.draft.Review.Items) - 1, id: item.ID, buffer: item}
}

// EditItem opens an editor over a copy of the item at index.
func (c *Controller) EditItem(index int) (*ItemEditor, error) {
	if index < 0 || index >= len(c.draft.Review.Items) {
		return nil, fmt.Errorf("%w: index %d", ErrItemNotFound, index)
	}
	item := c.draft.Review.Items[index]
	return &ItemEditor{parent: c, index: index, id: item.ID, buffer: item}, nil
}
