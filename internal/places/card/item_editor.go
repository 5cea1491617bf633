package card

import (
	"fmt"
	"strings"

	"github.com/campavao/my-places/internal/places/domain"
)

// ItemEditor stages edits to a single review item. Nothing reaches the parent
// draft until Save.
type ItemEditor struct {
	parent *Controller
	index  int
	id     string
	buffer domain.ReviewItem
	closed bool
}

func (e *ItemEditor) Index() int {
	return e.index
}

// Item returns the buffered item.
func (e *ItemEditor) Item() domain.ReviewItem {
	return e.buffer
}

func (e *ItemEditor) SetName(name string) {
	e.buffer.Name = strings.TrimSpace(name)
}

func (e *ItemEditor) SetDescription(description string) {
	e.buffer.Description = description
}

func (e *ItemEditor) SetReview(rating int) {
	e.buffer.Review = domain.ClampRating(rating)
}

func (e *ItemEditor) SetType(itemType domain.ItemType) error {
	canonical, err := domain.NewItemType(string(itemType))
	if err != nil {
		return err
	}
	e.buffer.Type = canonical
	return nil
}

func (e *ItemEditor) SetImageName(name string) {
	e.buffer.ImageName = name
}

// Save replaces the parent's item at the editor's index with the buffer.
func (e *ItemEditor) Save() error {
	items := e.parent.draft.Review.Items
	if e.closed || e.index >= len(items) || items[e.index].ID != e.id {
		return fmt.Errorf("%w: index %d", ErrItemNotFound, e.index)
	}
	items[e.index] = e.buffer
	e.closed = true
	return nil
}

// Close discards the buffer.
func (e *ItemEditor) Close() {
	e.closed = true
}
