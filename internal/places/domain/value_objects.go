package domain

import (
	"fmt"
	"strings"
)

// PriceTier is the coarse price level of a place. Zero means unset.
type PriceTier int

const (
	PriceUnset PriceTier = iota
	PriceBudget
	PriceModerate
	PriceExpensive
	PriceLuxury
)

func NewPriceTier(value int) (PriceTier, error) {
	if value < int(PriceUnset) || value > int(PriceLuxury) {
		return PriceUnset, fmt.Errorf("price tier must be between %d and %d", PriceUnset, PriceLuxury)
	}
	return PriceTier(value), nil
}

// ParsePriceTier accepts the "$".."$$$$" notation, or "" for unset.
func ParsePriceTier(value string) (PriceTier, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PriceUnset, nil
	}
	if strings.Trim(trimmed, "$") != "" {
		return PriceUnset, fmt.Errorf("invalid price tier: %s", trimmed)
	}
	return NewPriceTier(len(trimmed))
}

func (p PriceTier) String() string {
	return strings.Repeat("$", int(p))
}

// ItemType classifies a review item.
type ItemType string

const (
	ItemAppetizer ItemType = "Appetizer"
	ItemEntree    ItemType = "Entree"
	ItemDrink     ItemType = "Drink"
	ItemDessert   ItemType = "Dessert"
)

// ItemTypes lists every item type in menu order.
var ItemTypes = []ItemType{ItemAppetizer, ItemEntree, ItemDrink, ItemDessert}

func NewItemType(value string) (ItemType, error) {
	trimmed := strings.TrimSpace(value)
	for _, allowed := range ItemTypes {
		if strings.EqualFold(string(allowed), trimmed) {
			return allowed, nil
		}
	}
	return "", fmt.Errorf("invalid item type: %s", trimmed)
}

// Next cycles to the following item type.
func (t ItemType) Next() ItemType {
	for i, allowed := range ItemTypes {
		if allowed == t {
			return ItemTypes[(i+1)%len(ItemTypes)]
		}
	}
	return ItemTypes[0]
}

func (t ItemType) String() string {
	return string(t)
}

func NewRating(value int) (int, error) {
	if value < 0 || value > MaxRating {
		return 0, fmt.Errorf("rating must be between 0 and %d", MaxRating)
	}
	return value, nil
}

// Validate checks the invariants a persisted place must satisfy. An empty
// name is allowed since unfinished places are stored as shells.
func (p Place) Validate() error {
	if _, err := NewPriceTier(int(p.Price)); err != nil {
		return err
	}
	for _, axis := range Axes {
		if _, err := NewRating(p.Review.Axis(axis)); err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(axis.String()), err)
		}
	}
	seen := make(map[string]struct{}, len(p.Review.Items))
	for i, item := range p.Review.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("item %d: id is required", i)
		}
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("item %d: duplicate id %s", i, item.ID)
		}
		seen[item.ID] = struct{}{}
		if _, err := NewRating(item.Review); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if _, err := NewItemType(string(item.Type)); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
