package main

import (
	"github.com/campavao/my-places/internal/places/domain"
)

func demoPlaces() []domain.Place {
	spacca := domain.NewPlace("")
	spacca.Name = "Spacca Napoli"
	spacca.Description = "Neapolitan pizza from a wood-fired oven."
	spacca.Location = "1769 W Sunnyside Ave, Chicago, IL"
	spacca.Website = "spaccanapolipizzeria.com"
	spacca.Cuisine = "Pizza"
	spacca.Price = domain.PriceModerate
	spacca.ThingsToTry = []string{"Diavola"}
	spacca.Review = domain.CompleteReview{
		Atmosphere: 4,
		Service:    4,
		Music:      2,
		Items: []domain.ReviewItem{
			item("Margherita", domain.ItemEntree, 5),
			item("Burrata", domain.ItemAppetizer, 4),
		},
	}

	chilis := domain.NewPlace("")
	chilis.Name = "Chili's"
	chilis.Location = "Chicago, IL"
	chilis.Website = "https://www.chilis.com"
	chilis.Cuisine = "American"
	chilis.Price = domain.PriceBudget
	chilis.Review = domain.CompleteReview{
		Atmosphere: 2,
		Service:    3,
		Music:      3,
		Bathroom:   2,
		Items: []domain.ReviewItem{
			item("Skillet Queso", domain.ItemAppetizer, 4),
			item("Presidente Margarita", domain.ItemDrink, 3),
		},
	}

	sweetgreen := domain.NewPlace("")
	sweetgreen.Name = "Sweetgreen"
	sweetgreen.Location = "Chicago, IL"
	sweetgreen.Website = "sweetgreen.com"
	sweetgreen.Cuisine = "Salads"
	sweetgreen.Price = domain.PriceModerate
	sweetgreen.ThingsToTry = []string{"Kale Caesar"}
	sweetgreen.Review = domain.CompleteReview{
		Atmosphere: 3,
		Service:    4,
		Items: []domain.ReviewItem{
			item("Harvest Bowl", domain.ItemEntree, 4),
		},
	}

	return []domain.Place{spacca, chilis, sweetgreen}
}

func item(name string, itemType domain.ItemType, review int) domain.ReviewItem {
	it := domain.NewReviewItem()
	it.Name = name
	it.Type = itemType
	it.Review = review
	return it
}
