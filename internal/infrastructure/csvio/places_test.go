package csvio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campavao/my-places/internal/places/domain"
)

func samplePlace() domain.Place {
	place := domain.NewPlace("p1")
	place.Name = "Spacca Napoli"
	place.Location = "1769 W Sunnyside Ave, Chicago"
	place.Website = "spaccanapolipizzeria.com"
	place.Cuisine = "Pizza"
	place.Price = domain.PriceModerate
	place.ThingsToTry = []string{"Diavola", "Tiramisu"}
	place.Review = domain.CompleteReview{
		Atmosphere: 4,
		Service:    4,
		Music:      2,
		Items: []domain.ReviewItem{
			{ID: "i1", Name: "Margherita", Review: 5, Type: domain.ItemEntree},
		},
	}
	place.UpdatedAt = time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
	return place
}

func TestPlaceRow(t *testing.T) {
	row := PlaceRow(samplePlace())

	assert.Equal(t, "Spacca Napoli", row[ColumnName])
	assert.Equal(t, "$$", row[ColumnPrice])
	assert.Equal(t, "Diavola;Tiramisu", row[ColumnThingsToTry])
	assert.Equal(t, "Margherita|Entree|5", row[ColumnItems])
	assert.Equal(t, "3.00", row[ColumnOverall])
	assert.Equal(t, "2024-06-01T18:30:00Z", row[ColumnUpdatedAt])
}

func TestWriteThenReadPlaces(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlaces(&buf, []domain.Place{samplePlace()}))

	places, err := ReadPlaces(&buf)
	require.NoError(t, err)
	require.Len(t, places, 1)

	got := places[0]
	assert.Empty(t, got.ID)
	assert.Equal(t, "Spacca Napoli", got.Name)
	assert.Equal(t, domain.PriceModerate, got.Price)
	assert.Equal(t, []string{"Diavola", "Tiramisu"}, got.ThingsToTry)
	assert.Equal(t, 4, got.Review.Atmosphere)
	require.Len(t, got.Review.Items, 1)
	assert.Equal(t, "Margherita", got.Review.Items[0].Name)
	assert.Equal(t, domain.ItemEntree, got.Review.Items[0].Type)
	assert.Equal(t, 5, got.Review.Items[0].Review)
	assert.NotEmpty(t, got.Review.Items[0].ID)
}

func TestWriteEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlaces(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestReadPlacesFromPathHandWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.csv")
	content := "name,cuisine,price,atmosphere,items\n" +
		"Sweetgreen,Salads,$,3,Harvest Bowl|entree|4;Kale Caesar\n" +
		"Chili's,Tex-Mex,,2,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	places, err := ReadPlacesFromPath(path)
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, domain.PriceBudget, places[0].Price)
	require.Len(t, places[0].Review.Items, 2)
	assert.Equal(t, domain.ItemEntree, places[0].Review.Items[0].Type)
	assert.Equal(t, domain.ItemAppetizer, places[0].Review.Items[1].Type)
	assert.Equal(t, 0, places[0].Review.Items[1].Review)

	assert.Equal(t, "Chili's", places[1].Name)
	assert.Equal(t, domain.PriceUnset, places[1].Price)
	assert.Empty(t, places[1].Review.Items)
}

func TestReadPlacesRejectsOutOfRangeRating(t *testing.T) {
	_, err := ReadPlaces(bytes.NewBufferString("name,service\nX,9\n"))
	assert.Error(t, err)
}

func TestSeparatorsInValuesSurviveRoundTrip(t *testing.T) {
	place := domain.NewPlace("p2")
	place.Name = "Harbour Fish Bar"
	place.ThingsToTry = []string{"Salt; Vinegar", `C:\dessert`}
	place.Review.Items = []domain.ReviewItem{
		{ID: "i1", Name: "Fish|Chips", Review: 4, Type: domain.ItemEntree, Description: "crispy; hot", ImageName: "abc.jpg"},
		{ID: "i2", Name: "Mac; Cheese", Review: 3, Type: domain.ItemAppetizer},
		{ID: "i3", Name: `Back\slash|`, Review: 5, Type: domain.ItemDrink},
	}

	row := PlaceRow(place)
	assert.Equal(t, `Fish\|Chips|Entree|4|crispy\; hot|abc.jpg;Mac\; Cheese|Appetizer|3;Back\\slash\||Drink|5`, row[ColumnItems])

	var buf bytes.Buffer
	require.NoError(t, WritePlaces(&buf, []domain.Place{place}))
	places, err := ReadPlaces(&buf)
	require.NoError(t, err)
	require.Len(t, places, 1)

	got := places[0]
	assert.Equal(t, place.ThingsToTry, got.ThingsToTry)
	require.Len(t, got.Review.Items, 3)
	for i, want := range place.Review.Items {
		item := got.Review.Items[i]
		assert.Equal(t, want.Name, item.Name)
		assert.Equal(t, want.Type, item.Type)
		assert.Equal(t, want.Review, item.Review)
		assert.Equal(t, want.Description, item.Description)
		assert.Equal(t, want.ImageName, item.ImageName)
	}
	assert.InDelta(t, place.Review.Overall(), got.Review.Overall(), 1e-9)
}
