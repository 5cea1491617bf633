// Package csvio maps places to and from flat CSV rows.
package csvio

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sfomuseum/go-csvdict/v2"

	"github.com/campavao/my-places/internal/places/domain"
)

const (
	listSeparator  = ';'
	fieldSeparator = '|'
	escapeChar     = '\\'
)

// escaper protects the separators inside list entries and item fields.
var escaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `;`, `\;`)

// Column names of a place row.
const (
	ColumnID          = "id"
	ColumnName        = "name"
	ColumnDescription = "description"
	ColumnLocation    = "location"
	ColumnWebsite     = "website"
	ColumnCuisine     = "cuisine"
	ColumnPrice       = "price"
	ColumnImage       = "image"
	ColumnThingsToTry = "things_to_try"
	ColumnAtmosphere  = "atmosphere"
	ColumnService     = "service"
	ColumnMusic       = "music"
	ColumnBathroom    = "bathroom"
	ColumnOverall     = "overall"
	ColumnItems       = "items"
	ColumnUpdatedAt   = "updated_at"
)

// PlaceRow flattens a place. Things to try are joined with ";" and items are
// written as "name|type|rating|description|image" entries joined with ";",
// trailing empty fields dropped. A backslash escapes a backslash, "|" or ";"
// inside values.
func PlaceRow(p domain.Place) map[string]string {
	things := make([]string, 0, len(p.ThingsToTry))
	for _, thing := range p.ThingsToTry {
		things = append(things, escaper.Replace(thing))
	}

	items := make([]string, 0, len(p.Review.Items))
	for _, item := range p.Review.Items {
		fields := []string{
			escaper.Replace(item.Name),
			string(item.Type),
			strconv.Itoa(item.Review),
			escaper.Replace(item.Description),
			escaper.Replace(item.ImageName),
		}
		for len(fields) > 3 && fields[len(fields)-1] == "" {
			fields = fields[:len(fields)-1]
		}
		items = append(items, strings.Join(fields, string(fieldSeparator)))
	}

	updated := ""
	if !p.UpdatedAt.IsZero() {
		updated = p.UpdatedAt.UTC().Format(time.RFC3339)
	}

	return map[string]string{
		ColumnID:          p.ID,
		ColumnName:        p.Name,
		ColumnDescription: p.Description,
		ColumnLocation:    p.Location,
		ColumnWebsite:     p.Website,
		ColumnCuisine:     p.Cuisine,
		ColumnPrice:       p.Price.String(),
		ColumnImage:       p.ImageName,
		ColumnThingsToTry: strings.Join(things, string(listSeparator)),
		ColumnAtmosphere:  strconv.Itoa(p.Review.Atmosphere),
		ColumnService:     strconv.Itoa(p.Review.Service),
		ColumnMusic:       strconv.Itoa(p.Review.Music),
		ColumnBathroom:    strconv.Itoa(p.Review.Bathroom),
		ColumnOverall:     strconv.FormatFloat(p.Review.Overall(), 'f', 2, 64),
		ColumnItems:       strings.Join(items, string(listSeparator)),
		ColumnUpdatedAt:   updated,
	}
}

// PlaceFromRow builds a place from a row written by PlaceRow or by hand.
// Missing columns are left at their zero value; the id column is ignored
// because imported places always get a fresh id.
func PlaceFromRow(row map[string]string) (domain.Place, error) {
	place := domain.NewPlace("")
	place.Name = strings.TrimSpace(row[ColumnName])
	place.Description = strings.TrimSpace(row[ColumnDescription])
	place.Location = strings.TrimSpace(row[ColumnLocation])
	place.Website = strings.TrimSpace(row[ColumnWebsite])
	place.Cuisine = strings.TrimSpace(row[ColumnCuisine])
	place.ImageName = strings.TrimSpace(row[ColumnImage])

	price, err := domain.ParsePriceTier(row[ColumnPrice])
	if err != nil {
		return domain.Place{}, err
	}
	place.Price = price

	for _, thing := range splitList(row[ColumnThingsToTry]) {
		place.ThingsToTry = append(place.ThingsToTry, unescape(thing))
	}

	axes := map[domain.Axis]string{
		domain.AxisAtmosphere: ColumnAtmosphere,
		domain.AxisService:    ColumnService,
		domain.AxisMusic:      ColumnMusic,
		domain.AxisBathroom:   ColumnBathroom,
	}
	for axis, column := range axes {
		value, err := parseRating(row[column])
		if err != nil {
			return domain.Place{}, fmt.Errorf("%s: %w", column, err)
		}
		place.Review.SetAxis(axis, value)
	}

	for _, entry := range splitList(row[ColumnItems]) {
		item, err := parseItem(entry)
		if err != nil {
			return domain.Place{}, err
		}
		place.Review.Items = append(place.Review.Items, item)
	}

	return place, nil
}

// WritePlaces writes one row per place. Nothing is written for an empty list.
func WritePlaces(w io.Writer, places []domain.Place) error {
	if len(places) == 0 {
		return nil
	}

	wr, err := csvdict.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create csv writer: %w", err)
	}
	for _, place := range places {
		if err := wr.WriteRow(PlaceRow(place)); err != nil {
			return fmt.Errorf("write place %s: %w", place.ID, err)
		}
	}
	wr.Flush()
	return nil
}

// ReadPlaces parses every row of r.
func ReadPlaces(r io.Reader) ([]domain.Place, error) {
	csvReader, err := csvdict.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create csv reader: %w", err)
	}

	var places []domain.Place
	line := 1
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		place, err := PlaceFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		places = append(places, place)
	}
	return places, nil
}

// ReadPlacesFromPath parses a CSV file on disk.
func ReadPlacesFromPath(path string) ([]domain.Place, error) {
	csvReader, err := csvdict.NewReaderFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var places []domain.Place
	for row, err := range csvReader.Iterate() {
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		place, err := PlaceFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		places = append(places, place)
	}
	return places, nil
}

func parseItem(entry string) (domain.ReviewItem, error) {
	parts := splitEscaped(entry, fieldSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(unescape(parts[i]))
	}
	item := domain.NewReviewItem()
	item.Name = parts[0]

	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		itemType, err := domain.NewItemType(parts[1])
		if err != nil {
			return domain.ReviewItem{}, err
		}
		item.Type = itemType
	}
	if len(parts) > 2 {
		rating, err := parseRating(parts[2])
		if err != nil {
			return domain.ReviewItem{}, fmt.Errorf("item %q: %w", item.Name, err)
		}
		item.Review = rating
	}
	if len(parts) > 3 {
		item.Description = parts[3]
	}
	if len(parts) > 4 {
		item.ImageName = parts[4]
	}
	return item, nil
}

func parseRating(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return domain.NewRating(value)
}

// splitList splits on unescaped ";" and drops blank entries. Entries keep
// their escapes.
func splitList(raw string) []string {
	var values []string
	for _, part := range splitEscaped(raw, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func splitEscaped(raw string, sep byte) []string {
	var parts []string
	var current strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == escapeChar && i+1 < len(raw):
			current.WriteByte(c)
			current.WriteByte(raw[i+1])
			i++
		case c == sep:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(parts, current.String())
}

func unescape(value string) string {
	if strings.IndexByte(value, escapeChar) < 0 {
		return value
	}
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		if value[i] == escapeChar && i+1 < len(value) {
			i++
		}
		b.WriteByte(value[i])
	}
	return b.String()
}
