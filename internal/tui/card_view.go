package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/campavao/my-places/internal/places/card"
	"github.com/campavao/my-places/internal/places/domain"
)

// imageState tracks the resolution of one image name.
type imageState struct {
	loading bool
	url     string
	err     error
}

// renderCard draws a card in its current view. formOffset is the line of the
// edit form inside the rendered card, or -1.
func renderCard(ctrl *card.Controller, form *EditFormModel, images map[string]imageState, selected bool, width int) (string, int) {
	draft := ctrl.Draft()
	header := renderCardHeader(ctrl, draft)

	var body []string
	formOffset := -1
	switch ctrl.View() {
	case card.ViewFull:
		body = renderCardDetails(ctrl, draft, images)
	case card.ViewEdit:
		formOffset = strings.Count(header, "\n") + 2
		if form != nil {
			body = []string{form.View()}
		}
	}

	content := header
	if len(body) > 0 {
		content += "\n\n" + strings.Join(body, "\n")
	}

	style := CardStyle
	if selected {
		style = SelectedCardStyle
	}
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(content), formOffset
}

func renderCardHeader(ctrl *card.Controller, draft domain.Place) string {
	name := draft.Name
	if draft.IsSentinel() {
		name = "New place"
	}

	meta := []string{}
	if draft.Cuisine != "" {
		meta = append(meta, draft.Cuisine)
	}
	if draft.Price != domain.PriceUnset {
		meta = append(meta, draft.Price.String())
	}

	overall := ctrl.Overall()
	line := CardTitleStyle.Render(name) + "  " + StarStyle.Render(domain.RenderStars(overall)) + MutedStyle.Render(fmt.Sprintf(" %.1f", overall))
	if len(meta) > 0 {
		line += "\n" + MutedStyle.Render(strings.Join(meta, " · "))
	}
	return line
}

func renderCardDetails(ctrl *card.Controller, draft domain.Place, images map[string]imageState) []string {
	var lines []string
	if draft.Description != "" {
		lines = append(lines, draft.Description)
	}
	if draft.Location != "" {
		lines = append(lines, LabelStyle.Render("Location ")+draft.Location)
		lines = append(lines, "  "+LinkStyle.Render(ctrl.MapURL()))
	}
	if website := ctrl.WebsiteURL(); website != "" {
		lines = append(lines, LabelStyle.Render("Website ")+LinkStyle.Render(website))
	}
	if draft.ImageName != "" {
		lines = append(lines, LabelStyle.Render("Image ")+renderImage(draft.ImageName, images))
	}
	if len(draft.ThingsToTry) > 0 {
		lines = append(lines, LabelStyle.Render("Things to try"))
		for _, thing := range draft.ThingsToTry {
			lines = append(lines, "  • "+thing)
		}
	}

	for _, axis := range domain.Axes {
		value := draft.Review.Axis(axis)
		lines = append(lines, fmt.Sprintf("%-11s %s", axis.String(), StarStyle.Render(domain.RenderStars(float64(value)))))
	}
	for _, item := range draft.Review.Items {
		lines = append(lines, fmt.Sprintf("  %s %s %s", itemName(item), MutedStyle.Render(string(item.Type)), StarStyle.Render(domain.RenderStars(float64(item.Review)))))
		if item.Description != "" {
			lines = append(lines, "    "+MutedStyle.Render(item.Description))
		}
	}

	snapshot := ctrl.Snapshot()
	if !snapshot.UpdatedAt.IsZero() {
		lines = append(lines, MutedStyle.Render("updated "+humanize.Time(snapshot.UpdatedAt)))
	}
	lines = append(lines, StatusBarStyle.Render("e: edit · enter: collapse · i: load image"))
	return lines
}

func renderImage(name string, images map[string]imageState) string {
	state, ok := images[name]
	switch {
	case !ok:
		return MutedStyle.Render(name + " (press i to load)")
	case state.loading:
		return MutedStyle.Render("Loading image…")
	case state.err != nil:
		return ErrorStyle.Render("Image unavailable")
	}
	return LinkStyle.Render(state.url)
}
