package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/campavao/my-places/internal/places/card"
	"github.com/campavao/my-places/internal/places/domain"
)

const (
	fieldName = iota
	fieldDescription
	fieldLocation
	fieldWebsite
	fieldCuisine
	fieldPrice
	fieldImage
	fieldThingToTry
	textFieldCount
)

// Rating fields follow the text fields, then the item list.
var ratingFields = map[int]domain.Axis{
	textFieldCount:     domain.AxisAtmosphere,
	textFieldCount + 1: domain.AxisService,
	textFieldCount + 2: domain.AxisMusic,
	textFieldCount + 3: domain.AxisBathroom,
}

const (
	fieldItems     = textFieldCount + 4
	editFieldCount = fieldItems + 1
)

// EditFormModel binds text inputs to a card controller in edit view.
type EditFormModel struct {
	gw           Gateway
	ctrl         *card.Controller
	keys         FormKeyMap
	focusedField int
	inputs       []textinput.Model
	itemCursor   int
	item         *ItemFormModel
	uploading    bool
	status       string
}

// NewEditFormModel creates a form seeded from the controller's draft.
func NewEditFormModel(gw Gateway, ctrl *card.Controller, keys FormKeyMap) *EditFormModel {
	draft := ctrl.Draft()
	inputs := make([]textinput.Model, textFieldCount)

	placeholders := []string{
		fieldName:        "Name (required)",
		fieldDescription: "Description",
		fieldLocation:    "Address or neighborhood",
		fieldWebsite:     "example.com",
		fieldCuisine:     "Cuisine",
		fieldPrice:       "$, $$, $$$, or $$$$",
		fieldImage:       "Path to a local image, ctrl+u to upload",
		fieldThingToTry:  "Something to try, enter to add",
	}
	values := []string{
		fieldName:        draft.Name,
		fieldDescription: draft.Description,
		fieldLocation:    draft.Location,
		fieldWebsite:     draft.Website,
		fieldCuisine:     draft.Cuisine,
		fieldPrice:       draft.Price.String(),
	}
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].CharLimit = 300
		if i < len(values) {
			inputs[i].SetValue(values[i])
		}
	}
	inputs[fieldPrice].CharLimit = 4
	inputs[fieldName].Focus()

	return &EditFormModel{gw: gw, ctrl: ctrl, keys: keys, inputs: inputs}
}

// Editing reports whether an item form currently owns the keyboard.
func (m *EditFormModel) Editing() bool {
	return m.item != nil
}

// Update handles input for the card being edited.
func (m *EditFormModel) Update(msg tea.KeyMsg) tea.Cmd {
	if m.item != nil {
		cmd, done := m.item.Update(msg)
		if done {
			m.item = nil
		}
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.AddItem):
		m.item = NewItemFormModel(m.ctrl.AddItem(), m.keys)
		m.itemCursor = len(m.ctrl.Items()) - 1
		return nil
	case key.Matches(msg, m.keys.Upload):
		return m.upload()
	case msg.String() == "tab" || msg.String() == "down":
		m.focus((m.focusedField + 1) % editFieldCount)
		return nil
	case msg.String() == "shift+tab" || msg.String() == "up":
		m.focus((m.focusedField + editFieldCount - 1) % editFieldCount)
		return nil
	}

	if axis, ok := ratingFields[m.focusedField]; ok {
		draft := m.ctrl.Draft()
		m.ctrl.SetAxis(axis, adjustRating(draft.Review.Axis(axis), msg, m.keys))
		return nil
	}
	if m.focusedField == fieldItems {
		return m.updateItems(msg)
	}
	if m.focusedField == fieldThingToTry && key.Matches(msg, m.keys.Select) {
		m.ctrl.AddThingToTry(m.inputs[fieldThingToTry].Value())
		m.inputs[fieldThingToTry].SetValue("")
		return nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	m.apply(m.focusedField)
	return cmd
}

func (m *EditFormModel) updateItems(msg tea.KeyMsg) tea.Cmd {
	count := len(m.ctrl.Items())
	switch {
	case key.Matches(msg, m.keys.Left):
		if m.itemCursor > 0 {
			m.itemCursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.itemCursor < count-1 {
			m.itemCursor++
		}
	case key.Matches(msg, m.keys.Select):
		editor, err := m.ctrl.EditItem(m.itemCursor)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		m.item = NewItemFormModel(editor, m.keys)
	}
	return nil
}

// apply pushes a text input's value into the draft.
func (m *EditFormModel) apply(field int) {
	value := m.inputs[field].Value()
	switch field {
	case fieldName:
		m.ctrl.SetName(value)
	case fieldDescription:
		m.ctrl.SetDescription(value)
	case fieldLocation:
		m.ctrl.SetLocation(value)
	case fieldWebsite:
		m.ctrl.SetWebsite(value)
	case fieldCuisine:
		m.ctrl.SetCuisine(value)
	case fieldPrice:
		price, err := domain.ParsePriceTier(value)
		if err != nil {
			m.status = "Price must be $ to $$$$"
			return
		}
		if err := m.ctrl.SetPrice(price); err != nil {
			m.status = err.Error()
			return
		}
		m.status = ""
	}
}

func (m *EditFormModel) save() tea.Cmd {
	if !m.ctrl.CanSave() {
		if m.ctrl.Draft().IsSentinel() {
			m.status = "A name is required"
		}
		return nil
	}
	req, err := m.ctrl.BeginSave()
	if err != nil {
		if errors.Is(err, card.ErrNameRequired) {
			m.status = "A name is required"
		} else {
			m.status = err.Error()
		}
		return nil
	}
	m.status = ""
	return savePlaceCmd(m.gw, req)
}

func (m *EditFormModel) upload() tea.Cmd {
	path := strings.TrimSpace(m.inputs[fieldImage].Value())
	if path == "" || m.uploading {
		return nil
	}
	m.uploading = true
	m.status = "Uploading " + path + "…"
	return uploadImageCmd(m.gw, m.ctrl.ID(), path)
}

// Uploaded records the result of an upload started by this form.
func (m *EditFormModel) Uploaded(name string, err error) {
	m.uploading = false
	if err != nil {
		m.status = "Upload failed: " + err.Error()
		return
	}
	m.ctrl.SetImageName(name)
	m.inputs[fieldImage].SetValue("")
	m.status = "Uploaded " + name
}

func (m *EditFormModel) focus(field int) {
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	m.focusedField = field
}

// View renders the form below the card header.
func (m *EditFormModel) View() string {
	draft := m.ctrl.Draft()
	labels := []string{
		fieldName:        "Name *",
		fieldDescription: "Description",
		fieldLocation:    "Location",
		fieldWebsite:     "Website",
		fieldCuisine:     "Cuisine",
		fieldPrice:       "Price",
		fieldImage:       "Image",
		fieldThingToTry:  "Things to try",
	}

	var lines []string
	for i, label := range labels {
		lines = append(lines, renderFormField(label, m.inputs[i], m.focusedField == i))
		switch i {
		case fieldImage:
			if draft.ImageName != "" {
				lines = append(lines, MutedStyle.Render("current: "+draft.ImageName))
			}
		case fieldThingToTry:
			for _, thing := range draft.ThingsToTry {
				lines = append(lines, "  • "+thing)
			}
		}
	}

	for field := textFieldCount; field < fieldItems; field++ {
		axis := ratingFields[field]
		lines = append(lines, renderRatingField(axis.String(), draft.Review.Axis(axis), m.focusedField == field))
	}

	itemsLabel := LabelStyle
	if m.focusedField == fieldItems {
		itemsLabel = FocusedLabelStyle
	}
	lines = append(lines, itemsLabel.Render("Items")+MutedStyle.Render("  ctrl+a: add · ←/→ + enter: edit"))
	for i, item := range draft.Review.Items {
		marker := "  "
		if m.focusedField == fieldItems && i == m.itemCursor {
			marker = "› "
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s", marker, itemName(item), MutedStyle.Render(string(item.Type)), StarStyle.Render(domain.RenderStars(float64(item.Review)))))
	}

	if m.item != nil {
		lines = append(lines, m.item.View())
	}

	lines = append(lines, "", m.renderSaveButton())
	if m.status != "" {
		lines = append(lines, MutedStyle.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func (m *EditFormModel) renderSaveButton() string {
	if m.ctrl.Saving() {
		return DisabledButtonStyle.Render("Saving…")
	}
	label := m.ctrl.SaveLabel() + " (ctrl+s)"
	if !m.ctrl.CanSave() {
		return DisabledButtonStyle.Render(label)
	}
	return ButtonStyle.Render(label)
}

func itemName(item domain.ReviewItem) string {
	if item.Name == "" {
		return MutedStyle.Render("(unnamed)")
	}
	return item.Name
}
