package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/campavao/my-places/internal/places/card"
	"github.com/campavao/my-places/internal/places/domain"
)

const (
	itemFieldName = iota
	itemFieldDescription
	itemFieldImage
	itemFieldReview
	itemFieldType
	itemFieldCount
)

// ItemFormModel edits one review item through a card.ItemEditor.
type ItemFormModel struct {
	editor       *card.ItemEditor
	keys         FormKeyMap
	focusedField int
	inputs       []textinput.Model
	errMsg       string
}

// NewItemFormModel creates a form over editor's buffered item.
func NewItemFormModel(editor *card.ItemEditor, keys FormKeyMap) *ItemFormModel {
	item := editor.Item()
	inputs := make([]textinput.Model, 3)

	inputs[itemFieldName] = textinput.New()
	inputs[itemFieldName].Placeholder = "Dish or drink"
	inputs[itemFieldName].CharLimit = 100
	inputs[itemFieldName].SetValue(item.Name)
	inputs[itemFieldName].Focus()

	inputs[itemFieldDescription] = textinput.New()
	inputs[itemFieldDescription].Placeholder = "Notes"
	inputs[itemFieldDescription].CharLimit = 300
	inputs[itemFieldDescription].SetValue(item.Description)

	inputs[itemFieldImage] = textinput.New()
	inputs[itemFieldImage].Placeholder = "Uploaded image name"
	inputs[itemFieldImage].CharLimit = 200
	inputs[itemFieldImage].SetValue(item.ImageName)

	return &ItemFormModel{editor: editor, keys: keys, inputs: inputs}
}

// Update handles input. done is true once the editor was saved or closed.
func (m *ItemFormModel) Update(msg tea.KeyMsg) (cmd tea.Cmd, done bool) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editor.Close()
		return nil, true
	case key.Matches(msg, m.keys.Save):
		if err := m.editor.Save(); err != nil {
			m.errMsg = err.Error()
			return nil, false
		}
		return nil, true
	case msg.String() == "tab" || msg.String() == "down":
		m.focus((m.focusedField + 1) % itemFieldCount)
		return nil, false
	case msg.String() == "shift+tab" || msg.String() == "up":
		m.focus((m.focusedField + itemFieldCount - 1) % itemFieldCount)
		return nil, false
	}

	switch m.focusedField {
	case itemFieldReview:
		m.editor.SetReview(adjustRating(m.editor.Item().Review, msg, m.keys))
		return nil, false
	case itemFieldType:
		if key.Matches(msg, m.keys.CycleType) || key.Matches(msg, m.keys.Right) || key.Matches(msg, m.keys.Select) {
			if err := m.editor.SetType(m.editor.Item().Type.Next()); err != nil {
				m.errMsg = err.Error()
			}
		}
		return nil, false
	}

	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	value := m.inputs[m.focusedField].Value()
	switch m.focusedField {
	case itemFieldName:
		m.editor.SetName(value)
	case itemFieldDescription:
		m.editor.SetDescription(value)
	case itemFieldImage:
		m.editor.SetImageName(strings.TrimSpace(value))
	}
	return cmd, false
}

func (m *ItemFormModel) focus(field int) {
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	m.focusedField = field
}

// View renders the item form.
func (m *ItemFormModel) View() string {
	item := m.editor.Item()
	lines := []string{
		LabelStyle.Render(fmt.Sprintf("Item %d", m.editor.Index()+1)),
		renderFormField("Name", m.inputs[itemFieldName], m.focusedField == itemFieldName),
		renderFormField("Description", m.inputs[itemFieldDescription], m.focusedField == itemFieldDescription),
		renderFormField("Image", m.inputs[itemFieldImage], m.focusedField == itemFieldImage),
		renderRatingField("Review", item.Review, m.focusedField == itemFieldReview),
		renderChoiceField("Type", string(item.Type), m.focusedField == itemFieldType),
	}
	if m.errMsg != "" {
		lines = append(lines, ErrorStyle.Render(m.errMsg))
	}
	lines = append(lines, StatusBarStyle.Render("ctrl+s: save item · esc: discard"))
	return PanelStyle.Render(strings.Join(lines, "\n"))
}

// adjustRating applies arrow or digit keys to a 0-5 rating.
func adjustRating(current int, msg tea.KeyMsg, keys FormKeyMap) int {
	switch {
	case key.Matches(msg, keys.Left):
		return domain.ClampRating(current - 1)
	case key.Matches(msg, keys.Right):
		return domain.ClampRating(current + 1)
	}
	if n, err := strconv.Atoi(msg.String()); err == nil {
		return domain.ClampRating(n)
	}
	return current
}

func renderRatingField(label string, rating int, focused bool) string {
	style := LabelStyle
	if focused {
		style = FocusedLabelStyle
	}
	return style.Render(label) + " " + StarStyle.Render(domain.RenderStars(float64(rating))) + MutedStyle.Render(fmt.Sprintf(" %d/%d", rating, domain.MaxRating))
}

func renderChoiceField(label, value string, focused bool) string {
	style := LabelStyle
	if focused {
		style = FocusedLabelStyle
	}
	return style.Render(label) + " " + value + MutedStyle.Render("  (space to change)")
}
