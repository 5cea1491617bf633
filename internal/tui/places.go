package tui

import (
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/campavao/my-places/internal/places/card"
	"github.com/campavao/my-places/internal/places/domain"
)

type scrollRequest struct {
	placeID string
	target  card.ScrollTarget
}

// PlacesModel is the list of place cards.
type PlacesModel struct {
	gw       Gateway
	logger   *log.Logger
	keys     KeyMap
	formKeys FormKeyMap

	cards    []*card.Controller
	forms    map[string]*EditFormModel
	images   map[string]imageState
	selected int
	loading  bool
	skipped  []string
	alert    string
	info     string

	viewport viewport.Model
	width    int
	scroll   *scrollRequest
	offsets  map[string][2]int
}

// NewPlacesModel creates an empty list that loads on Init.
func NewPlacesModel(gw Gateway, logger *log.Logger, keys KeyMap, formKeys FormKeyMap) *PlacesModel {
	return &PlacesModel{
		gw:       gw,
		logger:   logger,
		keys:     keys,
		formKeys: formKeys,
		forms:    make(map[string]*EditFormModel),
		images:   make(map[string]imageState),
		loading:  true,
		viewport: viewport.New(80, 20),
		offsets:  make(map[string][2]int),
	}
}

// Load starts fetching the user's places.
func (m *PlacesModel) Load() tea.Cmd {
	m.loading = true
	return loadPlacesCmd(m.gw)
}

// SetSize resizes the scrolling area.
func (m *PlacesModel) SetSize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh()
}

// newController wires a card's scroll requests into this list.
func (m *PlacesModel) newController(place domain.Place) *card.Controller {
	ctrl := card.New(place, func(placeID string, target card.ScrollTarget) {
		m.scroll = &scrollRequest{placeID: placeID, target: target}
	})
	if ctrl.View() == card.ViewEdit {
		m.forms[ctrl.ID()] = NewEditFormModel(m.gw, ctrl, m.formKeys)
	}
	return ctrl
}

func (m *PlacesModel) current() *card.Controller {
	if m.selected < 0 || m.selected >= len(m.cards) {
		return nil
	}
	return m.cards[m.selected]
}

func (m *PlacesModel) find(placeID string) *card.Controller {
	for _, ctrl := range m.cards {
		if ctrl.ID() == placeID {
			return ctrl
		}
	}
	return nil
}

// Update handles list messages and keys.
func (m *PlacesModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case placesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.alert = "Could not load places: " + msg.err.Error()
			break
		}
		m.cards = m.cards[:0]
		m.forms = make(map[string]*EditFormModel)
		for _, place := range msg.list.Places {
			m.cards = append(m.cards, m.newController(place))
		}
		m.skipped = msg.list.Skipped
		if m.selected >= len(m.cards) {
			m.selected = len(m.cards) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}

	case placeCreatedMsg:
		if msg.err != nil {
			m.alert = "Could not create a place: " + msg.err.Error()
			break
		}
		m.cards = append(m.cards, m.newController(msg.place))
		m.selected = len(m.cards) - 1
		m.scroll = &scrollRequest{placeID: msg.place.ID, target: card.ScrollForm}

	case placeSavedMsg:
		ctrl := m.find(msg.placeID)
		if ctrl == nil {
			break
		}
		if err := ctrl.CompleteSave(msg.req, msg.err); err != nil {
			m.alert = "Save failed: " + err.Error()
			break
		}
		if ctrl.View() != card.ViewEdit {
			delete(m.forms, ctrl.ID())
			m.info = "Saved " + ctrl.Draft().Name
		}

	case imageResolvedMsg:
		m.images[msg.name] = imageState{url: msg.url, err: msg.err}
		if msg.err != nil {
			m.logger.Printf("resolve image %s: %v", msg.name, msg.err)
		}

	case imageUploadedMsg:
		if form, ok := m.forms[msg.placeID]; ok {
			form.Uploaded(msg.name, msg.err)
		}
		if msg.err == nil {
			delete(m.images, msg.name)
		}

	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	m.refresh()
	return cmd
}

func (m *PlacesModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.alert = ""
		}
		return nil
	}

	ctrl := m.current()
	if ctrl != nil && ctrl.View() == card.ViewEdit {
		form, ok := m.forms[ctrl.ID()]
		if !ok {
			form = NewEditFormModel(m.gw, ctrl, m.formKeys)
			m.forms[ctrl.ID()] = form
		}
		return form.Update(msg)
	}

	m.info = ""
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
			m.scroll = &scrollRequest{placeID: m.cards[m.selected].ID(), target: card.ScrollCard}
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.cards)-1 {
			m.selected++
			m.scroll = &scrollRequest{placeID: m.cards[m.selected].ID(), target: card.ScrollCard}
		}
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
	case key.Matches(msg, m.keys.Toggle):
		if ctrl == nil {
			return nil
		}
		if ctrl.View() == card.ViewMinimized {
			_ = ctrl.Expand()
		} else {
			_ = ctrl.Collapse()
		}
	case key.Matches(msg, m.keys.Edit):
		if ctrl == nil {
			return nil
		}
		if ctrl.View() == card.ViewMinimized {
			_ = ctrl.Expand()
		}
		if err := ctrl.Edit(); err == nil {
			m.forms[ctrl.ID()] = NewEditFormModel(m.gw, ctrl, m.formKeys)
		}
	case key.Matches(msg, m.keys.New):
		return createPlaceCmd(m.gw)
	case key.Matches(msg, m.keys.Image):
		if ctrl == nil {
			return nil
		}
		name := ctrl.Draft().ImageName
		if name == "" {
			return nil
		}
		if state, ok := m.images[name]; ok && (state.loading || state.err == nil) {
			return nil
		}
		m.images[name] = imageState{loading: true}
		return resolveImageCmd(m.gw, name)
	case key.Matches(msg, m.keys.Reload):
		return m.Load()
	}
	return nil
}

// Editing reports whether the selected card owns the keyboard.
func (m *PlacesModel) Editing() bool {
	ctrl := m.current()
	return ctrl != nil && ctrl.View() == card.ViewEdit
}

// refresh re-renders every card into the viewport and applies any pending
// scroll request.
func (m *PlacesModel) refresh() {
	var b strings.Builder
	line := 0
	for i, ctrl := range m.cards {
		rendered, formOffset := renderCard(ctrl, m.forms[ctrl.ID()], m.images, i == m.selected, m.width)
		formLine := line
		if formOffset >= 0 {
			formLine = line + formOffset
		}
		m.offsets[ctrl.ID()] = [2]int{line, formLine}
		b.WriteString(rendered)
		b.WriteString("\n")
		line += strings.Count(rendered, "\n") + 1
	}
	m.viewport.SetContent(b.String())

	if m.scroll == nil {
		return
	}
	if offsets, ok := m.offsets[m.scroll.placeID]; ok {
		target := offsets[0]
		if m.scroll.target == card.ScrollForm {
			target = offsets[1]
		}
		m.viewport.SetYOffset(target)
	}
	m.scroll = nil
}

// View renders the list.
func (m *PlacesModel) View() string {
	if m.alert != "" {
		return AlertStyle.Render(m.alert + "\n\n" + MutedStyle.Render("enter: dismiss"))
	}
	if m.loading && len(m.cards) == 0 {
		return MutedStyle.Render("Loading places…")
	}
	if len(m.cards) == 0 {
		return MutedStyle.Render("No places yet. Press n to add one.")
	}
	return m.viewport.View()
}

// Status is the one-line footer for the list.
func (m *PlacesModel) Status() string {
	parts := []string{}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Render(m.info))
	}
	if len(m.skipped) > 0 {
		parts = append(parts, "some places could not be loaded")
	}
	if m.Editing() {
		parts = append(parts, "tab: next field · ctrl+s: save")
	} else {
		parts = append(parts, "n: new · enter: open · e: edit · r: reload · ctrl+o: sign out · q: quit")
	}
	return strings.Join(parts, " · ")
}
