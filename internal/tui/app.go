package tui

import (
	"log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/client"
)

// Screen represents the current top-level screen.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenAuth
	ScreenPlaces
)

// App is the root model. It owns the single subscription to the session and
// routes the user to the auth screen or the place list.
type App struct {
	gw        Gateway
	session   *auth.Session
	tokenPath string
	logger    *log.Logger
	keys      KeyMap

	screen  Screen
	current auth.CurrentUser
	updates chan auth.CurrentUser
	stop    func()

	auth   *AuthFormModel
	places *PlacesModel

	width  int
	height int
}

// New creates the root model. tokenPath may be empty to disable token
// persistence.
func New(gw Gateway, session *auth.Session, tokenPath string, logger *log.Logger) *App {
	keys := DefaultKeyMap()
	formKeys := DefaultFormKeyMap()

	app := &App{
		gw:        gw,
		session:   session,
		tokenPath: tokenPath,
		logger:    logger,
		keys:      keys,
		updates:   make(chan auth.CurrentUser, 16),
		auth:      NewAuthFormModel(gw, formKeys),
		places:    NewPlacesModel(gw, logger, keys, formKeys),
	}
	app.stop = session.Observe(func(current auth.CurrentUser) {
		select {
		case app.updates <- current:
		default:
			logger.Printf("session update dropped: %s", current.State)
		}
	})
	return app
}

// Close releases the session subscription.
func (a *App) Close() {
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
}

// Screen returns the screen currently shown.
func (a *App) Screen() Screen {
	return a.screen
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	token, err := client.LoadToken(a.tokenPath)
	if err != nil {
		a.logger.Printf("read token: %v", err)
	}
	return tea.Batch(waitForSession(a.updates), restoreSessionCmd(a.gw, token))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.places.SetSize(msg.Width, msg.Height-3)
		return a, nil

	case sessionChangedMsg:
		return a, tea.Batch(a.sessionChanged(msg.current), waitForSession(a.updates))

	case sessionRestoredMsg:
		if msg.user != nil {
			a.session.SignedIn(*msg.user, msg.token)
		} else {
			a.session.SignedOut()
		}
		return a, nil

	case authResultMsg:
		if msg.err != nil {
			kind := auth.KindOf(msg.err)
			if kind == auth.KindUnknown {
				a.logger.Printf("auth failed: %v", msg.err)
			}
			a.auth.Failed(kind.Message())
			return a, nil
		}
		a.gw.SetToken(msg.result.Token)
		if err := client.SaveToken(a.tokenPath, msg.result.Token); err != nil {
			a.logger.Printf("save token: %v", err)
		}
		a.session.SignedIn(msg.result.User, msg.result.Token)
		return a, nil

	case signedOutMsg:
		if msg.err != nil {
			a.logger.Printf("sign out: %v", msg.err)
		}
		if err := client.SaveToken(a.tokenPath, ""); err != nil {
			a.logger.Printf("remove token: %v", err)
		}
		a.session.SignedOut()
		return a, nil

	case placesLoadedMsg:
		if msg.err != nil && client.IsUnauthorized(msg.err) {
			return a, signOutCmd(a.gw)
		}
		return a, a.places.Update(msg)

	case placeCreatedMsg, placeSavedMsg, imageResolvedMsg, imageUploadedMsg, tea.MouseMsg:
		return a, a.places.Update(msg)

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *App) sessionChanged(current auth.CurrentUser) tea.Cmd {
	previous := a.current.State
	a.current = current
	switch current.State {
	case auth.SessionPending:
		a.screen = ScreenLoading
	case auth.SessionSignedOut:
		a.screen = ScreenAuth
		if previous == auth.SessionSignedIn {
			a.auth.Reset()
		}
	case auth.SessionSignedIn:
		a.screen = ScreenPlaces
		if previous != auth.SessionSignedIn {
			a.auth.Reset()
			return a.places.Load()
		}
	}
	return nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch a.screen {
	case ScreenLoading:
		if key.Matches(msg, a.keys.Quit) {
			return tea.Quit
		}
		return nil
	case ScreenAuth:
		if msg.String() == "esc" {
			return tea.Quit
		}
		return a.auth.Update(msg)
	}

	if !a.places.Editing() {
		switch {
		case key.Matches(msg, a.keys.Quit):
			return tea.Quit
		case key.Matches(msg, a.keys.SignOut):
			return signOutCmd(a.gw)
		}
	}
	return a.places.Update(msg)
}

// View implements tea.Model.
func (a *App) View() string {
	var body, status string
	switch a.screen {
	case ScreenLoading:
		body = MutedStyle.Render("Loading…")
	case ScreenAuth:
		body = a.auth.View(a.width)
		status = "ctrl+t: switch sign in / sign up · enter: submit · esc: quit"
	case ScreenPlaces:
		body = a.places.View()
		status = a.places.Status()
	}

	title := TitleStyle.Render("My Places")
	if a.current.User != nil {
		title += MutedStyle.Render("  " + userLabel(*a.current.User))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body, StatusBarStyle.Render(status))
}

func userLabel(user auth.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}
