package tui

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/places/application"
	"github.com/campavao/my-places/internal/places/card"
	"github.com/campavao/my-places/internal/places/domain"
)

type fakeGateway struct {
	mu        sync.Mutex
	token     string
	verifyErr error
	signInErr error
	saveErr   error
	places    []domain.Place
	saved     []domain.Place
	resolved  []string
	user      auth.User
}

func newFakeGateway(places ...domain.Place) *fakeGateway {
	return &fakeGateway{
		places: places,
		user:   auth.User{ID: "u1", Email: "ada@example.com", Name: "Ada"},
	}
}

func (g *fakeGateway) SignUp(ctx context.Context, email, password, name string) (auth.Result, error) {
	return g.SignIn(ctx, email, password)
}

func (g *fakeGateway) SignIn(_ context.Context, email, _ string) (auth.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.signInErr != nil {
		return auth.Result{}, g.signInErr
	}
	user := g.user
	user.Email = email
	return auth.Result{Token: "tok-" + email, User: user}, nil
}

func (g *fakeGateway) SignOut(context.Context) error {
	g.SetToken("")
	return nil
}

func (g *fakeGateway) Verify(context.Context) (auth.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyErr != nil {
		return auth.User{}, g.verifyErr
	}
	return g.user, nil
}

func (g *fakeGateway) SetToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

func (g *fakeGateway) ListPlaces(context.Context) (application.PlaceList, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	places := make([]domain.Place, len(g.places))
	copy(places, g.places)
	return application.PlaceList{Places: places, Skipped: []string{}}, nil
}

func (g *fakeGateway) CreatePlace(context.Context) (domain.Place, error) {
	return domain.NewPlace("new-1"), nil
}

func (g *fakeGateway) SavePlace(_ context.Context, place domain.Place) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saved = append(g.saved, place)
	return nil
}

func (g *fakeGateway) UploadImage(_ context.Context, filename string, data io.Reader) (string, error) {
	if _, err := io.ReadAll(data); err != nil {
		return "", err
	}
	return "uploaded-" + filename, nil
}

func (g *fakeGateway) ResolveImageURL(_ context.Context, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolved = append(g.resolved, name)
	return "http://images.test/" + name, nil
}

func (g *fakeGateway) savedPlaces() []domain.Place {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Place(nil), g.saved...)
}

// harness runs commands the way the Bubble Tea runtime does, delivering
// their messages back into Update on the test goroutine.
type harness struct {
	t    *testing.T
	app  *App
	msgs chan tea.Msg
}

func newHarness(t *testing.T, gw Gateway, tokenPath string) *harness {
	t.Helper()
	app := New(gw, auth.NewSession(), tokenPath, log.New(io.Discard, "", 0))
	t.Cleanup(app.Close)

	h := &harness{t: t, app: app, msgs: make(chan tea.Msg, 64)}
	h.send(tea.WindowSizeMsg{Width: 100, Height: 80})
	h.exec(app.Init())
	h.settle()
	return h
}

func (h *harness) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				h.exec(c)
			}
			return
		}
		h.msgs <- msg
	}()
}

func (h *harness) send(msg tea.Msg) {
	_, cmd := h.app.Update(msg)
	h.exec(cmd)
}

func (h *harness) settle() {
	for {
		select {
		case msg := <-h.msgs:
			h.send(msg)
		case <-time.After(150 * time.Millisecond):
			return
		}
	}
}

func (h *harness) press(keys ...tea.KeyMsg) {
	for _, k := range keys {
		h.send(k)
		h.settle()
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func signIn(h *harness) {
	h.press(runes("ada@example.com"), keyTab, runes("correct horse"), keyEnter)
}

func samplePlace(id, name string) domain.Place {
	place := domain.NewPlace(id)
	place.Name = name
	place.Review.Atmosphere = 4
	return place
}

func TestStartupWithoutTokenShowsAuth(t *testing.T) {
	h := newHarness(t, newFakeGateway(), "")

	assert.Equal(t, ScreenAuth, h.app.Screen())
	assert.Contains(t, h.app.View(), "My Places")
}

func TestSignInLoadsPlacesAndStoresToken(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	gw := newFakeGateway(samplePlace("p1", "Spacca Napoli"))
	h := newHarness(t, gw, tokenPath)

	signIn(h)

	require.Equal(t, ScreenPlaces, h.app.Screen())
	require.Len(t, h.app.places.cards, 1)
	assert.Contains(t, h.app.View(), "Spacca Napoli")

	raw, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "tok-ada@example.com", string(raw))
}

func TestStoredTokenRestoresSession(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte("saved-token\n"), 0o600))
	gw := newFakeGateway(samplePlace("p1", "Chili's"))

	h := newHarness(t, gw, tokenPath)

	assert.Equal(t, ScreenPlaces, h.app.Screen())
	assert.Equal(t, "saved-token", h.app.current.Token)
}

func TestRejectedStoredTokenSignsOut(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte("stale"), 0o600))
	gw := newFakeGateway()
	gw.verifyErr = &auth.Error{Kind: auth.KindTokenInvalid}

	h := newHarness(t, gw, tokenPath)

	assert.Equal(t, ScreenAuth, h.app.Screen())
}

func TestAuthFailureMessages(t *testing.T) {
	gw := newFakeGateway()
	gw.signInErr = &auth.Error{Kind: auth.KindInvalidCredential}
	h := newHarness(t, gw, "")

	signIn(h)
	assert.Equal(t, ScreenAuth, h.app.Screen())
	assert.Equal(t, auth.KindInvalidCredential.Message(), h.app.auth.message)
	assert.Empty(t, h.app.auth.inputs[authFieldPassword].Value())

	gw.mu.Lock()
	gw.signInErr = errors.New("connection reset")
	gw.mu.Unlock()
	h.press(runes("another try"), keyEnter)
	assert.Equal(t, ScreenAuth, h.app.Screen())
	assert.Empty(t, h.app.auth.message)
}

func TestEditAndSaveReturnsToFullView(t *testing.T) {
	gw := newFakeGateway(samplePlace("p1", "Spacca Napoli"))
	h := newHarness(t, gw, "")
	signIn(h)

	h.press(runes("e"))
	ctrl := h.app.places.cards[0]
	require.Equal(t, card.ViewEdit, ctrl.View())
	assert.True(t, h.app.places.Editing())

	h.press(runes(" Pizza"))
	assert.True(t, ctrl.IsChanged())
	assert.Equal(t, "Save", ctrl.SaveLabel())

	h.press(keySave)
	assert.Equal(t, card.ViewFull, ctrl.View())
	assert.False(t, ctrl.IsChanged())

	saved := gw.savedPlaces()
	require.Len(t, saved, 1)
	assert.Contains(t, saved[0].Name, "Pizza")
	assert.Equal(t, "p1", saved[0].ID)
}

func TestSaveFailureKeepsEditView(t *testing.T) {
	gw := newFakeGateway(samplePlace("p1", "Sweetgreen"))
	gw.saveErr = errors.New("write failed")
	h := newHarness(t, gw, "")
	signIn(h)

	h.press(runes("e"), runes("!"), keySave)

	ctrl := h.app.places.cards[0]
	assert.Equal(t, card.ViewEdit, ctrl.View())
	assert.Contains(t, h.app.places.alert, "write failed")
	assert.Contains(t, ctrl.Draft().Name, "!")
	assert.False(t, ctrl.Saving())

	h.press(keyEnter)
	assert.Empty(t, h.app.places.alert)
	assert.Equal(t, card.ViewEdit, ctrl.View())
}

func TestNewPlaceOpensInEditAndRequiresName(t *testing.T) {
	gw := newFakeGateway()
	h := newHarness(t, gw, "")
	signIn(h)

	h.press(runes("n"))
	require.Len(t, h.app.places.cards, 1)
	ctrl := h.app.places.cards[0]
	assert.Equal(t, card.ViewEdit, ctrl.View())
	assert.False(t, ctrl.CanSave())

	h.press(keySave)
	assert.Empty(t, gw.savedPlaces())
	assert.Equal(t, "A name is required", h.app.places.forms["new-1"].status)

	h.press(runes("Joe's Pizza"), keySave)
	require.Len(t, gw.savedPlaces(), 1)
	assert.Equal(t, card.ViewFull, ctrl.View())
}

func TestImageShowsLoadingUntilResolved(t *testing.T) {
	place := samplePlace("p1", "Spacca Napoli")
	place.ImageName = "pizza.png"
	gw := newFakeGateway(place)
	h := newHarness(t, gw, "")
	signIn(h)

	h.press(keyEnter)
	require.Equal(t, card.ViewFull, h.app.places.cards[0].View())

	h.send(runes("i"))
	assert.True(t, h.app.places.images["pizza.png"].loading)
	assert.Contains(t, h.app.View(), "Loading image…")

	h.settle()
	assert.Equal(t, "http://images.test/pizza.png", h.app.places.images["pizza.png"].url)
	assert.Contains(t, h.app.View(), "http://images.test/pizza.png")

	h.press(runes("i"))
	gw.mu.Lock()
	assert.Len(t, gw.resolved, 1)
	gw.mu.Unlock()
}

func TestSignOutReturnsToAuth(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	gw := newFakeGateway(samplePlace("p1", "Chili's"))
	h := newHarness(t, gw, tokenPath)
	signIn(h)
	require.Equal(t, ScreenPlaces, h.app.Screen())

	h.press(tea.KeyMsg{Type: tea.KeyCtrlO})

	assert.Equal(t, ScreenAuth, h.app.Screen())
	_, err := os.Stat(tokenPath)
	assert.True(t, os.IsNotExist(err))
}
