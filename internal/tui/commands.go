package tui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/places/application"
	"github.com/campavao/my-places/internal/places/card"
	"github.com/campavao/my-places/internal/places/domain"
)

const requestTimeout = 10 * time.Second

// Gateway is the remote API as seen by the terminal UI.
type Gateway interface {
	SignUp(ctx context.Context, email, password, name string) (auth.Result, error)
	SignIn(ctx context.Context, email, password string) (auth.Result, error)
	SignOut(ctx context.Context) error
	Verify(ctx context.Context) (auth.User, error)
	SetToken(token string)
	ListPlaces(ctx context.Context) (application.PlaceList, error)
	CreatePlace(ctx context.Context) (domain.Place, error)
	SavePlace(ctx context.Context, place domain.Place) error
	UploadImage(ctx context.Context, filename string, data io.Reader) (string, error)
	ResolveImageURL(ctx context.Context, name string) (string, error)
}

func waitForSession(ch <-chan auth.CurrentUser) tea.Cmd {
	return func() tea.Msg {
		return sessionChangedMsg{current: <-ch}
	}
}

func restoreSessionCmd(gw Gateway, token string) tea.Cmd {
	return func() tea.Msg {
		if token == "" {
			return sessionRestoredMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		gw.SetToken(token)
		user, err := gw.Verify(ctx)
		if err != nil {
			gw.SetToken("")
			return sessionRestoredMsg{}
		}
		return sessionRestoredMsg{user: &user, token: token}
	}
}

func signInCmd(gw Gateway, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := gw.SignIn(ctx, email, password)
		return authResultMsg{result: result, err: err}
	}
}

func signUpCmd(gw Gateway, email, password, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := gw.SignUp(ctx, email, password, name)
		return authResultMsg{result: result, err: err}
	}
}

func signOutCmd(gw Gateway) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return signedOutMsg{err: gw.SignOut(ctx)}
	}
}

func loadPlacesCmd(gw Gateway) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		list, err := gw.ListPlaces(ctx)
		return placesLoadedMsg{list: list, err: err}
	}
}

func createPlaceCmd(gw Gateway) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		place, err := gw.CreatePlace(ctx)
		return placeCreatedMsg{place: place, err: err}
	}
}

func savePlaceCmd(gw Gateway, req card.SaveRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return placeSavedMsg{placeID: req.Place.ID, req: req, err: gw.SavePlace(ctx, req.Place)}
	}
}

func resolveImageCmd(gw Gateway, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		url, err := gw.ResolveImageURL(ctx, name)
		return imageResolvedMsg{name: name, url: url, err: err}
	}
}

func uploadImageCmd(gw Gateway, placeID, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return imageUploadedMsg{placeID: placeID, err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		name, err := gw.UploadImage(ctx, filepath.Base(path), f)
		return imageUploadedMsg{placeID: placeID, name: name, err: err}
	}
}
