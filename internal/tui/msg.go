package tui

import (
	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/places/application"
	"github.com/campavao/my-places/internal/places/card"
	"github.com/campavao/my-places/internal/places/domain"
)

// Bubble Tea message types

// sessionChangedMsg carries every current-user transition observed on the session.
type sessionChangedMsg struct {
	current auth.CurrentUser
}

// sessionRestoredMsg is sent once the stored token has been checked at startup.
type sessionRestoredMsg struct {
	user  *auth.User
	token string
}

// authResultMsg is sent when sign-in or sign-up completes.
type authResultMsg struct {
	result auth.Result
	err    error
}

// signedOutMsg is sent when sign-out completes.
type signedOutMsg struct {
	err error
}

// placesLoadedMsg is sent when the user's places are loaded.
type placesLoadedMsg struct {
	list application.PlaceList
	err  error
}

// placeCreatedMsg is sent when a new empty place has been persisted.
type placeCreatedMsg struct {
	place domain.Place
	err   error
}

// placeSavedMsg is sent when a card's save request settles.
type placeSavedMsg struct {
	placeID string
	req     card.SaveRequest
	err     error
}

// imageResolvedMsg is sent when an image name has been resolved to a URL.
type imageResolvedMsg struct {
	name string
	url  string
	err  error
}

// imageUploadedMsg is sent when a local file has been uploaded for a card.
type imageUploadedMsg struct {
	placeID string
	name    string
	err     error
}
