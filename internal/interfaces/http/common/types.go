package common

import (
	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/places/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by sign-up and sign-in.
type AuthResponse = auth.Result

// VerifyResponse is returned by GET /auth/verify.
type VerifyResponse struct {
	Status string            `json:"status"`
	User   AuthenticatedUser `json:"user"`
}

// PlaceListResponse is returned by GET /places.
type PlaceListResponse struct {
	Places  []domain.Place `json:"places"`
	Skipped []string       `json:"skipped"`
}

// ImageUploadResponse is returned by POST /images.
type ImageUploadResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ImageURLResponse is returned by GET /images/{name}/url.
type ImageURLResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
