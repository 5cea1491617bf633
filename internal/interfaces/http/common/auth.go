package common

import "context"

type contextKey string

const (
	authUserContextKey  contextKey = "authUser"
	authTokenContextKey contextKey = "authToken"
)

// AuthenticatedUser represents the JWT-derived principal.
type AuthenticatedUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ContextWithUser stores the authenticated user and the raw bearer token into context.
func ContextWithUser(ctx context.Context, user AuthenticatedUser, token string) context.Context {
	ctx = context.WithValue(ctx, authUserContextKey, user)
	return context.WithValue(ctx, authTokenContextKey, token)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(AuthenticatedUser)
	return user, ok
}

// TokenFromContext extracts the bearer token the request was authenticated with.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(authTokenContextKey).(string)
	return token, ok && token != ""
}
