package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrCredentialExists   = errors.New("credential already exists")
)

// Credential is the stored sign-in secret for one email address.
type Credential struct {
	Email     string
	UserID    string
	Name      string
	Hash      []byte
	Salt      []byte
	Params    ScryptParams
	CreatedAt time.Time
}

// CredentialRepository persists credentials keyed by normalized email.
type CredentialRepository interface {
	// Create fails with ErrCredentialExists when the email is taken.
	Create(ctx context.Context, cred Credential) error
	Get(ctx context.Context, email string) (Credential, error)
}
