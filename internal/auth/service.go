// Package auth implements email and password accounts with HS256 access
// tokens, and the client-side current-user session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// User is the identity carried by a valid token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Result is returned by SignUp and SignIn.
type Result struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Config wires a Service.
type Config struct {
	Logger      *log.Logger
	Credentials CredentialRepository
	Tokens      *Tokens
	// Params defaults to DefaultScryptParams.
	Params ScryptParams
}

// Service signs users up and in and keeps the set of revoked tokens.
type Service struct {
	logger      *log.Logger
	credentials CredentialRepository
	tokens      *Tokens
	params      ScryptParams
	revoked     *cache.Cache
}

func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	params := cfg.Params
	if params.N == 0 {
		params = DefaultScryptParams
	}
	return &Service{
		logger:      logger,
		credentials: cfg.Credentials,
		tokens:      cfg.Tokens,
		params:      params,
		revoked:     cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

// SignUp creates a credential for a new email and returns a token for it.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (Result, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Result{}, err
	}
	if len(password) < MinPasswordLength {
		return Result{}, newError(KindWeakPassword, nil)
	}

	hash, salt, err := hashPassword(password, s.params)
	if err != nil {
		return Result{}, newError(KindUnknown, err)
	}
	cred := Credential{
		Email:     email,
		UserID:    uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Hash:      hash,
		Salt:      salt,
		Params:    s.params,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		if errors.Is(err, ErrCredentialExists) {
			return Result{}, newError(KindEmailInUse, nil)
		}
		return Result{}, newError(KindUnknown, fmt.Errorf("store credential: %w", err))
	}
	s.logger.Printf("signed up user %s", cred.UserID)
	return s.issue(User{ID: cred.UserID, Email: cred.Email, Name: cred.Name})
}

// SignIn checks a password against the stored credential.
func (s *Service) SignIn(ctx context.Context, email, password string) (Result, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Result{}, err
	}
	cred, err := s.credentials.Get(ctx, email)
	if errors.Is(err, ErrCredentialNotFound) {
		return Result{}, newError(KindUserNotFound, nil)
	}
	if err != nil {
		return Result{}, newError(KindUnknown, fmt.Errorf("load credential: %w", err))
	}
	ok, err := verifyPassword(password, cred)
	if err != nil {
		return Result{}, newError(KindUnknown, err)
	}
	if !ok {
		return Result{}, newError(KindInvalidCredential, nil)
	}
	return s.issue(User{ID: cred.UserID, Email: cred.Email, Name: cred.Name})
}

// SignOut revokes a token until it would have expired anyway.
func (s *Service) SignOut(_ context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	ttl := cache.NoExpiration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time) + time.Minute
	}
	s.revoked.Set(claims.ID, struct{}{}, ttl)
	return nil
}

// Verify returns the user of a valid, unrevoked token.
func (s *Service) Verify(_ context.Context, token string) (User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return User{}, err
	}
	if _, revoked := s.revoked.Get(claims.ID); revoked {
		return User{}, newError(KindTokenInvalid, errors.New("token revoked"))
	}
	return User{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

func (s *Service) issue(user User) (Result, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return Result{}, newError(KindUnknown, err)
	}
	return Result{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", newError(KindInvalidEmail, err)
	}
	return trimmed, nil
}
