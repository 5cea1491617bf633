package auth

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCredentials struct {
	mu    sync.Mutex
	creds map[string]Credential
	err   error
}

func (m *memoryCredentials) Create(_ context.Context, cred Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.creds[cred.Email]; ok {
		return ErrCredentialExists
	}
	m.creds[cred.Email] = cred
	return nil
}

func (m *memoryCredentials) Get(_ context.Context, email string) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Credential{}, m.err
	}
	cred, ok := m.creds[email]
	if !ok {
		return Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

var testParams = ScryptParams{N: 1 << 10, R: 8, P: 1, KeyLen: 32}

func newTestService(t *testing.T) (*Service, *memoryCredentials) {
	t.Helper()
	tokens, err := NewTokens(TokenConfig{Secret: []byte("test-secret"), Issuer: "my-places-auth", Audience: "my-places", TTL: time.Hour})
	require.NoError(t, err)
	creds := &memoryCredentials{creds: map[string]Credential{}}
	svc := NewService(Config{
		Logger:      log.New(io.Discard, "", 0),
		Credentials: creds,
		Tokens:      tokens,
		Params:      testParams,
	})
	return svc, creds
}

func TestSignUpThenSignIn(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.SignUp(ctx, " Ada@Example.com ", "correct horse", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", signedUp.User.Email)
	assert.NotEmpty(t, signedUp.User.ID)
	assert.NotEmpty(t, signedUp.Token)
	assert.NotEqual(t, []byte("correct horse"), creds.creds["ada@example.com"].Hash)

	signedIn, err := svc.SignIn(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, signedUp.User, signedIn.User)

	user, err := svc.Verify(ctx, signedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, signedUp.User, user)
}

func TestSignUpErrorsAreClassified(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "ada@example.com", "secret2", "")
	assert.Equal(t, KindEmailInUse, KindOf(err))
	assert.Equal(t, "Email already in use. Sign in instead.", KindOf(err).Message())

	_, err = svc.SignUp(ctx, "not-an-email", "secret1", "")
	assert.Equal(t, KindInvalidEmail, KindOf(err))

	_, err = svc.SignUp(ctx, "grace@example.com", "short", "")
	assert.Equal(t, KindWeakPassword, KindOf(err))

	creds.err = errors.New("connection reset")
	_, err = svc.SignUp(ctx, "grace@example.com", "secret1", "")
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.ErrorContains(t, err, "connection reset")
}

func TestSignInErrorsAreClassified(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, KindUserNotFound, KindOf(err))

	_, err = svc.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)
	_, err = svc.SignIn(ctx, "ada@example.com", "secret2")
	assert.Equal(t, KindInvalidCredential, KindOf(err))
}

func TestSignOutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)
	other, err := svc.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, result.Token))

	_, err = svc.Verify(ctx, result.Token)
	assert.Equal(t, KindTokenInvalid, KindOf(err))

	_, err = svc.Verify(ctx, other.Token)
	assert.NoError(t, err, "other sessions stay valid")
}

func TestTokensRejectForeignAndExpired(t *testing.T) {
	tokens, err := NewTokens(TokenConfig{Secret: []byte("a"), Issuer: "my-places-auth", TTL: time.Minute})
	require.NoError(t, err)
	foreign, err := NewTokens(TokenConfig{Secret: []byte("b"), Issuer: "my-places-auth", TTL: time.Minute})
	require.NoError(t, err)
	otherIssuer, err := NewTokens(TokenConfig{Secret: []byte("a"), Issuer: "elsewhere", TTL: time.Minute})
	require.NoError(t, err)

	user := User{ID: "u1", Email: "ada@example.com"}

	signed, _, err := foreign.Issue(user)
	require.NoError(t, err)
	_, err = tokens.Parse(signed)
	assert.Equal(t, KindTokenInvalid, KindOf(err))

	signed, _, err = otherIssuer.Issue(user)
	require.NoError(t, err)
	_, err = tokens.Parse(signed)
	assert.Equal(t, KindTokenInvalid, KindOf(err))

	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, _, err = tokens.Issue(user)
	require.NoError(t, err)
	tokens.now = time.Now
	_, err = tokens.Parse(signed)
	assert.Equal(t, KindTokenInvalid, KindOf(err))

	_, err = NewTokens(TokenConfig{})
	assert.Error(t, err)
}

func TestParseErrorKind(t *testing.T) {
	assert.Equal(t, KindEmailInUse, ParseErrorKind("auth/email-already-in-use"))
	assert.Equal(t, KindUnknown, ParseErrorKind("auth/too-many-requests"))
	assert.Equal(t, "", KindUnknown.Message())
	for kind := range kindCodes {
		assert.Equal(t, kind, ParseErrorKind(kind.Code()))
	}
}

func TestSessionObserversSeeEveryTransition(t *testing.T) {
	session := NewSession()

	var seen []SessionState
	unsubscribe := session.Observe(func(current CurrentUser) {
		seen = append(seen, current.State)
	})

	session.SignedIn(User{ID: "u1"}, "token")
	assert.Equal(t, "u1", session.Current().User.ID)
	session.SignedOut()
	assert.Nil(t, session.Current().User)

	unsubscribe()
	unsubscribe()
	session.SignedIn(User{ID: "u2"}, "token")

	assert.Equal(t, []SessionState{SessionPending, SessionSignedIn, SessionSignedOut}, seen)
}
