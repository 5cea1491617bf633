package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campavao/my-places/internal/config"
	"github.com/campavao/my-places/internal/infrastructure/blob"
	"github.com/campavao/my-places/internal/infrastructure/sqlite"
	"github.com/campavao/my-places/internal/infrastructure/store"
	commonhttp "github.com/campavao/my-places/internal/interfaces/http/common"
	"github.com/campavao/my-places/internal/places/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.OpenStore(filepath.Join(t.TempDir(), "places.db"), store.DefaultOptions())
	require.NoError(t, err)

	ts := httptest.NewUnstartedServer(nil)
	blobs, err := blob.Open(context.Background(), "mem://", "http://"+ts.Listener.Addr().String())
	require.NoError(t, err)

	cfg := config.Config{
		ServerLog:      log.New(io.Discard, "", 0),
		JWTSecret:      []byte("test-secret"),
		JWTIssuer:      "my-places-test",
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"http://app.test"},
		MaxUploadBytes: 1 << 10,
	}
	srv, err := New(cfg, st, blobs)
	require.NoError(t, err)

	ts.Config.Handler = srv.Handler()
	ts.Start()
	t.Cleanup(func() {
		ts.Close()
		srv.shutdown(context.Background())
	})
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func signUp(t *testing.T, ts *httptest.Server, email string) commonhttp.AuthResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/signup", "", commonhttp.SignUpRequest{
		Email:    email,
		Password: "hunter22",
		Name:     "Sam",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[commonhttp.AuthResponse](t, resp)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodGet, ts.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestPlaceLifecycle(t *testing.T) {
	ts := newTestServer(t)
	account := signUp(t, ts, "sam@example.com")
	require.NotEmpty(t, account.Token)

	resp := doJSON(t, http.MethodGet, ts.URL+"/places", account.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	empty := decode[commonhttp.PlaceListResponse](t, resp)
	assert.Empty(t, empty.Places)

	resp = doJSON(t, http.MethodPost, ts.URL+"/places", account.Token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	shell := decode[domain.Place](t, resp)
	assert.True(t, shell.IsSentinel())
	assert.NotEmpty(t, shell.ID)

	shell.Name = "Cafe X"
	shell.Website = "cafex.example"
	shell.Review = domain.CompleteReview{
		Atmosphere: 4,
		Service:    4,
		Music:      2,
		Items:      []domain.ReviewItem{{ID: "i1", Name: "Latte", Review: 5, Type: domain.ItemDrink}},
	}
	resp = doJSON(t, http.MethodPut, ts.URL+"/places/"+shell.ID, account.Token, shell)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[domain.Place](t, resp)
	assert.Equal(t, "Cafe X", saved.Name)
	assert.False(t, saved.UpdatedAt.IsZero())

	resp = doJSON(t, http.MethodGet, ts.URL+"/places/"+shell.ID, account.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[domain.Place](t, resp)
	assert.True(t, saved.Equal(got))
	assert.InDelta(t, 3.0, got.Review.Overall(), 1e-9)

	resp = doJSON(t, http.MethodGet, ts.URL+"/places", account.Token, nil)
	list := decode[commonhttp.PlaceListResponse](t, resp)
	require.Len(t, list.Places, 1)
	assert.Equal(t, "Cafe X", list.Places[0].Name)

	resp = doJSON(t, http.MethodGet, ts.URL+"/places/export.csv", account.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	csvBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(csvBody), "Cafe X")
	assert.Contains(t, string(csvBody), "Latte|Drink|5")
}

func TestPlaceValidationAndOwnership(t *testing.T) {
	ts := newTestServer(t)
	owner := signUp(t, ts, "owner@example.com")
	other := signUp(t, ts, "other@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/places", owner.Token, nil)
	place := decode[domain.Place](t, resp)

	resp = doJSON(t, http.MethodGet, ts.URL+"/places/"+place.ID, other.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	place.Name = "Hijack"
	resp = doJSON(t, http.MethodPut, ts.URL+"/places/"+place.ID, other.Token, place)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	place.Review.Service = 9
	resp = doJSON(t, http.MethodPut, ts.URL+"/places/"+place.ID, owner.Token, place)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decode[commonhttp.ErrorResponse](t, resp)
	assert.Equal(t, commonhttp.CodeInvalidPlace, errBody.Code)

	place.Review.Service = 3
	resp = doJSON(t, http.MethodPut, ts.URL+"/places/another-id", owner.Token, place)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthErrors(t *testing.T) {
	ts := newTestServer(t)
	signUp(t, ts, "taken@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/signup", "", commonhttp.SignUpRequest{Email: "taken@example.com", Password: "hunter22"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[commonhttp.ErrorResponse](t, resp)
	assert.Equal(t, "auth/email-already-in-use", body.Code)
	assert.Equal(t, "Email already in use. Sign in instead.", body.Error)

	resp = doJSON(t, http.MethodPost, ts.URL+"/auth/signin", "", commonhttp.SignInRequest{Email: "taken@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/auth/signin", "", commonhttp.SignInRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/auth/signup", "", commonhttp.SignUpRequest{Email: "short@example.com", Password: "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/places", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/places", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignInVerifyAndSignOut(t *testing.T) {
	ts := newTestServer(t)
	signUp(t, ts, "sam@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/signin", "", commonhttp.SignInRequest{Email: "SAM@example.com ", Password: "hunter22"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decode[commonhttp.AuthResponse](t, resp)

	resp = doJSON(t, http.MethodGet, ts.URL+"/auth/verify", session.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	verified := decode[commonhttp.VerifyResponse](t, resp)
	assert.Equal(t, "sam@example.com", verified.User.Email)
	assert.Equal(t, session.User.ID, verified.User.ID)

	resp = doJSON(t, http.MethodPost, ts.URL+"/auth/signout", session.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/auth/verify", session.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func uploadImage(t *testing.T, ts *httptest.Server, token, filename string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/images", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestImageUploadResolveAndStream(t *testing.T) {
	ts := newTestServer(t)
	account := signUp(t, ts, "sam@example.com")

	resp := uploadImage(t, ts, account.Token, "pizza.png", pngHeader)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	uploaded := decode[commonhttp.ImageUploadResponse](t, resp)
	assert.NotEqual(t, "pizza.png", uploaded.Name)
	assert.True(t, strings.HasSuffix(uploaded.Name, ".png"), uploaded.Name)

	resp = doJSON(t, http.MethodGet, ts.URL+"/images/"+uploaded.Name+"/url", account.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resolved := decode[commonhttp.ImageURLResponse](t, resp)
	assert.Equal(t, ts.URL+"/images/"+uploaded.Name, resolved.URL)

	resp = doJSON(t, http.MethodGet, resolved.URL, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	resp = doJSON(t, http.MethodGet, ts.URL+"/images/missing.png/url", account.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = uploadImage(t, ts, account.Token, "huge.png", bytes.Repeat([]byte("x"), 2<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestConcurrentCreatesKeepEveryPlace(t *testing.T) {
	ts := newTestServer(t)
	account := signUp(t, ts, "kim@example.com")

	const creates = 10
	statuses := make(chan int, creates)
	var wg sync.WaitGroup
	for i := 0; i < creates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/places", nil)
			if err != nil {
				statuses <- 0
				return
			}
			req.Header.Set("Authorization", "Bearer "+account.Token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)
	for status := range statuses {
		assert.Equal(t, http.StatusCreated, status)
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/places", account.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[commonhttp.PlaceListResponse](t, resp)
	assert.Len(t, list.Places, creates)
	assert.Empty(t, list.Skipped)
}

func TestSameFileNameFromTwoUsersKeepsBothImages(t *testing.T) {
	ts := newTestServer(t)
	alice := signUp(t, ts, "alice@example.com")
	bob := signUp(t, ts, "bob@example.com")

	resp := uploadImage(t, ts, alice.Token, "IMG_0001.png", pngHeader)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[commonhttp.ImageUploadResponse](t, resp)

	bobImage := append(append([]byte{}, pngHeader...), 'b', 'o', 'b')
	resp = uploadImage(t, ts, bob.Token, "IMG_0001.png", bobImage)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[commonhttp.ImageUploadResponse](t, resp)
	require.NotEqual(t, first.Name, second.Name)

	resp = doJSON(t, http.MethodGet, ts.URL+"/images/"+first.Name, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/places", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://app.test")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://app.test", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "PUT"))

	req.Header.Set("Origin", "http://evil.test")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}
