// Package client talks to the my-places HTTP API on behalf of the terminal UI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/interfaces/http/common"
	"github.com/campavao/my-places/internal/places/application"
	"github.com/campavao/my-places/internal/places/domain"
)

const defaultURLCacheSize = 256

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d %s", e.Status, e.Code)
}

// Unwrap exposes auth failures as *auth.Error and missing documents as
// application.ErrNotFound.
func (e *APIError) Unwrap() error {
	switch {
	case strings.HasPrefix(e.Code, "auth/"):
		return &auth.Error{Kind: auth.ParseErrorKind(e.Code)}
	case e.Status == http.StatusNotFound:
		return application.ErrNotFound
	}
	return nil
}

// Client is safe for concurrent use; bubbletea commands call it from their
// own goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	urls       *lru.Cache[string, string]

	mu    sync.RWMutex
	token string
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	cache, err := lru.New[string, string](defaultURLCacheSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		urls:       cache,
	}, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SignUp(ctx context.Context, email, password, name string) (auth.Result, error) {
	var result auth.Result
	err := c.doJSON(ctx, http.MethodPost, "/auth/signup", common.SignUpRequest{Email: email, Password: password, Name: name}, &result)
	if err != nil {
		return auth.Result{}, err
	}
	c.SetToken(result.Token)
	return result, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Result, error) {
	var result auth.Result
	err := c.doJSON(ctx, http.MethodPost, "/auth/signin", common.SignInRequest{Email: email, Password: password}, &result)
	if err != nil {
		return auth.Result{}, err
	}
	c.SetToken(result.Token)
	return result, nil
}

// SignOut revokes the current token. The local token is dropped even when
// the request fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/auth/signout", nil, nil)
	c.SetToken("")
	c.urls.Purge()
	return err
}

// Verify returns the user of the current token.
func (c *Client) Verify(ctx context.Context) (auth.User, error) {
	var resp common.VerifyResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/verify", nil, &resp); err != nil {
		return auth.User{}, err
	}
	return auth.User{ID: resp.User.ID, Email: resp.User.Email, Name: resp.User.Name}, nil
}

func (c *Client) ListPlaces(ctx context.Context) (application.PlaceList, error) {
	var resp common.PlaceListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/places", nil, &resp); err != nil {
		return application.PlaceList{}, err
	}
	return application.PlaceList{Places: resp.Places, Skipped: resp.Skipped}, nil
}

func (c *Client) CreatePlace(ctx context.Context) (domain.Place, error) {
	var place domain.Place
	if err := c.doJSON(ctx, http.MethodPost, "/places", nil, &place); err != nil {
		return domain.Place{}, err
	}
	return place, nil
}

func (c *Client) GetPlace(ctx context.Context, id string) (domain.Place, error) {
	var place domain.Place
	if err := c.doJSON(ctx, http.MethodGet, "/places/"+url.PathEscape(id), nil, &place); err != nil {
		return domain.Place{}, err
	}
	return place, nil
}

// SavePlace fully overwrites the place. It satisfies card.Saver.
func (c *Client) SavePlace(ctx context.Context, place domain.Place) error {
	return c.doJSON(ctx, http.MethodPut, "/places/"+url.PathEscape(place.ID), place, nil)
}

// ExportCSV streams the CSV export of the user's places into w.
func (c *Client) ExportCSV(ctx context.Context, w io.Writer) error {
	resp, err := c.do(ctx, http.MethodGet, "/places/export.csv", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(w, resp.Body)
	return err
}

// UploadImage stores data under filename and returns the stored name.
func (c *Client) UploadImage(ctx context.Context, filename string, data io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, "/images", &body, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var uploaded common.ImageUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	c.urls.Remove(uploaded.Name)
	return uploaded.Name, nil
}

// ResolveImageURL returns a retrievable URL for an image. Resolved URLs are
// cached for the life of the client.
func (c *Client) ResolveImageURL(ctx context.Context, name string) (string, error) {
	if cached, ok := c.urls.Get(name); ok {
		return cached, nil
	}
	var resp common.ImageURLResponse
	if err := c.doJSON(ctx, http.MethodGet, "/images/"+url.PathEscape(name)+"/url", nil, &resp); err != nil {
		return "", err
	}
	c.urls.Add(name, resp.URL)
	return resp.URL, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// do sends the request and turns non-2xx responses into *APIError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode}
	var payload common.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Error
	}
	return nil, apiErr
}

// IsUnauthorized reports whether err means the token is missing or no longer valid.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized && apiErr.Code != auth.KindInvalidCredential.Code()
}
