package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(previous) })
}

func TestLoadRequiresSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("STORE_URI", "sqlite:///tmp/places.db")
	t.Setenv("AUTH_TOKEN_TTL", "2h")
	t.Setenv("API_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("PUBLIC_BASE_URL", "https://places.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "sqlite:///tmp/places.db", cfg.StoreURI)
	assert.Equal(t, "places", cfg.PlaceCollection)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "https://places.example.com", cfg.PublicBaseURL)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	content := "# local settings\nexport AUTH_JWT_SECRET=\"from-file\"\nHTTP_ADDR=':9090'\nBROKEN LINE\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("from-file"), cfg.JWTSecret)
	assert.Equal(t, ":7070", cfg.Addr)
}
