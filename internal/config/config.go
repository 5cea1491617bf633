package config

import (
	"bufio"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration shared across the API server.
type Config struct {
	Addr                 string
	StoreURI             string
	Database             string
	PlaceCollection      string
	UserCollection       string
	CredentialCollection string
	Timeout              time.Duration
	BlobURI              string
	PublicBaseURL        string
	ServerLog            *log.Logger
	JWTSecret            []byte
	JWTIssuer            string
	JWTAudience          string
	TokenTTL             time.Duration
	AllowedOrigins       []string
	MaxUploadBytes       int64
}

// Load reads .env files and environment variables and returns a fully
// populated Config. Values already present in the environment win over .env.
func Load() (Config, error) {
	loadDotEnv(".env")
	loadDotEnv(".env.local")

	secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))
	if secret == "" {
		return Config{}, errors.New("AUTH_JWT_SECRET must be configured")
	}

	cfg := Config{
		Addr:                 envOrDefault("HTTP_ADDR", ":8080"),
		StoreURI:             envOrDefault("STORE_URI", "mongodb://mongo:27017"),
		Database:             envOrDefault("MONGO_DB", "my-places"),
		PlaceCollection:      envOrDefault("PLACE_COLLECTION", "places"),
		UserCollection:       envOrDefault("USER_COLLECTION", "users"),
		CredentialCollection: envOrDefault("CREDENTIAL_COLLECTION", "credentials"),
		Timeout:              parseDuration("STORE_CONNECT_TIMEOUT", 10*time.Second),
		BlobURI:              envOrDefault("BLOB_URI", "mem://"),
		PublicBaseURL:        strings.TrimRight(envOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		ServerLog:            log.New(os.Stdout, "[my-places-api] ", log.LstdFlags|log.Lshortfile),
		JWTSecret:            []byte(secret),
		JWTIssuer:            envOrDefault("AUTH_JWT_ISSUER", "my-places-auth"),
		JWTAudience:          strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		TokenTTL:             parseDuration("AUTH_TOKEN_TTL", 30*24*time.Hour),
		AllowedOrigins:       parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		MaxUploadBytes:       parseInt64("MAX_UPLOAD_BYTES", 10<<20),
	}

	cfg.ServerLog.Printf("loaded config: addr=%q blob=%q publicBaseURL=%q", cfg.Addr, cfg.BlobURI, cfg.PublicBaseURL)

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func parseInt64(key string, fallback int64) int64 {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}

// loadDotEnv sets KEY=VALUE pairs from path for keys not already set.
// A missing file is ignored.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if key == "" {
			continue
		}

		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
