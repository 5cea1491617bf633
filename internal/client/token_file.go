package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadToken reads a token saved by SaveToken. A missing file yields "".
func LoadToken(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// SaveToken writes token to path with owner-only permissions. An empty token
// removes the file.
func SaveToken(path, token string) error {
	if path == "" {
		return nil
	}
	if token == "" {
		err := os.Remove(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}
