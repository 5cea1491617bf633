package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	// MinPasswordLength is the shortest password sign-up accepts.
	MinPasswordLength = 6
	saltLength        = 16
)

// ScryptParams are the cost parameters a hash was derived with.
type ScryptParams struct {
	N      int
	R      int
	P      int
	KeyLen int
}

// DefaultScryptParams are used for new credentials.
var DefaultScryptParams = ScryptParams{N: 1 << 15, R: 8, P: 1, KeyLen: 32}

func hashPassword(password string, params ScryptParams) (hash, salt []byte, err error) {
	salt = make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err = deriveKey(password, salt, params)
	if err != nil {
		return nil, nil, err
	}
	return hash, salt, nil
}

func deriveKey(password string, salt []byte, params ScryptParams) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func verifyPassword(password string, cred Credential) (bool, error) {
	key, err := deriveKey(password, cred.Salt, cred.Params)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, cred.Hash) == 1, nil
}
