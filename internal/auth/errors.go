package auth

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of auth failures the client can react to.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindEmailInUse
	KindInvalidCredential
	KindUserNotFound
	KindWeakPassword
	KindInvalidEmail
	KindTokenInvalid
)

var kindCodes = map[ErrorKind]string{
	KindUnknown:           "auth/unknown",
	KindEmailInUse:        "auth/email-already-in-use",
	KindInvalidCredential: "auth/invalid-credential",
	KindUserNotFound:      "auth/user-not-found",
	KindWeakPassword:      "auth/weak-password",
	KindInvalidEmail:      "auth/invalid-email",
	KindTokenInvalid:      "auth/invalid-token",
}

// Code is the wire representation of the kind.
func (k ErrorKind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindUnknown]
}

func (k ErrorKind) String() string {
	return k.Code()
}

// Message is the user-facing text for a kind. Unknown kinds have none.
func (k ErrorKind) Message() string {
	switch k {
	case KindEmailInUse:
		return "Email already in use. Sign in instead."
	case KindInvalidCredential:
		return "Incorrect email or password."
	case KindUserNotFound:
		return "No account exists for that email. Sign up instead."
	case KindWeakPassword:
		return fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength)
	case KindInvalidEmail:
		return "Enter a valid email address."
	case KindTokenInvalid:
		return "Your session has expired. Sign in again."
	}
	return ""
}

// ParseErrorKind maps a wire code back to a kind. Codes this build does not
// know about become KindUnknown.
func ParseErrorKind(code string) ErrorKind {
	for kind, known := range kindCodes {
		if known == code {
			return kind
		}
	}
	return KindUnknown
}

// Error is returned by every auth operation that fails for a known reason.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind.Code(), e.Err)
	}
	return e.Kind.Code()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown when err carries none.
func KindOf(err error) ErrorKind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return KindUnknown
}
