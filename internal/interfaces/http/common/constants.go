package common

import "time"

const (
	// MaxJSONRequestBody limits JSON request bodies for place and auth endpoints.
	MaxJSONRequestBody = 1 << 20
	// RequestTimeout bounds every store and blob call made by a handler.
	RequestTimeout = 5 * time.Second
)

// Error codes returned alongside auth error codes in ErrorResponse.Code.
const (
	CodeInvalidRequest  = "invalid-request"
	CodeInvalidPlace    = "invalid-place"
	CodeNotFound        = "not-found"
	CodeUnauthorized    = "unauthorized"
	CodePayloadTooLarge = "payload-too-large"
	CodeInternal        = "internal"
)
