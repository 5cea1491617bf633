package domain

import (
	"net/url"
	"strings"
)

const mapSearchBaseURL = "https://www.google.com/maps/search/"

// NormalizeWebsite turns free-text website input into an absolute link by
// prefixing https:// unless it already starts with http:// or https://
// (any case). Empty input yields "".
func NormalizeWebsite(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return trimmed
	}
	return "https://" + trimmed
}

// MapSearchURL builds a map search link for a free-text location.
func MapSearchURL(location string) string {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return ""
	}
	params := url.Values{}
	params.Set("api", "1")
	params.Set("query", trimmed)
	return mapSearchBaseURL + "?" + params.Encode()
}
