// Package sanitize normalizes user-entered FME Flow server URLs.
//
// A canonical base URL has an http or https scheme, no embedded
// credentials, no trailing slash, and no REST API path suffix. Users
// habitually paste full API URLs (".../fmerest/v3/...") copied from a
// browser; Sanitize reduces those to the service base URL.
package sanitize

import (
	"net/url"
	"strings"
)

// APIPathPrefix is the reserved FME Flow REST API path segment. Any path
// from this segment onward is stripped during sanitization.
const APIPathPrefix = "/fmerest"

// Result holds the outcome of sanitizing a raw URL string.
type Result struct {
	// Cleaned is the canonical base URL. Empty when Valid is false.
	Cleaned string
	// Changed reports whether Cleaned differs from the trimmed input.
	Changed bool
	// Valid reports whether the input could be normalized at all.
	Valid bool
}

// Sanitize normalizes raw into a canonical base URL. It is pure and
// idempotent: sanitizing an already-clean URL returns it unchanged.
func Sanitize(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return Result{}
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return Result{}
	}

	if u.User != nil {
		return Result{}
	}

	if u.Host == "" {
		return Result{}
	}

	path := u.Path
	if idx := strings.Index(strings.ToLower(path), APIPathPrefix); idx >= 0 {
		path = path[:idx]
	}
	path = strings.TrimRight(path, "/")

	cleaned := strings.ToLower(u.Scheme) + "://" + u.Host + path

	return Result{
		Cleaned: cleaned,
		Changed: cleaned != trimmed,
		Valid:   true,
	}
}
