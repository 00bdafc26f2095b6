// Package validate provides pure predicate checks for connection fields.
//
// Each validator returns a Kind describing the first problem found, or
// KindOK. Validators never touch the network; higher layers translate
// Kinds into user-facing messages and field errors.
package validate

import (
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/fmelink-dev/fmelink/internal/sanitize"
)

// Kind identifies a validation outcome.
type Kind int

const (
	// KindOK means the value passed validation.
	KindOK Kind = iota
	// KindMissingURL means the server URL is empty.
	KindMissingURL
	// KindInvalidURL means the server URL is malformed or has an
	// unsupported scheme or hostname.
	KindInvalidURL
	// KindBadBaseURL means the URL still carries the REST API path
	// prefix and should have been sanitized first.
	KindBadBaseURL
	// KindMissingToken means the token is empty.
	KindMissingToken
	// KindInvalidToken means the token contains unsafe characters or is
	// too short.
	KindInvalidToken
	// KindRepositoryRequired means repositories are known to exist but
	// none is selected.
	KindRepositoryRequired
	// KindRepositoryNotFound means the selected repository is not in the
	// known list.
	KindRepositoryNotFound
	// KindInvalidEmail means the support email is not a valid address.
	KindInvalidEmail
)

// MinTokenLength is the minimum accepted token length. FME Flow tokens
// are long hex strings; anything shorter is a paste error.
const MinTokenLength = 8

// tokenDenylist holds characters that are unsafe in HTTP header values.
const tokenDenylist = "<>\"'`"

// ServerURL validates a server base URL.
func ServerURL(raw string) Kind {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return KindMissingURL
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return KindInvalidURL
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return KindInvalidURL
	}

	if u.User != nil {
		return KindInvalidURL
	}

	if !validHostname(u.Hostname()) {
		return KindInvalidURL
	}

	if strings.Contains(strings.ToLower(u.Path), sanitize.APIPathPrefix) {
		return KindBadBaseURL
	}

	return KindOK
}

// validHostname accepts localhost, IPv4 literals, dotted domain names,
// and single-label FME-branded hosts (e.g. an intranet "fmeflow" alias).
func validHostname(host string) bool {
	if host == "" {
		return false
	}

	lower := strings.ToLower(host)
	if lower == "localhost" {
		return true
	}

	// All-numeric dotted hosts must be well-formed IPv4; "300.1.2.3" is
	// a typo, not a domain name.
	if looksNumeric(lower) {
		return isIPv4(lower)
	}

	if strings.Contains(lower, ".") {
		return true
	}

	return strings.Contains(lower, "fme")
}

// looksNumeric reports whether s consists only of digits and dots.
func looksNumeric(s string) bool {
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}

	return true
}

// isIPv4 reports whether s is a dotted-quad IPv4 address with each octet
// in 0-255.
func isIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}

		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}

	return true
}

// Token validates an API token for use in an Authorization header.
func Token(token string) Kind {
	if token == "" {
		return KindMissingToken
	}

	for _, r := range token {
		if r <= ' ' || r == 0x7f {
			return KindInvalidToken
		}
		if strings.ContainsRune(tokenDenylist, r) {
			return KindInvalidToken
		}
	}

	if len(token) < MinTokenLength {
		return KindInvalidToken
	}

	return KindOK
}

// Repository validates a repository selection against the known list.
//
// A nil list means repositories were never fetched, so membership cannot
// be checked and any value (including none) passes. An empty loaded list
// imposes no membership constraint either: the server reported no
// repositories, so manual entry is permitted.
func Repository(selected string, known []string) Kind {
	if known == nil {
		return KindOK
	}

	if len(known) == 0 {
		return KindOK
	}

	if selected == "" {
		return KindRepositoryRequired
	}

	for _, name := range known {
		if name == selected {
			return KindOK
		}
	}

	return KindRepositoryNotFound
}

// Email validates an optional support email address. Empty passes.
func Email(addr string) Kind {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return KindOK
	}

	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Address != trimmed {
		return KindInvalidEmail
	}

	return KindOK
}

// String returns a short identifier for the Kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindMissingURL:
		return "missing_url"
	case KindInvalidURL:
		return "invalid_url"
	case KindBadBaseURL:
		return "bad_base_url"
	case KindMissingToken:
		return "missing_token"
	case KindInvalidToken:
		return "invalid_token"
	case KindRepositoryRequired:
		return "repository_required"
	case KindRepositoryNotFound:
		return "repository_not_found"
	case KindInvalidEmail:
		return "invalid_email"
	default:
		return "unknown"
	}
}
