// Package apierror classifies failures from the FME Flow API into a
// stable taxonomy with per-field attribution.
//
// The client surfaces raw failures as *HTTPError (status, code, message)
// or plain transport errors; Map folds any of them into a Mapped value
// the UI layers can render. Map is total: every input yields exactly one
// outcome and it never panics.
package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/fmelink-dev/fmelink/internal/validate"
)

// Application error codes the server (or client decoding layer) attaches
// to failures that need a more specific mapping than the HTTP status.
const (
	// CodeBadResponse marks a response body that could not be decoded.
	CodeBadResponse = "BAD_RESPONSE"
	// CodeRepositoryList marks a failure specific to repository listing.
	CodeRepositoryList = "REPOSITORY_LIST"
)

// Kind identifies a failure category.
type Kind int

const (
	// KindGeneric is the catch-all for unclassified failures.
	KindGeneric Kind = iota
	// KindUnauthorized covers 401 and 403 responses.
	KindUnauthorized
	// KindNotFound covers 404 responses.
	KindNotFound
	// KindNetwork covers connection-level failures with no response.
	KindNetwork
	// KindTimeout covers 408/504 responses and deadline expiry.
	KindTimeout
	// KindRateLimited covers 429 responses.
	KindRateLimited
	// KindGateway covers 502 responses.
	KindGateway
	// KindServiceUnavailable covers 503 responses.
	KindServiceUnavailable
	// KindServer covers other 5xx responses.
	KindServer
	// KindBadResponse covers undecodable response bodies.
	KindBadResponse
	// KindRepositoryList covers repository-listing failures. Non-fatal:
	// credentials may still be healthy.
	KindRepositoryList
	// KindCancelled marks a superseded or torn-down request. Never
	// user-visible.
	KindCancelled
)

// HTTPError is the raw failure shape surfaced by the API client.
type HTTPError struct {
	// Status is the HTTP status code, or 0 for network-level failures.
	Status int
	// Code is an optional application error code.
	Code string
	// Message is the server-provided or synthesized failure message.
	Message string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fme flow api: status %d: %s", e.Status, e.Message)
	}

	return fmt.Sprintf("fme flow api: %s", e.Message)
}

// Mapped is the classified form of a failure.
type Mapped struct {
	Kind Kind
	// Field is the form field the failure is attributed to, or
	// validate.FieldNone for banner-only failures.
	Field validate.Field
	// Message is a short, user-facing description.
	Message string
}

// Map classifies err. A nil error maps to KindGeneric with an empty
// message; callers are expected to check for nil first.
func Map(err error) Mapped {
	if err == nil {
		return Mapped{Kind: KindGeneric, Field: validate.FieldNone}
	}

	if errors.Is(err, context.Canceled) {
		return Mapped{Kind: KindCancelled, Field: validate.FieldNone, Message: "request cancelled"}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Mapped{Kind: KindTimeout, Field: validate.FieldServerURL, Message: "the server took too long to respond"}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return mapHTTP(httpErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Mapped{Kind: KindTimeout, Field: validate.FieldServerURL, Message: "the server took too long to respond"}
		}

		return Mapped{Kind: KindNetwork, Field: validate.FieldServerURL, Message: "could not reach the server"}
	}

	return Mapped{Kind: KindGeneric, Field: validate.FieldNone, Message: err.Error()}
}

func mapHTTP(e *HTTPError) Mapped {
	// Application codes override status-based mapping.
	switch e.Code {
	case CodeBadResponse:
		return Mapped{
			Kind:    KindBadResponse,
			Field:   validate.FieldServerURL,
			Message: "the server returned an unexpected response; check that the URL points at an FME Flow instance",
		}
	case CodeRepositoryList:
		return Mapped{
			Kind:    KindRepositoryList,
			Field:   validate.FieldNone,
			Message: "could not list repositories; enter a repository name manually",
		}
	}

	switch {
	case e.Status == 0:
		return Mapped{Kind: KindNetwork, Field: validate.FieldServerURL, Message: "could not reach the server"}
	case e.Status == 401 || e.Status == 403:
		return Mapped{Kind: KindUnauthorized, Field: validate.FieldToken, Message: "the token was rejected by the server"}
	case e.Status == 404:
		return Mapped{Kind: KindNotFound, Field: validate.FieldServerURL, Message: "no FME Flow service found at this URL"}
	case e.Status == 408 || e.Status == 504:
		return Mapped{Kind: KindTimeout, Field: validate.FieldServerURL, Message: "the server took too long to respond"}
	case e.Status == 429:
		return Mapped{Kind: KindRateLimited, Field: validate.FieldNone, Message: "too many requests; wait a moment and retry"}
	case e.Status == 502:
		return Mapped{Kind: KindGateway, Field: validate.FieldServerURL, Message: "bad gateway in front of the server"}
	case e.Status == 503:
		return Mapped{Kind: KindServiceUnavailable, Field: validate.FieldServerURL, Message: "the server is temporarily unavailable"}
	case e.Status >= 500 && e.Status <= 599:
		return Mapped{Kind: KindServer, Field: validate.FieldNone, Message: "the server reported an internal error"}
	}

	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", e.Status)
	}

	return Mapped{Kind: KindGeneric, Field: validate.FieldNone, Message: msg}
}

// String returns a short identifier for the Kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindGateway:
		return "gateway"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindServer:
		return "server"
	case KindBadResponse:
		return "bad_response"
	case KindRepositoryList:
		return "repository_list"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
