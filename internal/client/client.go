// Package client provides the REST client for an FME Flow service.
//
// The client handles token authentication and exposes the three probes
// the connection tooling needs:
//   - Check: reachability plus credential validation (GET /fmerest/v3/info)
//   - ListRepositories: repository discovery
//   - GetRepository: targeted existence check for a single repository
//
// Failures surface as *apierror.HTTPError carrying the HTTP status, an
// optional application code, and the server message when one could be
// decoded.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fmelink-dev/fmelink/internal/apierror"
	"github.com/fmelink-dev/fmelink/internal/buildinfo"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// apiBase is the FME Flow REST API root path.
	apiBase = "/fmerest/v3"
)

// Client is the FME Flow API client for a single (serverURL, token) pair.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Info describes the probed FME Flow instance.
type Info struct {
	Version string `json:"version"`
	Build   string `json:"build"`
}

// Repository is a single repository entry from the listing endpoint.
type Repository struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

type repositoryList struct {
	Items      []Repository `json:"items"`
	TotalCount int          `json:"totalCount"`
}

// errorBody is the failure payload FME Flow returns alongside non-2xx
// statuses.
type errorBody struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// New creates a client for the given server base URL and token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// WithTimeout sets a custom request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Check probes reachability and credential validity. It is the
// lightweight "basic connection check": a successful response proves the
// URL points at an FME Flow instance and the token is accepted.
func (c *Client) Check(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.get(ctx, apiBase+"/info", &info); err != nil {
		return nil, err
	}

	if info.Version == "" && info.Build == "" {
		// 200 with a body that is not the info document: probably some
		// other service answering on this URL.
		return nil, &apierror.HTTPError{
			Status:  http.StatusOK,
			Code:    apierror.CodeBadResponse,
			Message: "response did not contain FME Flow build information",
		}
	}

	return &info, nil
}

// ListRepositories fetches all repository names visible to the token.
func (c *Client) ListRepositories(ctx context.Context) ([]string, error) {
	var list repositoryList
	if err := c.get(ctx, apiBase+"/repositories?limit=-1", &list); err != nil {
		var httpErr *apierror.HTTPError
		// Tag listing-specific failures so the mapper can keep them
		// non-fatal; auth failures keep their own classification.
		if errors.As(err, &httpErr) && httpErr.Status != http.StatusUnauthorized && httpErr.Status != http.StatusForbidden {
			httpErr.Code = apierror.CodeRepositoryList
		}

		return nil, err
	}

	names := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		names = append(names, item.Name)
	}

	return names, nil
}

// GetRepository fetches a single repository by name. A 404 means the
// repository does not exist.
func (c *Client) GetRepository(ctx context.Context, name string) (*Repository, error) {
	if name == "" {
		return nil, fmt.Errorf("repository name is empty")
	}

	var repo Repository

	path := apiBase + "/repositories/" + neturl.PathEscape(name)
	if err := c.get(ctx, path, &repo); err != nil {
		return nil, err
	}

	return &repo, nil
}

// get performs an authenticated GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "fmetoken token="+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fmelink/"+buildinfo.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &apierror.HTTPError{
			Status:  resp.StatusCode,
			Code:    apierror.CodeBadResponse,
			Message: "could not decode response body",
		}
	}

	return nil
}

// decodeFailure builds an HTTPError from a non-2xx response, preferring
// the server-provided message when the body decodes.
func decodeFailure(resp *http.Response) error {
	httpErr := &apierror.HTTPError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return httpErr
	}

	var decoded errorBody
	if json.Unmarshal(body, &decoded) == nil && decoded.Message != "" {
		httpErr.Message = decoded.Message
	}

	return httpErr
}
