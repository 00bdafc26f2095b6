package main

import (
	"github.com/fmelink-dev/fmelink/internal/auth"
	"github.com/fmelink-dev/fmelink/internal/client"
	"github.com/fmelink-dev/fmelink/internal/config"
	clierrors "github.com/fmelink-dev/fmelink/internal/errors"
)

// newAPIClient creates an authenticated API client using the stored token
// and the configured server URL. Returns a CLIError when either is missing.
//
// This consolidates the repeated pattern of:
//
//	source, token := auth.GetToken()
//	cfg := config.Load()
//	c := client.New(cfg.ServerURL(), token).WithTimeout(cfg.RequestTimeout())
func newAPIClient() (auth.TokenSource, *client.Client, error) {
	cfg := config.Load()

	serverURL := cfg.ServerURL()
	if serverURL == "" {
		return "", nil, clierrors.ServerURLRequired()
	}

	source, token := auth.GetToken()
	if token == "" {
		return "", nil, clierrors.NotAuthenticated()
	}

	c := client.New(serverURL, token).WithTimeout(cfg.RequestTimeout())

	return source, c, nil
}
