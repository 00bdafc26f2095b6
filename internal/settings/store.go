// Package settings reconciles edited connection values with the persisted
// configuration.
//
// Store is the persistence port: the real implementation writes the server
// URL, repository, and support email through viper and the token through
// the OS keyring. Memory is the in-process fake used by tests and by the
// probe package's tests.
//
// Synchronizer applies commit-on-blur semantics on top of a Store:
// validate, sanitize, persist, and fire invalidation hooks only when a
// value actually changed.
package settings

import (
	"sync"

	"github.com/fmelink-dev/fmelink/internal/auth"
	"github.com/fmelink-dev/fmelink/internal/config"
)

// Store is the persistence port for connection settings.
type Store interface {
	ServerURL() string
	Token() string
	Repository() string
	SupportEmail() string

	SetServerURL(value string) error
	SetToken(value string) error
	SetRepository(value string) error
	SetSupportEmail(value string) error
}

// ConfigStore persists settings through the viper config file, except the
// token which goes to the OS keyring (with file fallback).
type ConfigStore struct {
	cfg *config.Config
}

// NewConfigStore creates a Store backed by the given config.
func NewConfigStore(cfg *config.Config) *ConfigStore {
	return &ConfigStore{cfg: cfg}
}

func (s *ConfigStore) ServerURL() string {
	return s.cfg.ServerURL()
}

func (s *ConfigStore) Token() string {
	_, token := auth.GetToken()
	return token
}

func (s *ConfigStore) Repository() string {
	return s.cfg.Repository()
}

func (s *ConfigStore) SupportEmail() string {
	return s.cfg.SupportEmail()
}

func (s *ConfigStore) SetServerURL(value string) error {
	return s.cfg.Set(config.KeyServerURL, value)
}

func (s *ConfigStore) SetToken(value string) error {
	return auth.StoreToken(value)
}

func (s *ConfigStore) SetRepository(value string) error {
	return s.cfg.Set(config.KeyRepository, value)
}

func (s *ConfigStore) SetSupportEmail(value string) error {
	return s.cfg.Set(config.KeySupportEmail, value)
}

// Memory is an in-process Store for tests.
type Memory struct {
	mu           sync.Mutex
	serverURL    string
	token        string
	repository   string
	supportEmail string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ServerURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.serverURL
}

func (m *Memory) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token
}

func (m *Memory) Repository() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.repository
}

func (m *Memory) SupportEmail() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.supportEmail
}

func (m *Memory) SetServerURL(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.serverURL = value

	return nil
}

func (m *Memory) SetToken(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = value

	return nil
}

func (m *Memory) SetRepository(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.repository = value

	return nil
}

func (m *Memory) SetSupportEmail(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supportEmail = value

	return nil
}
