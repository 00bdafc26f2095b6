package settings

import (
	"strings"
	"sync"

	"github.com/fmelink-dev/fmelink/internal/sanitize"
	"github.com/fmelink-dev/fmelink/internal/validate"
)

// Hooks carry the downstream invalidation callbacks fired by a
// Synchronizer. Either may be nil.
type Hooks struct {
	// OnCredentialsChanged fires after the server URL or token is
	// persisted with a value different from the previous snapshot.
	// Repository-dependent state (the cached repository list, any
	// repository field error, an in-flight repository load) must be
	// invalidated by the receiver.
	OnCredentialsChanged func()

	// OnRepositoryChanged fires exactly once per effective repository
	// switch, carrying the newly selected name. Downstream stores use it
	// to drop repository-scoped state.
	OnRepositoryChanged func(newRepository string)
}

// Commit is the outcome of a single commit operation.
type Commit struct {
	// Kind is the validation outcome; KindOK means the value was
	// persisted.
	Kind validate.Kind
	// Value is the value as persisted (after sanitization, for URLs).
	Value string
	// Changed reports whether the persisted value differs from the
	// previous snapshot.
	Changed bool
}

// Synchronizer applies validated edits to a Store with edge-triggered
// change detection. Values that fail validation are never persisted.
type Synchronizer struct {
	mu    sync.Mutex
	store Store
	hooks Hooks

	prevURL   string
	prevToken string
	prevRepo  string
}

// NewSynchronizer creates a Synchronizer whose previous-value snapshot is
// seeded from the store's current contents.
func NewSynchronizer(store Store, hooks Hooks) *Synchronizer {
	return &Synchronizer{
		store:     store,
		hooks:     hooks,
		prevURL:   store.ServerURL(),
		prevToken: store.Token(),
		prevRepo:  store.Repository(),
	}
}

// CommitServerURL sanitizes and validates raw, persists the cleaned value,
// and fires the credentials-changed hook when the persisted value differs
// from the previous one.
func (s *Synchronizer) CommitServerURL(raw string) (Commit, error) {
	res := sanitize.Sanitize(raw)
	if !res.Valid {
		if strings.TrimSpace(raw) == "" {
			return Commit{Kind: validate.KindMissingURL}, nil
		}

		return Commit{Kind: validate.KindInvalidURL}, nil
	}

	if kind := validate.ServerURL(res.Cleaned); kind != validate.KindOK {
		return Commit{Kind: kind, Value: res.Cleaned}, nil
	}

	s.mu.Lock()
	changed := res.Cleaned != s.prevURL
	s.mu.Unlock()

	if err := s.store.SetServerURL(res.Cleaned); err != nil {
		return Commit{}, err
	}

	s.mu.Lock()
	s.prevURL = res.Cleaned
	s.mu.Unlock()

	if changed && s.hooks.OnCredentialsChanged != nil {
		s.hooks.OnCredentialsChanged()
	}

	return Commit{Kind: validate.KindOK, Value: res.Cleaned, Changed: changed}, nil
}

// CommitToken validates and persists an API token, firing the
// credentials-changed hook on an effective change.
func (s *Synchronizer) CommitToken(token string) (Commit, error) {
	if kind := validate.Token(token); kind != validate.KindOK {
		return Commit{Kind: kind}, nil
	}

	s.mu.Lock()
	changed := token != s.prevToken
	s.mu.Unlock()

	if err := s.store.SetToken(token); err != nil {
		return Commit{}, err
	}

	s.mu.Lock()
	s.prevToken = token
	s.mu.Unlock()

	if changed && s.hooks.OnCredentialsChanged != nil {
		s.hooks.OnCredentialsChanged()
	}

	return Commit{Kind: validate.KindOK, Value: token, Changed: changed}, nil
}

// CommitRepository validates the selection against the known list (nil
// skips the membership check) and persists it. A switch to a different
// repository fires the repository-changed hook exactly once with the new
// name.
func (s *Synchronizer) CommitRepository(name string, known []string) (Commit, error) {
	if kind := validate.Repository(name, known); kind != validate.KindOK {
		return Commit{Kind: kind, Value: name}, nil
	}

	s.mu.Lock()
	changed := name != s.prevRepo
	s.mu.Unlock()

	if err := s.store.SetRepository(name); err != nil {
		return Commit{}, err
	}

	s.mu.Lock()
	s.prevRepo = name
	s.mu.Unlock()

	if changed && s.hooks.OnRepositoryChanged != nil {
		s.hooks.OnRepositoryChanged(name)
	}

	return Commit{Kind: validate.KindOK, Value: name, Changed: changed}, nil
}

// CommitSupportEmail validates and persists the optional support address.
func (s *Synchronizer) CommitSupportEmail(addr string) (Commit, error) {
	trimmed := strings.TrimSpace(addr)

	if kind := validate.Email(trimmed); kind != validate.KindOK {
		return Commit{Kind: kind, Value: trimmed}, nil
	}

	if err := s.store.SetSupportEmail(trimmed); err != nil {
		return Commit{}, err
	}

	return Commit{Kind: validate.KindOK, Value: trimmed}, nil
}
