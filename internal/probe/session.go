// Package probe runs the multi-phase connection test against an FME Flow
// instance and owns the resulting state: overall test status, per-phase
// check steps, per-field errors, and the cached repository list.
//
// A Session serializes all of this behind one mutex and uses a generation
// counter per cancellation domain (test runs and repository loads) so that
// a superseded run can never write state after a newer run has started.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fmelink-dev/fmelink/internal/apierror"
	"github.com/fmelink-dev/fmelink/internal/client"
	"github.com/fmelink-dev/fmelink/internal/observability"
	"github.com/fmelink-dev/fmelink/internal/sanitize"
	"github.com/fmelink-dev/fmelink/internal/settings"
	"github.com/fmelink-dev/fmelink/internal/validate"
)

// ErrClosed is returned when an operation is invoked on a closed Session.
var ErrClosed = fmt.Errorf("probe session is closed")

// Client is the subset of the FME Flow API the probe needs. *client.Client
// satisfies it; tests substitute fakes.
type Client interface {
	Check(ctx context.Context) (*client.Info, error)
	ListRepositories(ctx context.Context) ([]string, error)
	GetRepository(ctx context.Context, name string) (*client.Repository, error)
}

// ClientFactory builds a Client for a (serverURL, token) pair. Each test
// run constructs a fresh client so edited credentials take effect
// immediately.
type ClientFactory func(serverURL, token string) Client

// Status is the overall state of the connection test.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusSuccess
	StatusError
)

// Severity classifies the banner message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

// TestState is the consolidated outcome of the current or most recent
// test run.
type TestState struct {
	Status   Status
	Testing  bool
	Message  string
	Severity Severity
}

// StepStatus is the state of a single check phase.
type StepStatus int

const (
	StepIdle StepStatus = iota
	StepPending
	StepOK
	StepFail
	StepSkip
)

// Steps tracks per-phase progress of a test run. Version carries the
// server version reported by a successful basic check.
type Steps struct {
	ServerURL  StepStatus
	Token      StepStatus
	Repository StepStatus
	Version    string
}

// Report is a point-in-time snapshot of session state, safe for the
// caller to keep.
type Report struct {
	State       TestState
	Steps       Steps
	FieldErrors map[validate.Field]string
	// AvailableRepos is nil when repositories were never loaded and an
	// empty slice when the server reported none.
	AvailableRepos []string
	// Hint is a non-blocking advisory (repository listing unavailable),
	// never a field error.
	Hint string
}

// TestOptions configure a single test run.
type TestOptions struct {
	// Silent suppresses the banner message. Steps, field errors, and the
	// repository cache still update.
	Silent bool
}

// LoadOptions configure a repository load.
type LoadOptions struct {
	// ShowLoading is a rendering hint recorded for the caller; the load
	// itself behaves identically either way.
	ShowLoading bool
}

// Session owns the connection-test state machine.
type Session struct {
	mu        sync.Mutex
	store     settings.Store
	newClient ClientFactory
	logger    *slog.Logger

	state       TestState
	steps       Steps
	fieldErrors map[validate.Field]string
	repos       []string
	repoHint    string

	testGen    uint64
	testCancel context.CancelFunc
	loadGen    uint64
	loadCancel context.CancelFunc
	closed     bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger used for probe events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClientFactory overrides how API clients are constructed.
func WithClientFactory(factory ClientFactory) Option {
	return func(s *Session) {
		s.newClient = factory
	}
}

// NewSession creates a Session reading connection values from store.
func NewSession(store settings.Store, opts ...Option) *Session {
	s := &Session{
		store: store,
		newClient: func(serverURL, token string) Client {
			return client.New(serverURL, token)
		},
		fieldErrors: make(map[validate.Field]string),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Report returns a snapshot of the current session state.
func (s *Session) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reportLocked()
}

func (s *Session) reportLocked() Report {
	errs := make(map[validate.Field]string, len(s.fieldErrors))
	for field, msg := range s.fieldErrors {
		errs[field] = msg
	}

	var repos []string
	if s.repos != nil {
		repos = append([]string{}, s.repos...)
	}

	return Report{
		State:          s.state,
		Steps:          s.steps,
		FieldErrors:    errs,
		AvailableRepos: repos,
		Hint:           s.repoHint,
	}
}

// AvailableRepos returns the cached repository list, preserving the
// nil-versus-empty distinction.
func (s *Session) AvailableRepos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repos == nil {
		return nil
	}

	return append([]string{}, s.repos...)
}

// RepositoryPlaceholder describes the repository selector's empty state.
// Never-loaded and loaded-but-empty read differently.
func (s *Session) RepositoryPlaceholder() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repos == nil {
		return "Test the connection to load repositories"
	}

	if len(s.repos) == 0 {
		return "No repositories found"
	}

	return "Select a repository"
}

// Close cancels both cancellation domains and marks the session unusable.
// State writes from any still-running operation are suppressed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	if s.testCancel != nil {
		s.testCancel()
		s.testCancel = nil
	}

	if s.loadCancel != nil {
		s.loadCancel()
		s.loadCancel = nil
	}
}

// InvalidateRepositoryState drops repository-dependent ephemeral state:
// the cached list returns to never-loaded, the repository field error and
// advisory hint clear, and any in-flight load is cancelled. Called when
// the server URL or token changes.
func (s *Session) InvalidateRepositoryState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadGen++

	if s.loadCancel != nil {
		s.loadCancel()
		s.loadCancel = nil
	}

	s.repos = nil
	s.repoHint = ""
	delete(s.fieldErrors, validate.FieldRepository)
}

// commitTest applies fn only while gen is still the live test generation.
// Returns false when the run was superseded or the session closed.
func (s *Session) commitTest(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.testGen {
		return false
	}

	fn()

	return true
}

// commitLoad is commitTest for the loader domain.
func (s *Session) commitLoad(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.loadGen {
		return false
	}

	fn()

	return true
}

// Test runs the full phased connection test. A new invocation supersedes
// any test still in flight; the superseded run's late results are
// discarded entirely. The returned Report reflects this run's final state.
// A cancelled or superseded run returns context.Canceled.
func (s *Session) Test(ctx context.Context, opts TestOptions) (Report, error) {
	tracer := observability.Tracer("fmelink.probe")
	ctx, span := tracer.Start(ctx, "probe.test")
	defer span.End()

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return Report{}, ErrClosed
	}

	s.testGen++
	gen := s.testGen

	if s.testCancel != nil {
		s.testCancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.testCancel = cancel

	serverURL := s.store.ServerURL()
	token := s.store.Token()
	repository := s.store.Repository()
	knownRepos := s.repos

	s.mu.Unlock()

	s.logger.Debug("connection test started", slog.String("server_url", serverURL), slog.Bool("silent", opts.Silent))

	// Sanitize first so validation judges the canonical form.
	sanitized := sanitize.Sanitize(serverURL)
	candidateURL := serverURL
	if sanitized.Valid {
		candidateURL = sanitized.Cleaned
	}

	// Precondition: format errors block the network call entirely.
	form := validate.ValidateForm(validate.Form{
		ServerURL:  candidateURL,
		Token:      token,
		Repository: repository,
	}, validate.FormOptions{
		SkipRepositoryCheck: knownRepos == nil,
		KnownRepositories:   knownRepos,
	})

	if form.HasErrors {
		ok := s.commitTest(gen, func() {
			s.steps = Steps{}
			s.fieldErrors = make(map[validate.Field]string)

			for field, kind := range form.Errors {
				s.fieldErrors[field] = kindMessage(kind)
			}

			s.state = TestState{Status: StatusError, Severity: SeverityError}
			if !opts.Silent {
				s.state.Message = "Fix the highlighted fields before testing the connection"
			}
		})
		if !ok {
			return Report{}, context.Canceled
		}

		return s.Report(), nil
	}

	// Settle the sanitized URL before the network call resolves. The
	// persist is skipped when this run has already been superseded.
	if sanitized.Valid && sanitized.Changed {
		if !s.commitTest(gen, func() {}) {
			return Report{}, context.Canceled
		}

		if err := s.store.SetServerURL(sanitized.Cleaned); err != nil {
			s.logger.Warn("persist sanitized server url failed", slog.String("error", err.Error()))
		}
	}

	serverURL = candidateURL

	// Arm the steps for this run.
	ok := s.commitTest(gen, func() {
		s.fieldErrors = make(map[validate.Field]string)
		s.steps = Steps{ServerURL: StepPending, Token: StepPending, Repository: StepSkip}

		if repository != "" {
			s.steps.Repository = StepPending
		}

		s.state = TestState{Status: StatusRunning, Testing: true}
	})
	if !ok {
		return Report{}, context.Canceled
	}

	api := s.newClient(serverURL, token)

	report, err := s.runPhases(runCtx, gen, api, repository, opts)
	if err != nil {
		return Report{}, err
	}

	return report, nil
}

// runPhases executes phases A through C and finalizes the state.
func (s *Session) runPhases(ctx context.Context, gen uint64, api Client, repository string, opts TestOptions) (Report, error) {
	// Phase A: basic reachability and credential check.
	if ctx.Err() != nil {
		return Report{}, context.Canceled
	}

	info, err := api.Check(ctx)
	if err != nil {
		mapped := apierror.Map(err)
		if mapped.Kind == apierror.KindCancelled {
			return Report{}, context.Canceled
		}

		s.logger.Debug("basic check failed", slog.String("kind", mapped.Kind.String()))

		ok := s.commitTest(gen, func() {
			if mapped.Kind == apierror.KindUnauthorized {
				// The server answered, so the URL is fine; the token is not.
				s.steps.ServerURL = StepOK
				s.steps.Token = StepFail
			} else {
				s.steps.ServerURL = StepFail
				s.steps.Token = StepSkip
			}

			s.steps.Repository = StepSkip

			if mapped.Field != validate.FieldNone {
				s.fieldErrors[mapped.Field] = mapped.Message
			}

			s.state = TestState{Status: StatusError, Severity: SeverityError}
			if !opts.Silent {
				s.state.Message = mapped.Message
			}
		})
		if !ok {
			return Report{}, context.Canceled
		}

		return s.Report(), nil
	}

	ok := s.commitTest(gen, func() {
		s.steps.ServerURL = StepOK
		s.steps.Token = StepOK
		s.steps.Version = info.Version
	})
	if !ok {
		return Report{}, context.Canceled
	}

	// Phase B: repository discovery. Failure here never fails the test.
	if ctx.Err() != nil {
		return Report{}, context.Canceled
	}

	var (
		repos      []string
		listFailed bool
	)

	names, listErr := api.ListRepositories(ctx)
	if listErr != nil {
		mapped := apierror.Map(listErr)
		if mapped.Kind == apierror.KindCancelled {
			return Report{}, context.Canceled
		}

		s.logger.Debug("repository listing failed", slog.String("kind", mapped.Kind.String()))

		listFailed = true

		ok = s.commitTest(gen, func() {
			s.repos = []string{}
			s.repoHint = "Could not load the repository list; enter a repository name manually"
		})
	} else {
		repos = dedupeRepositories(names)

		ok = s.commitTest(gen, func() {
			s.repos = repos
			s.repoHint = ""
			delete(s.fieldErrors, validate.FieldRepository)
		})
	}

	if !ok {
		return Report{}, context.Canceled
	}

	// Phase C: confirm the selected repository, if one is set.
	repoFailed := false
	repoMessage := ""

	if repository != "" {
		if ctx.Err() != nil {
			return Report{}, context.Canceled
		}

		if listFailed {
			// The list is unavailable; fall back to a targeted check.
			if _, getErr := api.GetRepository(ctx, repository); getErr != nil {
				mapped := apierror.Map(getErr)
				if mapped.Kind == apierror.KindCancelled {
					return Report{}, context.Canceled
				}

				repoFailed = true
				repoMessage = fmt.Sprintf("Repository %q was not found on the server", repository)
			}
		} else if !containsRepository(repos, repository) {
			repoFailed = true
			repoMessage = fmt.Sprintf("Repository %q was not found on the server", repository)
		}

		ok = s.commitTest(gen, func() {
			if repoFailed {
				s.steps.Repository = StepFail
				s.fieldErrors[validate.FieldRepository] = repoMessage
			} else {
				s.steps.Repository = StepOK
			}
		})
		if !ok {
			return Report{}, context.Canceled
		}
	}

	// Finalize. Credentials stay marked healthy even when the repository
	// confirmation failed.
	ok = s.commitTest(gen, func() {
		if repoFailed {
			s.state = TestState{Status: StatusError, Severity: SeverityError}
			if !opts.Silent {
				s.state.Message = repoMessage
			}

			return
		}

		s.state = TestState{Status: StatusSuccess, Severity: SeveritySuccess}
		if !opts.Silent {
			if info.Version != "" {
				s.state.Message = fmt.Sprintf("Connection successful (FME Flow %s)", info.Version)
			} else {
				s.state.Message = "Connection successful"
			}
		}
	})
	if !ok {
		return Report{}, context.Canceled
	}

	return s.Report(), nil
}

// LoadRepositories refreshes the repository list outside of a full test.
// It cancels any of its own prior in-flight load but never an unrelated
// test run. On a transient failure an existing list is preserved so a
// working selector is not disrupted.
func (s *Session) LoadRepositories(ctx context.Context, opts LoadOptions) ([]string, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}

	s.loadGen++
	gen := s.loadGen

	if s.loadCancel != nil {
		s.loadCancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.loadCancel = cancel

	serverURL := s.store.ServerURL()
	token := s.store.Token()

	s.mu.Unlock()

	// Loading is only permitted while both credentials validate.
	if kind := validate.ServerURL(serverURL); kind != validate.KindOK {
		return nil, fmt.Errorf("cannot load repositories: %s", kindMessage(kind))
	}

	if kind := validate.Token(token); kind != validate.KindOK {
		return nil, fmt.Errorf("cannot load repositories: %s", kindMessage(kind))
	}

	s.logger.Debug("repository load started", slog.Bool("show_loading", opts.ShowLoading))

	api := s.newClient(serverURL, token)

	names, err := api.ListRepositories(runCtx)
	if err != nil {
		mapped := apierror.Map(err)
		if mapped.Kind == apierror.KindCancelled {
			return nil, context.Canceled
		}

		s.commitLoad(gen, func() {
			// Keep a previously loaded list through a transient failure.
			if s.repos == nil {
				s.repos = []string{}
			}

			s.repoHint = "Could not refresh the repository list; the previous list is still shown"
		})

		return nil, err
	}

	deduped := dedupeRepositories(names)

	ok := s.commitLoad(gen, func() {
		s.repos = deduped
		s.repoHint = ""
		delete(s.fieldErrors, validate.FieldRepository)
	})
	if !ok {
		return nil, context.Canceled
	}

	return deduped, nil
}

// dedupeRepositories drops blank entries and duplicates, preserving the
// order of first occurrence.
func dedupeRepositories(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		if name == "" {
			continue
		}

		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out
}

func containsRepository(repos []string, name string) bool {
	for _, repo := range repos {
		if repo == name {
			return true
		}
	}

	return false
}

// kindMessage translates a validation Kind into its user-facing message.
func kindMessage(kind validate.Kind) string {
	switch kind {
	case validate.KindMissingURL:
		return "Enter the FME Flow server URL"
	case validate.KindInvalidURL:
		return "The server URL is not a valid HTTP(S) address"
	case validate.KindBadBaseURL:
		return "Use the server base URL without the /fmerest path"
	case validate.KindMissingToken:
		return "Enter an API token"
	case validate.KindInvalidToken:
		return "The token contains invalid characters or is too short"
	case validate.KindRepositoryRequired:
		return "Select a repository"
	case validate.KindRepositoryNotFound:
		return "The selected repository was not found on the server"
	case validate.KindInvalidEmail:
		return "Enter a valid email address"
	default:
		return "Invalid value"
	}
}
