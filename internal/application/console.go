// Package application contains the session orchestrator that backs every
// console command, plus the optional dashboard refresher.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// Outcome sentinels. User-facing detail is delivered through Interaction
// notices; these only let the caller pick an exit status.
var (
	// ErrActionFailed means a remote call was made and did not succeed.
	ErrActionFailed = errors.New("action failed")
	// ErrValidation means local input was rejected and no request was sent.
	ErrValidation = errors.New("validation failed")
	// ErrCancelled means the operator declined a confirmation or prompt.
	ErrCancelled = errors.New("cancelled")
	// ErrNotAuthenticated means a bearer call was attempted without a session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// UploadDraft is the pending model upload form.
type UploadDraft struct {
	File        *model.File
	Description string
}

// State is a point-in-time copy of the console state. Mutating it has no
// effect on the console.
type State struct {
	Session    model.Session
	LoginForm  model.LoginForm
	LoginError string

	Stats            *model.DashboardStats
	Credentials      []model.Credential
	Models           []model.DetectorModel
	CredentialFilter string

	StatsRefreshedAt       time.Time
	CredentialsRefreshedAt time.Time
	ModelsRefreshedAt      time.Time

	CreateCredentialOpen bool
	CredentialDraft      model.CredentialDraft
	UploadDraft          UploadDraft
	DetectionDraft       model.DetectionDraft
	TestResult           model.DetectionResult
}

// Authenticated reports whether a session token is held.
func (s State) Authenticated() bool {
	return s.Session.Authenticated()
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithClock sets the clock used for refresh timestamps and session expiry.
func WithClock(clock clockwork.Clock) ConsoleOption {
	return func(c *Console) { c.clock = clock }
}

// WithLocation sets the zone used to read zone-less expiry dates in drafts.
func WithLocation(loc *time.Location) ConsoleOption {
	return func(c *Console) { c.loc = loc }
}

// Console is the session orchestrator. It owns all mutable state, attaches
// the bearer token to every admin call, and re-fetches the affected
// collection after each successful mutation.
//
// The mutex guards state only and is never held across a remote call, so
// concurrent operations resolve last-writer-wins by completion order.
type Console struct {
	api    driven.AdminAPI
	store  driven.SessionStore
	ui     driven.Interaction
	clip   driven.Clipboard
	logger *slog.Logger
	clock  clockwork.Clock
	loc    *time.Location

	mu    sync.Mutex
	state State
}

// NewConsole creates a Console with all required ports.
func NewConsole(
	api driven.AdminAPI,
	store driven.SessionStore,
	ui driven.Interaction,
	clip driven.Clipboard,
	logger *slog.Logger,
	opts ...ConsoleOption,
) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Console{
		api:    api,
		store:  store,
		ui:     ui,
		clip:   clip,
		logger: logger,
		clock:  clockwork.NewRealClock(),
		loc:    time.Local,
		state: State{
			CredentialDraft: model.NewCredentialDraft(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state. Slices are cloned so callers
// cannot reach the mirrors.
func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Credentials = slices.Clone(c.state.Credentials)
	s.Models = slices.Clone(c.state.Models)
	s.TestResult = slices.Clone(c.state.TestResult)
	if c.state.Stats != nil {
		stats := *c.state.Stats
		s.Stats = &stats
	}
	return s
}

// --- mirror entry points; the only writers of the collections ---

func (c *Console) replaceStats(stats *model.DashboardStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Stats = stats
	c.state.StatsRefreshedAt = c.clock.Now()
}

func (c *Console) replaceCredentials(creds []model.Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Credentials = creds
	c.state.CredentialsRefreshedAt = c.clock.Now()
}

func (c *Console) replaceModels(models []model.DetectorModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Models = models
	c.state.ModelsRefreshedAt = c.clock.Now()
}

// --- helpers shared by the operation files ---

// token returns the bearer token, or ErrNotAuthenticated when there is none.
func (c *Console) token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Session.Authenticated() {
		return "", ErrNotAuthenticated
	}
	return c.state.Session.Token, nil
}

// checkUnauthorized ends the session when a bearer call was rejected with
// 401. Only the session that made the call is ended; a newer login that
// completed in the meantime is kept.
func (c *Console) checkUnauthorized(ctx context.Context, token string, err error) {
	if !errors.Is(err, driven.ErrUnauthorized) {
		return
	}

	c.mu.Lock()
	current := c.state.Session.Token == token
	if current {
		c.state.Session = model.Session{}
	}
	c.mu.Unlock()

	if !current {
		return
	}
	c.logger.WarnContext(ctx, "session token rejected, signing out")
	if err := c.store.Clear(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear session store", "error", err)
	}
}

func (c *Console) notify(ctx context.Context, level driven.NoticeLevel, msg string) {
	c.ui.Notify(ctx, driven.Notice{Level: level, Message: msg})
}

// requireSession returns the token or notifies the operator that a login is
// needed.
func (c *Console) requireSession(ctx context.Context) (string, error) {
	token, err := c.token()
	if err != nil {
		c.notify(ctx, driven.NoticeError, "Please log in first")
		return "", err
	}
	return token, nil
}

// failMutation reports a failed write and returns the wrapped outcome.
func (c *Console) failMutation(ctx context.Context, action, token string, err error) error {
	c.checkUnauthorized(ctx, token, err)
	reason := driven.Reason(err)
	c.logger.WarnContext(ctx, "mutation failed", "action", action, "error", err)
	c.notify(ctx, driven.NoticeError, fmt.Sprintf("Failed to %s: %s", action, reason))
	return fmt.Errorf("%w: %s: %w", ErrActionFailed, action, err)
}

// failValidation reports rejected local input.
func (c *Console) failValidation(ctx context.Context, msg string) error {
	c.notify(ctx, driven.NoticeError, msg)
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
