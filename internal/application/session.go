package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// Init restores a persisted session and, when one is found, reloads the
// dashboard straight away. The token is trusted as-is; an expired token is
// discovered by the first call that fails with 401.
func (c *Console) Init(ctx context.Context) {
	s, err := c.store.Load(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to restore session", "error", err)
		return
	}
	if !s.Authenticated() {
		c.logger.DebugContext(ctx, "no stored session")
		return
	}

	c.mu.Lock()
	c.state.Session = s
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "session restored", "username", s.Username)
	c.ReloadDashboard(ctx)
}

// SetLoginForm replaces the login draft.
func (c *Console) SetLoginForm(form model.LoginForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LoginForm = form
}

// Login submits the current login draft.
func (c *Console) Login(ctx context.Context) error {
	c.mu.Lock()
	form := c.state.LoginForm
	c.mu.Unlock()

	return c.Authenticate(ctx, form.Username, form.Password)
}

// Authenticate exchanges username and password for a token. Rejections set a
// generic LoginError; transport failures set one carrying the reason. Either
// failure ends any previous session. It is never retried.
func (c *Console) Authenticate(ctx context.Context, username, password string) error {
	result, err := c.api.Login(ctx, username, password)
	if err != nil {
		var apiErr *driven.APIError
		msg := "Login failed: " + driven.Reason(err)
		if errors.As(err, &apiErr) {
			msg = "Invalid credentials"
		}

		// A rejected attempt signs out whatever session was held before.
		c.mu.Lock()
		c.state.LoginError = msg
		c.state.Session = model.Session{}
		c.mu.Unlock()

		c.logger.WarnContext(ctx, "login failed", "username", username, "error", err)
		if err := c.store.Clear(ctx); err != nil {
			c.logger.ErrorContext(ctx, "failed to clear session store", "error", err)
		}
		return fmt.Errorf("%w: login: %w", ErrActionFailed, err)
	}

	// The displayed username is the one typed in, not a server-side value.
	s := model.Session{Token: result.AccessToken, Username: username}

	c.mu.Lock()
	c.state.Session = s
	c.state.LoginError = ""
	c.state.LoginForm.Password = ""
	c.mu.Unlock()

	if err := c.store.Save(ctx, s); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist session", "error", err)
	}

	c.logger.InfoContext(ctx, "logged in", "username", username)
	c.ReloadDashboard(ctx)
	return nil
}

// Logout forgets the session locally. No request is sent to the server.
// Calling it while signed out is harmless.
func (c *Console) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.state.Session = model.Session{}
	c.state.LoginForm = model.LoginForm{}
	c.state.LoginError = ""
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.logger.InfoContext(ctx, "logged out")
	return nil
}

// SessionExpiry reads the exp claim of the bearer token without verifying
// the signature. It is for display only. ok is false when there is no
// session or the token is not a JWT with an exp claim.
func (c *Console) SessionExpiry() (exp time.Time, expired, ok bool) {
	c.mu.Lock()
	token := c.state.Session.Token
	c.mu.Unlock()

	if token == "" {
		return time.Time{}, false, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, false
	}
	at, err := claims.GetExpirationTime()
	if err != nil || at == nil {
		return time.Time{}, false, false
	}
	return at.Time, !c.clock.Now().Before(at.Time), true
}

// CheckHealth calls the service's public health check. It needs no session
// and never changes state.
func (c *Console) CheckHealth(ctx context.Context) (string, error) {
	service, err := c.api.Health(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "health check failed", "error", err)
		return "", fmt.Errorf("health check: %w", err)
	}
	return service, nil
}
