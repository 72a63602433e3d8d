package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

const renewPrompt = "Enter number of days to extend:"

// OpenCreateCredential opens the create form with a fresh draft.
func (c *Console) OpenCreateCredential() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CreateCredentialOpen = true
	c.state.CredentialDraft = model.NewCredentialDraft()
}

// CloseCreateCredential closes the create form and discards the draft.
func (c *Console) CloseCreateCredential() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CreateCredentialOpen = false
	c.state.CredentialDraft = model.NewCredentialDraft()
}

// SetCredentialDraft replaces the create-credential draft.
func (c *Console) SetCredentialDraft(d model.CredentialDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CredentialDraft = d
}

// CreateCredential submits the current draft. The returned detail carries the
// new secret, which is shown once and not kept in state.
func (c *Console) CreateCredential(ctx context.Context) (*model.CredentialDetail, error) {
	const action = "create API key"

	token, err := c.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	draft := c.state.CredentialDraft
	c.mu.Unlock()

	req, err := c.buildCreateRequest(draft)
	if err != nil {
		return nil, c.failValidation(ctx, fmt.Sprintf("Failed to %s: %s", action, err))
	}

	created, err := c.api.CreateCredential(ctx, token, req)
	if err != nil {
		return nil, c.failMutation(ctx, action, token, err)
	}

	c.afterMutation(ctx, c.RefreshCredentials)
	c.CloseCreateCredential()
	c.notify(ctx, driven.NoticeSuccess, "API key created successfully!")
	return created, nil
}

// buildCreateRequest turns raw draft text into a request. Only the field of
// the chosen expiration kind is read. A bad daily limit means no limit.
func (c *Console) buildCreateRequest(d model.CredentialDraft) (driven.CreateCredentialRequest, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return driven.CreateCredentialRequest{}, errors.New("name is required")
	}
	policy, err := model.ParseExpirationPolicy(d.ExpirationType, d.DurationDays, d.ExpiresAt, c.loc)
	if err != nil {
		return driven.CreateCredentialRequest{}, err
	}
	return driven.CreateCredentialRequest{
		Name:       name,
		Policy:     policy,
		DailyLimit: model.ParseDailyLimit(d.DailyLimit),
	}, nil
}

// ToggleCredential flips a credential between enabled and disabled.
func (c *Console) ToggleCredential(ctx context.Context, id int64) error {
	const action = "toggle key"

	token, err := c.requireSession(ctx)
	if err != nil {
		return err
	}
	if err := c.api.ToggleCredential(ctx, token, id); err != nil {
		return c.failMutation(ctx, action, token, err)
	}

	c.afterMutation(ctx, c.RefreshCredentials)
	c.notify(ctx, driven.NoticeSuccess, "API key status updated!")
	return nil
}

// RenewCredential asks for a number of days and renews the credential with a
// duration policy of that length, whatever its current policy is. An empty
// or cancelled answer sends nothing.
func (c *Console) RenewCredential(ctx context.Context, id int64) error {
	const action = "renew key"

	token, err := c.requireSession(ctx)
	if err != nil {
		return err
	}

	answer, ok, err := c.ui.Prompt(ctx, renewPrompt)
	if err != nil {
		return fmt.Errorf("prompt renewal days: %w", err)
	}
	if !ok || strings.TrimSpace(answer) == "" {
		c.logger.DebugContext(ctx, "renewal cancelled", "credential_id", id)
		return ErrCancelled
	}

	days, err := model.ParseDays(answer)
	if err != nil {
		return c.failValidation(ctx, fmt.Sprintf("Failed to %s: %s", action, err))
	}

	if err := c.api.RenewCredential(ctx, token, id, days); err != nil {
		return c.failMutation(ctx, action, token, err)
	}

	c.afterMutation(ctx, c.RefreshCredentials)
	c.notify(ctx, driven.NoticeSuccess, "API key renewed successfully!")
	return nil
}

// DeleteCredential asks for confirmation, then deletes the credential.
func (c *Console) DeleteCredential(ctx context.Context, id int64) error {
	const action = "delete key"

	token, err := c.requireSession(ctx)
	if err != nil {
		return err
	}
	if ok, err := c.confirm(ctx, "Are you sure you want to delete this API key?"); !ok {
		return err
	}

	if err := c.api.DeleteCredential(ctx, token, id); err != nil {
		return c.failMutation(ctx, action, token, err)
	}

	c.afterMutation(ctx, c.RefreshCredentials)
	c.notify(ctx, driven.NoticeSuccess, "API key deleted successfully!")
	return nil
}

// CopyKey fetches a credential's secret and puts it on the clipboard. The
// secret is never stored in state.
func (c *Console) CopyKey(ctx context.Context, id int64) error {
	token, err := c.requireSession(ctx)
	if err != nil {
		return err
	}

	detail, err := c.api.GetCredential(ctx, token, id)
	if err == nil {
		err = c.clip.WriteText(detail.KeyValue)
	}
	if err != nil {
		c.checkUnauthorized(ctx, token, err)
		c.logger.WarnContext(ctx, "copy key failed", "credential_id", id, "error", err)
		c.notify(ctx, driven.NoticeError, "Failed to copy key")
		return fmt.Errorf("%w: copy key: %w", ErrActionFailed, err)
	}

	c.notify(ctx, driven.NoticeSuccess, "API key copied to clipboard!")
	return nil
}

// confirm asks a yes/no question. ok is false when the operator declined or
// the dialog failed; err is ErrCancelled in the first case.
func (c *Console) confirm(ctx context.Context, question string) (ok bool, err error) {
	yes, err := c.ui.Confirm(ctx, question)
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	if !yes {
		return false, ErrCancelled
	}
	return true, nil
}

// afterMutation re-fetches the collections a successful write affected. A
// failed re-fetch leaves the mirror stale like any other read failure.
func (c *Console) afterMutation(ctx context.Context, refreshes ...func(context.Context) error) {
	for _, refresh := range refreshes {
		if err := refresh(ctx); err != nil {
			c.logger.WarnContext(ctx, "refresh after mutation failed", "error", err)
		}
	}
}
