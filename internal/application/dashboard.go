package application

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

// ReloadDashboard refreshes stats, credentials and models, in that order and
// one at a time. A failed fetch is logged and leaves its mirror as it was;
// the remaining fetches still run and nothing is shown to the operator.
func (c *Console) ReloadDashboard(ctx context.Context) {
	if _, err := c.token(); err != nil {
		c.logger.DebugContext(ctx, "dashboard reload skipped, not authenticated")
		return
	}

	for _, refresh := range []func(context.Context) error{
		c.RefreshStats,
		c.RefreshCredentials,
		c.RefreshModels,
	} {
		if err := refresh(ctx); err != nil {
			c.logger.WarnContext(ctx, "dashboard fetch failed", "error", err)
		}
	}
}

// RefreshStats replaces the stats snapshot.
func (c *Console) RefreshStats(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	stats, err := c.api.FetchDashboardStats(ctx, token)
	if err != nil {
		c.checkUnauthorized(ctx, token, err)
		return fmt.Errorf("fetch stats: %w", err)
	}
	c.replaceStats(stats)
	return nil
}

// RefreshCredentials replaces the credentials mirror, honouring the current
// status filter.
func (c *Console) RefreshCredentials(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	c.mu.Lock()
	filter := c.state.CredentialFilter
	c.mu.Unlock()

	creds, err := c.api.ListCredentials(ctx, token, filter)
	if err != nil {
		c.checkUnauthorized(ctx, token, err)
		return fmt.Errorf("fetch credentials: %w", err)
	}
	c.replaceCredentials(creds)
	return nil
}

// RefreshModels replaces the models mirror.
func (c *Console) RefreshModels(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	models, err := c.api.ListModels(ctx, token)
	if err != nil {
		c.checkUnauthorized(ctx, token, err)
		return fmt.Errorf("fetch models: %w", err)
	}
	c.replaceModels(models)
	return nil
}

// SetCredentialFilter sets the expiration-status filter used by
// RefreshCredentials. "" lists everything.
func (c *Console) SetCredentialFilter(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CredentialFilter = status
}

// ListExpiringCredentials returns credentials expiring within days. The
// credentials mirror is not touched.
func (c *Console) ListExpiringCredentials(ctx context.Context, days int) ([]model.Credential, error) {
	token, err := c.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	creds, err := c.api.ListExpiringCredentials(ctx, token, days)
	if err != nil {
		c.checkUnauthorized(ctx, token, err)
		return nil, fmt.Errorf("fetch expiring credentials: %w", err)
	}
	return creds, nil
}

// RequestLogs returns one page of the detection request log.
func (c *Console) RequestLogs(ctx context.Context, q model.RequestLogQuery) ([]model.RequestLog, error) {
	token, err := c.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := c.api.FetchRequestLogs(ctx, token, q)
	if err != nil {
		c.checkUnauthorized(ctx, token, err)
		return nil, fmt.Errorf("fetch request logs: %w", err)
	}
	return logs, nil
}
