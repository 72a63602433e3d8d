package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// ListCredentials returns all credentials. statusFilter narrows the list
// server-side; pass "" for everything.
func (c *Client) ListCredentials(ctx context.Context, token, statusFilter string) ([]model.Credential, error) {
	var query url.Values
	if statusFilter != "" {
		query = url.Values{"filter_status": {statusFilter}}
	}
	return c.listCredentials(ctx, token, "/admin/keys", query)
}

// ListExpiringCredentials returns credentials that expire within days.
func (c *Client) ListExpiringCredentials(ctx context.Context, token string, days int) ([]model.Credential, error) {
	query := url.Values{"days": {strconv.Itoa(days)}}
	return c.listCredentials(ctx, token, "/admin/keys/expiring/soon", query)
}

func (c *Client) listCredentials(ctx context.Context, token, path string, query url.Values) ([]model.Credential, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, token)
	if err != nil {
		return nil, err
	}

	var rows []keyListJSON
	if err := c.do(c.http, req, &rows); err != nil {
		return nil, err
	}

	creds := make([]model.Credential, 0, len(rows))
	for _, row := range rows {
		creds = append(creds, mapCredential(row))
	}
	return creds, nil
}

// GetCredential returns the full credential record, secret included.
func (c *Client) GetCredential(ctx context.Context, token string, id int64) (*model.CredentialDetail, error) {
	req, err := c.newRequest(ctx, http.MethodGet, keyPath(id, ""), nil, nil, token)
	if err != nil {
		return nil, err
	}

	var k keyJSON
	if err := c.do(c.http, req, &k); err != nil {
		return nil, err
	}
	return mapCredentialDetail(k), nil
}

// CreateCredential creates a credential. The expiry fields sent depend on the
// policy variant: Never sends neither, Duration sends duration_days, FixedDate
// sends expires_at.
func (c *Client) CreateCredential(ctx context.Context, token string, r driven.CreateCredentialRequest) (*model.CredentialDetail, error) {
	body, err := encodeCreateCredential(r)
	if err != nil {
		return nil, err
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/admin/keys", body, token)
	if err != nil {
		return nil, err
	}

	var k keyJSON
	if err := c.do(c.http, req, &k); err != nil {
		return nil, err
	}
	return mapCredentialDetail(k), nil
}

// encodeCreateCredential shapes the create payload from the policy variant.
func encodeCreateCredential(r driven.CreateCredentialRequest) (createKeyJSON, error) {
	body := createKeyJSON{
		Name:       r.Name,
		DailyLimit: r.DailyLimit,
	}

	switch p := r.Policy.(type) {
	case model.Never:
		body.ExpirationType = string(model.ExpirationKindNever)
	case model.Duration:
		days := p.Days
		body.ExpirationType = string(model.ExpirationKindDuration)
		body.DurationDays = &days
	case model.FixedDate:
		at := model.FormatTimestamp(p.At)
		body.ExpirationType = string(model.ExpirationKindDate)
		body.ExpiresAt = &at
	default:
		return createKeyJSON{}, fmt.Errorf("encoding credential %q: unsupported expiration policy %T", r.Name, r.Policy)
	}

	return body, nil
}

// ToggleCredential flips a credential between enabled and disabled.
func (c *Client) ToggleCredential(ctx context.Context, token string, id int64) error {
	req, err := c.newRequest(ctx, http.MethodPatch, keyPath(id, "/toggle"), nil, nil, token)
	if err != nil {
		return err
	}
	return c.do(c.http, req, nil)
}

// RenewCredential resets a credential's expiry to days from now. The policy
// sent is always "duration", whatever the credential's current policy is.
func (c *Client) RenewCredential(ctx context.Context, token string, id int64, days int) error {
	req, err := c.newJSONRequest(ctx, http.MethodPatch, keyPath(id, "/renew"), renewKeyJSON{
		ExpirationType: string(model.ExpirationKindDuration),
		DurationDays:   days,
	}, token)
	if err != nil {
		return err
	}
	return c.do(c.http, req, nil)
}

// DeleteCredential permanently removes a credential.
func (c *Client) DeleteCredential(ctx context.Context, token string, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, keyPath(id, ""), nil, nil, token)
	if err != nil {
		return err
	}
	return c.do(c.http, req, nil)
}

func keyPath(id int64, suffix string) string {
	return "/admin/keys/" + strconv.FormatInt(id, 10) + suffix
}
