package adminapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// Login exchanges operator credentials for a bearer token. Any non-2xx
// response is returned as *driven.APIError so callers can tell a rejected
// login apart from a transport failure.
func (c *Client) Login(ctx context.Context, username, password string) (*driven.LoginResult, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/admin/auth/login", loginRequest{
		Username: username,
		Password: password,
	}, "")
	if err != nil {
		return nil, err
	}

	var tok tokenResponse
	if err := c.do(c.http, req, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, errors.New("login response carried no access token")
	}

	return &driven.LoginResult{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   time.Duration(tok.ExpiresIn) * time.Second,
	}, nil
}
