package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
)

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Token string
	User  *domain.UserProfile
}

var errNoToken = errors.New("login response carried no token")

// Login exchanges credentials for a bearer token and the operator profile.
// It does not touch the session; callers pass the result to session.Store.Login.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var raw json.RawMessage
	req := client.Request{Method: "POST", Path: "/auth/login", Body: creds, Anonymous: true}
	if err := c.t.Do(ctx, req, &raw); err != nil {
		return nil, fmt.Errorf("api.Login: %w", err)
	}

	var env struct {
		Token       string          `json:"token"`
		AccessToken string          `json:"accessToken"`
		User        json.RawMessage `json:"user"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("api.Login: %w", decodeError(err))
	}
	if env.Token == "" && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &env); err != nil {
			return nil, fmt.Errorf("api.Login: %w", decodeError(err))
		}
	}

	token := env.Token
	if token == "" {
		token = env.AccessToken
	}
	if token == "" {
		return nil, fmt.Errorf("api.Login: %w", decodeError(errNoToken))
	}
	user, err := decodeOne[domain.UserProfile](env.User, "user")
	if err != nil {
		return nil, fmt.Errorf("api.Login: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

// Me returns the profile the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*domain.UserProfile, error) {
	var raw json.RawMessage
	if err := c.get(ctx, token, "/auth/me", nil, &raw); err != nil {
		return nil, fmt.Errorf("api.Me: %w", err)
	}
	u, err := decodeOne[domain.UserProfile](raw, "user")
	if err != nil {
		return nil, fmt.Errorf("api.Me: %w", err)
	}
	return u, nil
}

var _ Transport = (*client.Client)(nil)
