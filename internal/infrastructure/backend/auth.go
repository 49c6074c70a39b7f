package backend

import (
	"context"
	"net/http"

	"github.com/ugmart/storefront/internal/domain/identity"
)

// AuthClient implements identity.AuthGateway
type AuthClient struct {
	c *Client
}

// NewAuthClient creates an auth client
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

var _ identity.AuthGateway = (*AuthClient)(nil)

func (a *AuthClient) Register(ctx context.Context, reg identity.Registration) (string, error) {
	resp, err := a.c.doJSON(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name":     reg.Name,
		"email":    reg.Email,
		"password": reg.Password,
	})
	if err != nil {
		return "", err
	}
	var user identity.User
	if ok, err := resp.field("user", &user); err != nil {
		return "", err
	} else if !ok || user.ID == "" {
		return "", &APIError{Status: resp.status, Message: messageFrom(resp.envelope(), "Registration failed")}
	}
	return user.ID, nil
}

func (a *AuthClient) Login(ctx context.Context, creds identity.Credentials) (*identity.Session, error) {
	resp, err := a.c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	})
	if err != nil {
		return nil, err
	}
	return sessionFrom(resp, "Login failed")
}

func (a *AuthClient) Logout(ctx context.Context) ([]string, error) {
	resp, err := a.c.doJSON(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return nil, err
	}
	return resp.header.Values("Set-Cookie"), nil
}

func (a *AuthClient) Refresh(ctx context.Context) (*identity.Session, error) {
	resp, err := a.c.doJSON(ctx, http.MethodPost, "/auth/refresh", nil)
	if err != nil {
		return nil, err
	}
	return sessionFrom(resp, "Session expired")
}

func sessionFrom(resp *response, fallback string) (*identity.Session, error) {
	var user identity.User
	ok, err := resp.field("user", &user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: messageFrom(resp.envelope(), fallback)}
	}
	return &identity.Session{User: user, Cookies: resp.header.Values("Set-Cookie")}, nil
}
