package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Register creates an account and returns the token pair plus the new user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/auth/register", nil, req)
	if err != nil {
		return AuthResponse{}, err
	}
	if err := c.do(httpReq, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Login authenticates with email/password and returns the token pair.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return AuthResponse{}, err
	}
	if err := c.do(httpReq, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Logout invalidates the current session server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.doAuthed(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// CurrentUser fetches the authenticated user via GET /auth/me.
func (c *Client) CurrentUser(ctx context.Context) (UserDTO, error) {
	var payload struct {
		User UserDTO `json:"user"`
	}
	if err := c.doAuthed(ctx, http.MethodGet, "/auth/me", nil, &payload); err != nil {
		return UserDTO{}, err
	}
	return payload.User, nil
}

// Refresh exchanges the refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/auth/refresh", nil, body)
	if err != nil {
		return "", err
	}
	if err := c.do(httpReq, &payload); err != nil {
		return "", err
	}
	return payload.AccessToken, nil
}

// doAuthed executes a bearer-authenticated request. On a 401 it performs
// exactly one silent refresh-and-retry; if the refresh itself fails the
// stored session is cleared and the caller sees ErrUnauthorized.
func (c *Client) doAuthed(ctx context.Context, method, path string, body, out any) error {
	if c.tokens == nil {
		return ErrUnauthorized
	}

	err := c.sendAuthed(ctx, method, path, body, out, c.tokens.AccessToken())
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	refreshed, refreshErr := c.Refresh(ctx, c.tokens.RefreshToken())
	if refreshErr != nil {
		c.logger.Warn("token refresh failed, clearing session", "error", refreshErr)
		c.tokens.ClearSession()
		return ErrUnauthorized
	}
	if err := c.tokens.StoreAccessToken(refreshed); err != nil {
		return fmt.Errorf("failed to store refreshed token: %w", err)
	}

	c.logger.Debug("access token refreshed, retrying request", "path", path)
	return c.sendAuthed(ctx, method, path, body, out, refreshed)
}

func (c *Client) sendAuthed(ctx context.Context, method, path string, body, out any, token string) error {
	req, err := c.newRequest(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}
