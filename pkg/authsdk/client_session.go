package authsdk

import (
	"context"
	"net/http"
)

// CSRFToken fetches a CSRF token, stores its secret cookie in the jar and
// remembers the token for later state-changing calls.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	var resp CSRFTokenResponse
	if err := c.call(ctx, http.MethodGet, "/api/csrf-token", nil, &resp, http.StatusOK); err != nil {
		return "", err
	}
	c.SetCSRFToken(resp.CSRFToken)
	return resp.CSRFToken, nil
}

// Login authenticates with email and password. On success the session
// cookies are in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.call(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &pair, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh rotates the session using the refresh cookie in the jar.
func (c *Client) Refresh(ctx context.Context) (*TokenPair, error) {
	var pair TokenPair
	if err := c.call(ctx, http.MethodPost, "/api/auth/refresh-token", nil, &pair, http.StatusOK); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout ends the session and clears the cookies. It succeeds even when no
// session exists.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil, http.StatusOK)
}

// Me returns the profile of the logged in user.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoggedIn reports whether the jar holds a valid access token.
func (c *Client) LoggedIn(ctx context.Context) (bool, error) {
	var resp LoggedInResponse
	if err := c.call(ctx, http.MethodGet, "/api/auth/loggedin", nil, &resp, http.StatusOK); err != nil {
		return false, err
	}
	return resp.LoggedIn, nil
}

// ChangePassword replaces the password of the logged in user. The session
// ends; log in again with the new password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	req := ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	return c.call(ctx, http.MethodPost, "/api/auth/change-password", req, nil, http.StatusOK)
}
