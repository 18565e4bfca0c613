package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies that login with wrong password is rejected.
func TestInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	_, err := newClient(t, baseURL).Login(t.Context(), adminEmail, "wrong-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
}

// TestInvalidAccessToken verifies that a forged bearer token is rejected.
func TestInvalidAccessToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, baseURL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer invalid-token-12345")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestLoginWithoutCSRFToken verifies that credential endpoints require the
// CSRF double submit.
func TestLoginWithoutCSRFToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client, err := authsdk.NewClient(baseURL)
	require.NoError(t, err)

	_, err = client.Login(t.Context(), adminEmail, adminPassword)
	require.ErrorIs(t, err, authsdk.ErrCsrfTokenNotFound)
}

// TestUserCannotAdministerRoles verifies the role guard on admin routes.
func TestUserCannotAdministerRoles(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	admin := performLogin(t, baseURL, adminEmail, adminPassword)
	signupAndActivate(t, baseURL, admin, "trader@example.com")

	user := performLogin(t, baseURL, "trader@example.com", adminPassword)

	_, err := user.ListRoles(t.Context())
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)

	roles, err := admin.ListRoles(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, roles)
}
