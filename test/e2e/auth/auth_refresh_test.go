package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLoginRefreshLogout walks one session through its whole lifecycle.
func TestLoginRefreshLogout(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	ctx := t.Context()
	client := performLogin(t, baseURL, adminEmail, adminPassword)

	me, err := client.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, adminEmail, me.Email)
	require.Equal(t, "ADMIN", me.Role)

	first, err := client.Refresh(ctx)
	require.NoError(t, err, "Refresh should succeed")
	assertTokenPair(t, first)

	second, err := client.Refresh(ctx)
	require.NoError(t, err, "Rotated refresh token should be usable")
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	require.NoError(t, client.Logout(ctx))

	loggedIn, err := client.LoggedIn(ctx)
	require.NoError(t, err)
	require.False(t, loggedIn)
}

// TestRefreshReplayAcrossDevices verifies that a newer login overwrites the
// stored refresh token, so the older device can no longer refresh.
func TestRefreshReplayAcrossDevices(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	ctx := t.Context()
	laptop := performLogin(t, baseURL, adminEmail, adminPassword)
	phone := performLogin(t, baseURL, adminEmail, adminPassword)

	_, err := laptop.Refresh(ctx)
	require.ErrorIs(t, err, authsdk.ErrRefreshTokenInvalid)

	_, err = phone.Refresh(ctx)
	require.NoError(t, err)
}
