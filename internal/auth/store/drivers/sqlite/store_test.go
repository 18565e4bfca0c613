package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/store"
	"github.com/aussiebroadwan/marketauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func createUser(t *testing.T, st *Store, email, roleName string) domain.User {
	t.Helper()
	ctx := context.Background()

	role, err := st.Roles().GetRoleByName(ctx, roleName)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Username:     "user-" + idx.New().String(),
		Email:        email,
		PasswordHash: "hash",
		RoleID:       role.ID,
		IsActive:     true,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	return got
}

func TestMigrations_SeedRoles(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	admin, err := st.Roles().GetRoleWithPermissions(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	require.Contains(t, admin.PermissionNames(), domain.PermCreateRole)
	require.Contains(t, admin.PermissionNames(), domain.PermGetLoggedInUser)

	user, err := st.Roles().GetRoleWithPermissions(ctx, domain.RoleUser)
	require.NoError(t, err)
	require.Contains(t, user.PermissionNames(), domain.PermGetLoggedInUser)
	require.NotContains(t, user.PermissionNames(), domain.PermCreateRole)

	v, dirty, err := st.MigrationVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 2, v)

	// Re-applying is a no-op
	require.NoError(t, st.ApplyMigrations())
}

func TestUsers_CreateAndLookup(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	u := createUser(t, st, "Alice@Example.com", domain.RoleUser)
	require.Equal(t, domain.RoleUser, u.RoleName)
	require.True(t, u.IsActive)
	require.Empty(t, u.RefreshTokenHash)
	require.Nil(t, u.RefreshTokenExpiresAt)
	require.False(t, u.CreatedAt.IsZero())

	t.Run("email lookup ignores case", func(t *testing.T) {
		got, err := st.Users().GetUserByEmail(ctx, "alice@example.COM")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := st.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := domain.User{
			ID:           idx.New().String(),
			Username:     "someone-else",
			Email:        "ALICE@example.com",
			PasswordHash: "hash",
			RoleID:       u.RoleID,
		}
		require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("activation flag", func(t *testing.T) {
		require.NoError(t, st.Users().SetActive(ctx, u.ID, false))
		got, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, got.IsActive)

		require.ErrorIs(t, st.Users().SetActive(ctx, "missing", true), store.ErrNotFound)
	})
}

func TestUsers_RefreshTokenCompareAndSwap(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, st, "cas@example.com", domain.RoleUser)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	require.NoError(t, st.Users().SetRefreshToken(ctx, u.ID, "h1", exp))

	ok, err := st.Users().SwapRefreshToken(ctx, u.ID, "stale", "h2", exp)
	require.NoError(t, err)
	require.False(t, ok, "swap from a stale hash must not apply")

	ok, err = st.Users().SwapRefreshToken(ctx, u.ID, "h1", "h2", exp)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.Users().SwapRefreshToken(ctx, u.ID, "h1", "h3", exp)
	require.NoError(t, err)
	require.False(t, ok, "second swap from the same hash must fail")

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "h2", got.RefreshTokenHash)
	require.NotNil(t, got.RefreshTokenExpiresAt)
	require.True(t, exp.Equal(*got.RefreshTokenExpiresAt))

	ok, err = st.Users().ClearRefreshToken(ctx, u.ID, "h1")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = st.Users().ClearRefreshToken(ctx, u.ID, "h2")
	require.NoError(t, err)
	require.True(t, ok)

	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, got.RefreshTokenHash)

	ok, err = st.Users().SwapRefreshToken(ctx, u.ID, "", "h4", exp)
	require.NoError(t, err)
	require.False(t, ok, "an empty slot can't be swapped")
}

func TestUsers_ConcurrentSwapHasOneWinner(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, st, "race@example.com", domain.RoleUser)
	exp := time.Now().Add(time.Hour)

	require.NoError(t, st.Users().SetRefreshToken(ctx, u.ID, "seed", exp))

	const workers = 8
	var wins atomic.Int32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := st.Users().SwapRefreshToken(ctx, u.ID, "seed", fmt.Sprintf("next-%d", i), exp)
			if err != nil {
				errs <- err
				return
			}
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, wins.Load())
}

func TestUsers_ClearExpiredRefreshTokens(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	stale := createUser(t, st, "stale@example.com", domain.RoleUser)
	fresh := createUser(t, st, "fresh@example.com", domain.RoleUser)
	require.NoError(t, st.Users().SetRefreshToken(ctx, stale.ID, "old", now.Add(-time.Minute)))
	require.NoError(t, st.Users().SetRefreshToken(ctx, fresh.ID, "new", now.Add(time.Hour)))

	n, err := st.Users().ClearExpiredRefreshTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := st.Users().GetUserByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, "new", got.RefreshTokenHash)
}

func TestRoles_Lifecycle(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	perm, err := st.Permissions().GetPermissionByName(ctx, domain.PermGetMarketData)
	require.NoError(t, err)

	role := domain.Role{ID: idx.New().String(), Name: "ANALYST"}
	err = st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Roles().CreateRole(ctx, role); err != nil {
			return err
		}
		return tx.Roles().SetRolePermissions(ctx, role.ID, []string{perm.ID})
	})
	require.NoError(t, err)

	got, err := st.Roles().GetRoleWithPermissions(ctx, "ANALYST")
	require.NoError(t, err)
	require.Equal(t, []string{domain.PermGetMarketData}, got.PermissionNames())

	require.ErrorIs(t, st.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: "ANALYST"}), store.ErrAlreadyExists)

	roles, err := st.Roles().ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)

	// A role in use can't be removed
	user := createUser(t, st, "analyst@example.com", "ANALYST")
	require.ErrorIs(t, st.Roles().DeleteRole(ctx, role.ID), store.ErrInUse)

	require.NoError(t, st.Users().DeleteUser(ctx, user.ID))
	require.NoError(t, st.Roles().DeleteRole(ctx, role.ID))
	_, err = st.Roles().GetRoleByName(ctx, "ANALYST")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	boom := context.Canceled
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Permissions().CreatePermission(ctx, domain.Permission{ID: idx.New().String(), Name: "TEMP"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Permissions().GetPermissionByName(ctx, "TEMP")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPermissions_RenameAndDelete(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	p := domain.Permission{ID: idx.New().String(), Name: "EXPORT_DATA"}
	require.NoError(t, st.Permissions().CreatePermission(ctx, p))
	require.ErrorIs(t, st.Permissions().CreatePermission(ctx, domain.Permission{ID: idx.New().String(), Name: "EXPORT_DATA"}), store.ErrAlreadyExists)

	require.NoError(t, st.Permissions().RenamePermission(ctx, p.ID, "EXPORT_ALL"))
	got, err := st.Permissions().GetPermissionByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "EXPORT_ALL", got.Name)

	require.NoError(t, st.Permissions().DeletePermission(ctx, p.ID))
	require.ErrorIs(t, st.Permissions().DeletePermission(ctx, p.ID), store.ErrNotFound)
}
