package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestPermissionResolver(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	set, err := f.resolver.Resolve(ctx, domain.RoleUser)
	require.NoError(t, err)
	require.True(t, set.Has(domain.PermGetLoggedInUser))
	require.False(t, set.Has(domain.PermCreateRole))
	require.Equal(t, []string{domain.PermCreateRole}, set.Missing(domain.PermGetLoggedInUser, domain.PermCreateRole))

	_, err = f.resolver.Resolve(ctx, "GHOST")
	require.ErrorIs(t, err, ErrRoleNotFound)

	_, err = f.resolver.Resolve(ctx, "")
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestPermissionResolver_SeesRoleEdits(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.roles.Create(ctx, RoleInput{Name: "ANALYST", Permissions: []string{domain.PermGetMarketData}})
	require.NoError(t, err)

	set, err := f.resolver.Resolve(ctx, "ANALYST")
	require.NoError(t, err)
	require.True(t, set.Has(domain.PermGetMarketData))

	_, err = f.roles.SetPermissions(ctx, "ANALYST", RolePermissionsInput{Permissions: []string{domain.PermGetAllCoins}})
	require.NoError(t, err)

	set, err = f.resolver.Resolve(ctx, "ANALYST")
	require.NoError(t, err)
	require.False(t, set.Has(domain.PermGetMarketData))
	require.True(t, set.Has(domain.PermGetAllCoins))
}

func TestRolesService_Create(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.roles.Create(ctx, RoleInput{
		Name:        "AUDITOR",
		Permissions: []string{domain.PermGetRoles, domain.PermGetPermissions, domain.PermGetRoles},
	})
	require.NoError(t, err)
	require.Equal(t, []string{domain.PermGetPermissions, domain.PermGetRoles}, r.PermissionNames())

	_, err = f.roles.Create(ctx, RoleInput{Name: "AUDITOR"})
	require.ErrorIs(t, err, ErrAlreadyExists)

	_, err = f.roles.Create(ctx, RoleInput{Name: "OTHER", Permissions: []string{"NOT_A_PERMISSION"}})
	require.ErrorIs(t, err, ErrPermissionNotFound)

	// Nothing was left behind by the failed transaction
	_, err = f.roles.Get(ctx, "OTHER")
	require.ErrorIs(t, err, ErrRoleNotFound)

	var verr *ValidationError
	_, err = f.roles.Create(ctx, RoleInput{Name: "lower-case"})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")
}

func TestRolesService_Delete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.roles.Delete(ctx, domain.RoleAdmin), ErrBuiltinRole)
	require.ErrorIs(t, f.roles.Delete(ctx, "GHOST"), ErrRoleNotFound)

	_, err := f.roles.Create(ctx, RoleInput{Name: "TRADER"})
	require.NoError(t, err)
	f.createActiveUser(t, "mia@example.com", "TRADER")

	require.ErrorIs(t, f.roles.Delete(ctx, "TRADER"), ErrRoleInUse)

	_, err = f.roles.Create(ctx, RoleInput{Name: "TEMP"})
	require.NoError(t, err)
	require.NoError(t, f.roles.Delete(ctx, "TEMP"))

	_, err = f.roles.Get(ctx, "TEMP")
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestPermissionsService(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.perms.Create(ctx, PermissionInput{Name: "EXPORT_REPORTS"})
	require.NoError(t, err)
	require.Equal(t, "EXPORT_REPORTS", p.Name)

	_, err = f.perms.Create(ctx, PermissionInput{Name: "EXPORT_REPORTS"})
	require.ErrorIs(t, err, ErrAlreadyExists)

	var verr *ValidationError
	_, err = f.perms.Create(ctx, PermissionInput{Name: "export reports"})
	require.ErrorAs(t, err, &verr)

	_, err = f.roles.Create(ctx, RoleInput{Name: "REPORTER", Permissions: []string{"EXPORT_REPORTS"}})
	require.NoError(t, err)

	renamed, err := f.perms.Rename(ctx, p.ID, PermissionInput{Name: "EXPORT_ALL_REPORTS"})
	require.NoError(t, err)
	require.Equal(t, "EXPORT_ALL_REPORTS", renamed.Name)

	set, err := f.resolver.Resolve(ctx, "REPORTER")
	require.NoError(t, err)
	require.True(t, set.Has("EXPORT_ALL_REPORTS"))

	_, err = f.perms.Rename(ctx, p.ID, PermissionInput{Name: domain.PermGetRoles})
	require.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, f.perms.Delete(ctx, p.ID))
	require.ErrorIs(t, f.perms.Delete(ctx, p.ID), ErrPermissionNotFound)

	set, err = f.resolver.Resolve(ctx, "REPORTER")
	require.NoError(t, err)
	require.Empty(t, set)

	_, err = f.perms.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrPermissionNotFound)
}
