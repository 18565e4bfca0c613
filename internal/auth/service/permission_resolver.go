package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/store"
)

// PermissionResolver maps a role name to the permissions it grants. It reads
// the store on every call so role edits apply to the next request.
type PermissionResolver struct {
	Store store.Store
}

// Resolve returns the permission set of role, or ErrRoleNotFound.
func (r *PermissionResolver) Resolve(ctx context.Context, role string) (domain.PermissionSet, error) {
	if role == "" {
		return nil, ErrRoleNotFound
	}

	rl, err := r.Store.Roles().GetRoleWithPermissions(ctx, role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return domain.NewPermissionSet(rl.PermissionNames()...), nil
}
