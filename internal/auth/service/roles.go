package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/store"
	"github.com/aussiebroadwan/marketauth/pkg/idx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

type RolesService struct {
	Store store.Store
}

type RoleInput struct {
	Name        string   `json:"name" validate:"required,max=64,constname"`
	Permissions []string `json:"permissions" validate:"dive,required,constname"`
}

type RolePermissionsInput struct {
	Permissions []string `json:"permissions" validate:"dive,required,constname"`
}

// ListAll returns every role with its permissions.
func (s *RolesService) ListAll(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx)
}

// Get returns a role and its permissions.
func (s *RolesService) Get(ctx context.Context, name string) (domain.Role, error) {
	r, err := s.Store.Roles().GetRoleWithPermissions(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrRoleNotFound
	}
	return r, err
}

// Create adds a role granting the named permissions.
func (s *RolesService) Create(ctx context.Context, in RoleInput) (domain.Role, error) {
	if err := validateStruct(in, "Invalid role."); err != nil {
		return domain.Role{}, err
	}

	var created domain.Role
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ids, err := permissionIDs(ctx, tx, in.Permissions)
		if err != nil {
			return err
		}

		r := domain.Role{ID: idx.New().String(), Name: in.Name}
		if err := tx.Roles().CreateRole(ctx, r); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyExists
			}
			return err
		}
		if err := tx.Roles().SetRolePermissions(ctx, r.ID, ids); err != nil {
			return err
		}

		created, err = tx.Roles().GetRoleWithPermissions(ctx, r.Name)
		return err
	})
	if err != nil {
		return domain.Role{}, err
	}

	slogx.FromContext(ctx).Info("role created", slog.String("role", created.Name), slog.Int("permissions", len(created.Permissions)))
	return created, nil
}

// SetPermissions replaces the permissions granted by role.
func (s *RolesService) SetPermissions(ctx context.Context, name string, in RolePermissionsInput) (domain.Role, error) {
	if err := validateStruct(in, "Invalid permissions."); err != nil {
		return domain.Role{}, err
	}

	var updated domain.Role
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		r, err := tx.Roles().GetRoleByName(ctx, name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotFound
			}
			return err
		}

		ids, err := permissionIDs(ctx, tx, in.Permissions)
		if err != nil {
			return err
		}
		if err := tx.Roles().SetRolePermissions(ctx, r.ID, ids); err != nil {
			return err
		}

		updated, err = tx.Roles().GetRoleWithPermissions(ctx, name)
		return err
	})
	if err != nil {
		return domain.Role{}, err
	}

	slogx.FromContext(ctx).Info("role permissions replaced", slog.String("role", name), slog.Any("permissions", updated.PermissionNames()))
	return updated, nil
}

// Delete removes a role nobody holds. The built-in roles cannot be deleted.
func (s *RolesService) Delete(ctx context.Context, name string) error {
	if name == domain.RoleAdmin || name == domain.RoleUser {
		return ErrBuiltinRole
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		r, err := tx.Roles().GetRoleByName(ctx, name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotFound
			}
			return err
		}
		if err := tx.Roles().DeleteRole(ctx, r.ID); err != nil {
			if errors.Is(err, store.ErrInUse) {
				return ErrRoleInUse
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("role deleted", slog.String("role", name))
	return nil
}

// permissionIDs resolves permission names to ids, failing on the first
// unknown name. Duplicates are collapsed.
func permissionIDs(ctx context.Context, tx store.Tx, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, n := range names {
		p, err := tx.Permissions().GetPermissionByName(ctx, n)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrPermissionNotFound, n)
			}
			return nil, err
		}
		if !slices.Contains(ids, p.ID) {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}
