package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/store"
	"github.com/aussiebroadwan/marketauth/pkg/idx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

type PermissionsService struct {
	Store store.Store
}

type PermissionInput struct {
	Name string `json:"name" validate:"required,max=64,constname"`
}

func (s *PermissionsService) ListAll(ctx context.Context) ([]domain.Permission, error) {
	return s.Store.Permissions().ListPermissions(ctx)
}

func (s *PermissionsService) Get(ctx context.Context, id string) (domain.Permission, error) {
	p, err := s.Store.Permissions().GetPermissionByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Permission{}, ErrPermissionNotFound
	}
	return p, err
}

func (s *PermissionsService) Create(ctx context.Context, in PermissionInput) (domain.Permission, error) {
	if err := validateStruct(in, "Invalid permission."); err != nil {
		return domain.Permission{}, err
	}

	p := domain.Permission{ID: idx.New().String(), Name: in.Name}
	if err := s.Store.Permissions().CreatePermission(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Permission{}, ErrAlreadyExists
		}
		return domain.Permission{}, err
	}

	slogx.FromContext(ctx).Info("permission created", slog.String("permission", p.Name))
	return s.Get(ctx, p.ID)
}

// Rename changes a permission's name. Roles granting it keep it.
func (s *PermissionsService) Rename(ctx context.Context, id string, in PermissionInput) (domain.Permission, error) {
	if err := validateStruct(in, "Invalid permission."); err != nil {
		return domain.Permission{}, err
	}

	if err := s.Store.Permissions().RenamePermission(ctx, id, in.Name); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.Permission{}, ErrPermissionNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.Permission{}, ErrAlreadyExists
		}
		return domain.Permission{}, err
	}

	slogx.FromContext(ctx).Info("permission renamed", slog.String("permission_id", id), slog.String("name", in.Name))
	return s.Get(ctx, id)
}

// Delete removes a permission and revokes it from every role.
func (s *PermissionsService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Permissions().DeletePermission(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPermissionNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("permission deleted", slog.String("permission_id", id))
	return nil
}
