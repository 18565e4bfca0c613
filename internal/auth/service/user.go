package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/store"
	"github.com/aussiebroadwan/marketauth/pkg/cryptox"
	"github.com/aussiebroadwan/marketauth/pkg/idx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

type UserService struct {
	Store store.Store

	// RequireActiveAccount makes self-registered accounts start inactive.
	RequireActiveAccount bool
}

type SignupInput struct {
	Username  string `json:"username" validate:"required,min=8,max=24"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=64"`
	LastName  string `json:"lastName" validate:"required,max=64"`
	Password  string `json:"password" validate:"required,min=8,max=16,strongpassword"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=16,strongpassword"`
}

// Signup registers a USER account.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (domain.Profile, error) {
	return s.CreateUser(ctx, in, domain.RoleUser, !s.RequireActiveAccount)
}

// CreateUser registers an account with the given role. It backs both Signup
// and the administrative seeding commands.
func (s *UserService) CreateUser(ctx context.Context, in SignupInput, roleName string, active bool) (domain.Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validateStruct(in, "Invalid signup details."); err != nil {
		return domain.Profile{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	var created domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotFound
			}
			return err
		}

		now := time.Now().UTC()
		u := domain.User{
			ID:           idx.New().String(),
			Username:     in.Username,
			Email:        in.Email,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			PasswordHash: hash,
			RoleID:       role.ID,
			IsActive:     active,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyExists
			}
			return err
		}

		created, err = tx.Users().GetUserByID(ctx, u.ID)
		return err
	})
	if err != nil {
		return domain.Profile{}, err
	}

	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", created.ID),
		slog.String("role", created.RoleName),
		slog.Bool("active", created.IsActive),
	)
	return created.Profile(), nil
}

// GetProfile fetches the public view of a user.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrUserNotFound
		}
		return domain.Profile{}, err
	}
	return u.Profile(), nil
}

// ListUsers returns every account, oldest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

// DeleteUser removes an account and with it the user's refresh token. An
// access token already issued stays verifiable until it expires, but every
// lookup of the account fails from now on.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("user deleted", slog.String("user_id", userID))
	return nil
}

// FindByEmail looks a user up by email, case-insensitively.
func (s *UserService) FindByEmail(ctx context.Context, email string) (domain.Profile, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrUserNotFound
		}
		return domain.Profile{}, err
	}
	return u.Profile(), nil
}

// SetActive activates or deactivates an account. Deactivating also revokes
// the user's refresh token.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) (domain.Profile, error) {
	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetActive(ctx, userID, active); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if !active {
			if err := tx.Users().RevokeRefreshToken(ctx, userID); err != nil {
				return err
			}
		}
		var err error
		updated, err = tx.Users().GetUserByID(ctx, userID)
		return err
	})
	if err != nil {
		return domain.Profile{}, err
	}

	slogx.FromContext(ctx).Info("user activation changed", slog.String("user_id", userID), slog.Bool("active", active))
	return updated.Profile(), nil
}

// ChangePassword replaces the user's password after checking the current one.
// The user's session is revoked; they must log in again.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := validateStruct(in, "Invalid password change."); err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := cryptox.VerifyPassword(in.CurrentPassword, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("verify password: %w", err)
	}

	hash, err := cryptox.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		return tx.Users().RevokeRefreshToken(ctx, userID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", userID))
	return nil
}
