package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/store"
	"github.com/aussiebroadwan/marketauth/pkg/cryptox"
	"github.com/aussiebroadwan/marketauth/pkg/jwtx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

// SessionService issues and rotates the access/refresh token pair. Each user
// holds at most one redeemable refresh token; it is stored as a fingerprint
// and replaced atomically on every refresh.
type SessionService struct {
	Store      store.Store
	Codec      *jwtx.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// RequireActiveAccount rejects logins for users that were never
	// activated by an administrator.
	RequireActiveAccount bool

	// Now defaults to time.Now.
	Now func() time.Time
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login checks credentials and starts a new session. Any refresh token the
// user held before is overwritten and can no longer be redeemed.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in, "All fields are required."); err != nil {
		return nil, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same hashing work so unknown emails are not
			// distinguishable by response time.
			burnPasswordCheck(in.Password)
			l.Warn("login failed", slog.String("reason", "unknown_email"))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(in.Password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Warn("login failed", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if s.RequireActiveAccount && !user.IsActive {
		l.Info("login refused for inactive account", slog.String("user_id", user.ID))
		return nil, ErrAccountInactive
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.Store.Users().SetRefreshToken(ctx, user.ID, cryptox.FingerprintToken(pair.RefreshToken), pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if cryptox.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, in.Password)
	}

	l.Info("login succeeded", slog.String("user_id", user.ID), slog.String("role", user.RoleName))
	return pair, nil
}

// Refresh redeems a refresh token for a new pair. The presented token must be
// the one currently stored for its user; after a successful call it is dead.
// Of two concurrent calls with the same token exactly one succeeds.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	claims, err := s.Codec.Verify(refreshToken, jwtx.TypeRefresh)
	if err != nil {
		l.Info("refresh token rejected", slog.String("error", err.Error()))
		return nil, ErrRefreshTokenInvalid
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, err
	}

	presented := cryptox.FingerprintToken(refreshToken)
	if user.RefreshTokenHash == "" || !cryptox.Equal(user.RefreshTokenHash, presented) {
		l.Warn("refresh token is not the current one", slog.String("user_id", user.ID))
		return nil, ErrRefreshTokenInvalid
	}

	if s.RequireActiveAccount && !user.IsActive {
		if err := s.Store.Users().RevokeRefreshToken(ctx, user.ID); err != nil {
			l.Error("failed to revoke refresh token of inactive user", slog.Any("error", err))
		}
		return nil, ErrRefreshTokenInvalid
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	swapped, err := s.Store.Users().SwapRefreshToken(ctx, user.ID, presented, cryptox.FingerprintToken(pair.RefreshToken), pair.RefreshExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !swapped {
		l.Warn("refresh token rotated concurrently", slog.String("user_id", user.ID))
		return nil, ErrRefreshTokenInvalid
	}

	return pair, nil
}

// Logout ends the session the refresh token belongs to. Tokens that are
// unparseable or no longer current are ignored so logout always succeeds from
// the caller's point of view; only storage failures are returned.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	// An expired token cannot be redeemed anyway; housekeeping clears it.
	claims, err := s.Codec.Verify(refreshToken, jwtx.TypeRefresh)
	if err != nil {
		return nil
	}

	cleared, err := s.Store.Users().ClearRefreshToken(ctx, claims.UserID, cryptox.FingerprintToken(refreshToken))
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	slogx.FromContext(ctx).Info("logout", slog.String("user_id", claims.UserID), slog.Bool("session_cleared", cleared))
	return nil
}

// Authenticate verifies an access token and returns who it belongs to.
func (s *SessionService) Authenticate(accessToken string) (domain.Principal, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return domain.Principal{}, ErrNoAccessToken
	}

	claims, err := s.Codec.Verify(accessToken, jwtx.TypeAccess)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.Principal{}, ErrAccessTokenExpired
		}
		return domain.Principal{}, ErrAccessTokenInvalid
	}

	return domain.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// WhoAmI returns the profile of the access token's owner.
func (s *SessionService) WhoAmI(ctx context.Context, accessToken string) (domain.Profile, error) {
	p, err := s.Authenticate(accessToken)
	if err != nil {
		return domain.Profile{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrUserNotFound
		}
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

// IsLoggedIn reports whether accessToken is currently valid. It never fails.
func (s *SessionService) IsLoggedIn(accessToken string) bool {
	_, err := s.Authenticate(accessToken)
	return err == nil
}

func (s *SessionService) issuePair(user domain.User) (*domain.TokenPair, error) {
	now := s.now()

	access, err := s.Codec.Issue(jwtx.NewClaims(jwtx.TypeAccess, user.ID, user.Email, user.RoleName), s.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Codec.Issue(jwtx.NewClaims(jwtx.TypeRefresh, user.ID, user.Email, user.RoleName), s.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(s.AccessTTL),
		RefreshExpiresAt: now.Add(s.RefreshTTL),
	}, nil
}

func (s *SessionService) rehash(ctx context.Context, userID, password string) {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("password rehash failed", slog.Any("error", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		l.Error("password rehash failed", slog.Any("error", err))
		return
	}
	l.Info("upgraded legacy password hash", slog.String("user_id", userID))
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = cryptox.HashPassword("not-a-real-password")
	})
	if dummyHash != "" {
		_ = cryptox.VerifyPassword(password, dummyHash)
	}
}
