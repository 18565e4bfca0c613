package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrInUse         = errors.New("store: still referenced")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable, and so a
// Tx can hand out the same repos bound to the transaction.
type Store interface {
	Users() Users
	Roles() Roles
	Permissions() Permissions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id, with RoleName populated.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login. Matching is case-insensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns all users ordered by creation date.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user. Email and username are unique.
	CreateUser(ctx context.Context, u domain.User) error

	// SetActive flips the activation flag.
	SetActive(ctx context.Context, userID string, active bool) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// DeleteUser removes a user.
	DeleteUser(ctx context.Context, userID string) error

	// SetRefreshToken unconditionally replaces the user's current refresh
	// token. Login uses it; whatever session existed before is gone.
	SetRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// SwapRefreshToken replaces the current refresh token only if it still
	// equals oldHash. It reports false when another writer got there first.
	SwapRefreshToken(ctx context.Context, userID, oldHash, newHash string, expiresAt time.Time) (bool, error)

	// ClearRefreshToken empties the current refresh token only if it still
	// equals tokenHash.
	ClearRefreshToken(ctx context.Context, userID, tokenHash string) (bool, error)

	// RevokeRefreshToken empties the current refresh token whatever it is.
	RevokeRefreshToken(ctx context.Context, userID string) error

	// ClearExpiredRefreshTokens empties refresh tokens that expired before
	// now and returns how many were cleared.
	ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

type Roles interface {
	// GetRoleByName returns the role without permissions.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// GetRoleWithPermissions returns the role and its permissions.
	GetRoleWithPermissions(ctx context.Context, name string) (domain.Role, error)

	// ListRoles returns every role with permissions, ordered by name.
	ListRoles(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a role. Permissions on r are ignored; use
	// SetRolePermissions in the same transaction.
	CreateRole(ctx context.Context, r domain.Role) error

	// SetRolePermissions replaces the role's permission set with permissionIDs.
	SetRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error

	// DeleteRole removes a role. Fails while users still reference it.
	DeleteRole(ctx context.Context, roleID string) error
}

type Permissions interface {
	GetPermissionByID(ctx context.Context, id string) (domain.Permission, error)
	GetPermissionByName(ctx context.Context, name string) (domain.Permission, error)

	// ListPermissions returns all permissions ordered by name.
	ListPermissions(ctx context.Context) ([]domain.Permission, error)

	CreatePermission(ctx context.Context, p domain.Permission) error

	// RenamePermission changes the name; role assignments follow the id.
	RenamePermission(ctx context.Context, id, name string) error

	// DeletePermission removes the permission and its role assignments.
	DeletePermission(ctx context.Context, id string) error
}
