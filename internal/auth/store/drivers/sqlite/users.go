package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `
	u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
	u.role_id, r.name, u.is_active, u.refresh_token_hash, u.refresh_expires_at,
	u.created_at, u.updated_at
FROM users u
JOIN roles r ON r.id = u.role_id`

func scanUser(row scanner) (domain.User, error) {
	var (
		u         domain.User
		tokenHash sql.NullString
		expiresAt sql.NullInt64
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.RoleID, &u.RoleName, &u.IsActive, &tokenHash, &expiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.RefreshTokenHash = mapNullString(tokenHash)
	if expiresAt.Valid {
		t := time.Unix(expiresAt.Int64, 0).UTC()
		u.RefreshTokenExpiresAt = &t
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT`+userColumns+` WHERE u.id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	// email is declared COLLATE NOCASE so this comparison ignores case
	return scanUser(r.db.QueryRowContext(ctx, `SELECT`+userColumns+` WHERE u.email = ?`, email))
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT`+userColumns+` ORDER BY u.created_at, u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, role_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.RoleID, u.IsActive,
	)
	return mapConstraint(err)
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, userID,
	))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newHash, userID,
	))
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID))
}

func (r *usersRepo) SetRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token_hash = ?, refresh_expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		mapStringNull(tokenHash), expiresAt.Unix(), userID,
	))
}

// SwapRefreshToken is a single conditional UPDATE. sqlite serialises writers,
// so of two concurrent swaps from the same oldHash exactly one matches a row.
func (r *usersRepo) SwapRefreshToken(
	ctx context.Context,
	userID, oldHash, newHash string,
	expiresAt time.Time,
) (bool, error) {
	if oldHash == "" {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token_hash = ?, refresh_expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND refresh_token_hash = ?`,
		newHash, expiresAt.Unix(), userID, oldHash,
	)
	return swapped(res, err)
}

func (r *usersRepo) ClearRefreshToken(ctx context.Context, userID, tokenHash string) (bool, error) {
	if tokenHash == "" {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token_hash = NULL, refresh_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND refresh_token_hash = ?`,
		userID, tokenHash,
	)
	return swapped(res, err)
}

func (r *usersRepo) RevokeRefreshToken(ctx context.Context, userID string) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token_hash = NULL, refresh_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		userID,
	))
}

func (r *usersRepo) ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token_hash = NULL, refresh_expires_at = NULL
		WHERE refresh_token_hash IS NOT NULL AND refresh_expires_at < ?`,
		now.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func swapped(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

var _ store.Users = (*usersRepo)(nil)
