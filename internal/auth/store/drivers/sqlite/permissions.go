package sqlite

import (
	"context"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/store"
)

type permissionsRepo struct {
	db dbtx
}

func scanPermission(row scanner) (domain.Permission, error) {
	var p domain.Permission
	if err := row.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return p, nil
}

func (r *permissionsRepo) GetPermissionByID(ctx context.Context, id string) (domain.Permission, error) {
	return scanPermission(r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM permissions WHERE id = ?`, id))
}

func (r *permissionsRepo) GetPermissionByName(ctx context.Context, name string) (domain.Permission, error) {
	return scanPermission(r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM permissions WHERE name = ?`, name))
}

func (r *permissionsRepo) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *permissionsRepo) CreatePermission(ctx context.Context, p domain.Permission) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO permissions (id, name) VALUES (?, ?)`, p.ID, p.Name)
	return mapConstraint(err)
}

func (r *permissionsRepo) RenamePermission(ctx context.Context, id, name string) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE permissions SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, name, id))
}

func (r *permissionsRepo) DeletePermission(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM permissions WHERE id = ?`, id))
}

var _ store.Permissions = (*permissionsRepo)(nil)
