package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"dentadmin/internal/models"
)

var ErrAdminNotFound = errors.New("admin not found")

type AdminRepository struct {
	db DB
}

func NewAdminRepository(db DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindByLoginID(ctx context.Context, loginID string) (models.Admin, error) {
	const query = `
		SELECT id, login_id, password_hash, name, is_super, organization_id, first_login, created_at, updated_at
		FROM admins WHERE login_id = $1
	`

	row := r.db.QueryRow(ctx, query, loginID)
	return scanAdmin(row)
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (models.Admin, error) {
	const query = `
		SELECT id, login_id, password_hash, name, is_super, organization_id, first_login, created_at, updated_at
		FROM admins WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	return scanAdmin(row)
}

// BindOrganization attaches a freshly registered organization to the admin and
// clears the first-login flag in the same statement.
func (r *AdminRepository) BindOrganization(ctx context.Context, adminID int64, organizationID int64) error {
	const query = `
		UPDATE admins
		SET organization_id = $2, first_login = FALSE, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, adminID, organizationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func scanAdmin(row pgx.Row) (models.Admin, error) {
	var admin models.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.LoginID,
		&admin.PasswordHash,
		&admin.Name,
		&admin.IsSuper,
		&admin.OrganizationID,
		&admin.FirstLogin,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, ErrAdminNotFound
		}
		return models.Admin{}, err
	}
	return admin, nil
}
