package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

const adminColumns = "id, username, password_hash, created_at, last_login"

type adminRepository struct {
	db core.DBExecutor
}

func NewAdminRepository(db core.DBExecutor) user.Repository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, adm user.Admin) (user.Admin, error) {
	if adm.ID == "" {
		adm.ID = uuid.New().String()
	}
	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO admins (id, username, password_hash, created_at, last_login) VALUES ($1, $2, $3, $4, $5)`,
		adm.ID, adm.Username, adm.PasswordHash, adm.CreatedAt, adm.LastLogin,
	)
	if err != nil {
		if isPQError(err, pqUniqueViolation) {
			return user.Admin{}, user.ErrUsernameExists
		}
		return user.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return adm, nil
}

func (repo *adminRepository) GetAdminByID(ctx context.Context, id string) (user.Admin, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.Admin{}, user.ErrNotFound
	}
	var adm user.Admin
	err := sqlx.GetContext(ctx, repo.db, &adm, "SELECT "+adminColumns+" FROM admins WHERE id = $1", id)
	return adm, mapErr(err, user.ErrNotFound, "selecting admin")
}

func (repo *adminRepository) GetAdminByUsername(ctx context.Context, username string) (user.Admin, error) {
	var adm user.Admin
	err := sqlx.GetContext(ctx, repo.db, &adm, "SELECT "+adminColumns+" FROM admins WHERE username = $1", username)
	return adm, mapErr(err, user.ErrNotFound, "selecting admin")
}

func (repo *adminRepository) UpdateAdmin(ctx context.Context, adm user.Admin) (user.Admin, error) {
	var updated user.Admin
	err := sqlx.GetContext(
		ctx, repo.db, &updated,
		`UPDATE admins SET password_hash = COALESCE($2, password_hash), last_login = $3
		 WHERE id = $1 RETURNING `+adminColumns,
		adm.ID, adm.PasswordHash, adm.LastLogin,
	)
	return updated, mapErr(err, user.ErrNotFound, "updating admin")
}
