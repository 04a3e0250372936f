package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/accesscode"
	"github.com/trezcool/alama/core/school"
)

const codeColumns = "id, teacher_id, code, created_at"

type accessCodeRepository struct {
	db core.DB
}

// NewAccessCodeRepository needs a core.DB rather than an executor: replacing codes runs
// in its own transaction.
func NewAccessCodeRepository(db core.DB) accesscode.Repository {
	return &accessCodeRepository{db: db}
}

func (repo *accessCodeRepository) ReplaceCodes(ctx context.Context, ac accesscode.AccessCode) (_ accesscode.AccessCode, err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return accesscode.AccessCode{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// concurrent rotations of the same teacher's code wait on the teacher row,
	// so that exactly one code survives
	var teacherID string
	err = sqlx.GetContext(ctx, tx, &teacherID, `SELECT id FROM teachers WHERE id = $1 FOR UPDATE`, ac.TeacherID)
	if err != nil {
		return accesscode.AccessCode{}, mapErr(err, school.ErrTeacherNotFound, "locking teacher")
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM access_codes WHERE teacher_id = $1`, ac.TeacherID); err != nil {
		return accesscode.AccessCode{}, errors.Wrap(err, "deleting access codes")
	}
	err = sqlx.GetContext(
		ctx, tx, &ac.ID,
		`INSERT INTO access_codes (teacher_id, code, created_at) VALUES ($1, $2, $3) RETURNING id`,
		ac.TeacherID, ac.Code, ac.CreatedAt,
	)
	if err != nil {
		return accesscode.AccessCode{}, errors.Wrap(err, "inserting access code")
	}
	if err = tx.Commit(); err != nil {
		return accesscode.AccessCode{}, errors.Wrap(err, "committing access code")
	}
	return ac, nil
}

func (repo *accessCodeRepository) GetLatestByCode(ctx context.Context, code string) (accesscode.AccessCode, error) {
	var ac accesscode.AccessCode
	err := sqlx.GetContext(
		ctx, repo.db, &ac,
		`SELECT `+codeColumns+` FROM access_codes WHERE code = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		code,
	)
	return ac, mapErr(err, accesscode.ErrNotFound, "selecting access code")
}

func (repo *accessCodeRepository) ListRecentCodes(ctx context.Context, teacherID string, limit int) ([]accesscode.AccessCode, error) {
	codes := make([]accesscode.AccessCode, 0, limit)
	err := sqlx.SelectContext(
		ctx, repo.db, &codes,
		`SELECT `+codeColumns+` FROM access_codes WHERE teacher_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		teacherID, limit,
	)
	return codes, errors.Wrap(err, "selecting access codes")
}
