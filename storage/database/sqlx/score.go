package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/score"
)

const scoreSelect = `
	SELECT sc.id, sc.student_id, sc.teacher_id, sc.subject_id, sub.name AS subject_name,
	       sc.date, sc.value, sc.possible, sc.actual, sc.created_at
	FROM scores sc
	JOIN subjects sub ON sub.id = sc.subject_id`

var bySubjectAndDate = []core.DBOrdering{
	{Field: "sub.name", Ascending: true},
	{Field: "sc.date", Ascending: true},
	{Field: "sc.id", Ascending: true},
}

func orderBy(orderings []core.DBOrdering) string {
	q := " ORDER BY "
	for i, ord := range orderings {
		if i > 0 {
			q += ", "
		}
		q += ord.String()
	}
	return q
}

type scoreRepository struct {
	db core.DBExecutor
}

func NewScoreRepository(db core.DBExecutor) score.Repository {
	return &scoreRepository{db: db}
}

func (repo *scoreRepository) CreateScore(ctx context.Context, sc score.Score) (score.Score, error) {
	err := sqlx.GetContext(
		ctx, repo.db, &sc.ID,
		`INSERT INTO scores (student_id, teacher_id, subject_id, date, value, possible, actual, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		sc.StudentID, sc.TeacherID, sc.SubjectID, sc.Date, sc.Value, sc.Possible, sc.Actual, sc.CreatedAt,
	)
	if err != nil {
		return score.Score{}, errors.Wrap(err, "inserting score")
	}
	return sc, nil
}

func (repo *scoreRepository) DeleteScore(ctx context.Context, teacherID string, id int64) (bool, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM scores WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return false, errors.Wrap(err, "deleting score")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting score")
	}
	return n > 0, nil
}

func (repo *scoreRepository) ListStudentScores(ctx context.Context, studentID string) ([]score.Score, error) {
	scores := make([]score.Score, 0)
	err := sqlx.SelectContext(ctx, repo.db, &scores, scoreSelect+` WHERE sc.student_id = $1`+orderBy(bySubjectAndDate), studentID)
	return scores, errors.Wrap(err, "selecting student scores")
}

func (repo *scoreRepository) ListTeacherScores(ctx context.Context, teacherID string) ([]score.Score, error) {
	scores := make([]score.Score, 0)
	err := sqlx.SelectContext(ctx, repo.db, &scores, scoreSelect+` WHERE sc.teacher_id = $1`+orderBy(bySubjectAndDate), teacherID)
	return scores, errors.Wrap(err, "selecting teacher scores")
}

func (repo *scoreRepository) ListTeacherScoresSince(ctx context.Context, teacherID string, since time.Time) ([]score.Score, error) {
	scores := make([]score.Score, 0)
	latest := []core.DBOrdering{{Field: "sc.date"}, {Field: "sc.id"}}
	err := sqlx.SelectContext(
		ctx, repo.db, &scores,
		scoreSelect+` WHERE sc.teacher_id = $1 AND sc.date >= $2`+orderBy(latest),
		teacherID, since,
	)
	return scores, errors.Wrap(err, "selecting recent scores")
}
