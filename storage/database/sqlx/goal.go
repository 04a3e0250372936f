package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/goal"
)

type goalRepository struct {
	db core.DBExecutor
}

func NewGoalRepository(db core.DBExecutor) goal.Repository {
	return &goalRepository{db: db}
}

func (repo *goalRepository) UpsertGoal(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	var saved goal.Goal
	err := sqlx.GetContext(
		ctx, repo.db, &saved,
		`INSERT INTO goals (student_id, subject_id, target, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (student_id, subject_id) DO UPDATE SET target = EXCLUDED.target, updated_at = EXCLUDED.updated_at
		 RETURNING student_id, subject_id, target, updated_at`,
		g.StudentID, g.SubjectID, g.Target, g.UpdatedAt,
	)
	return saved, errors.Wrap(err, "upserting goal")
}

func (repo *goalRepository) ListStudentGoals(ctx context.Context, studentID string) ([]goal.Goal, error) {
	goals := make([]goal.Goal, 0)
	err := sqlx.SelectContext(
		ctx, repo.db, &goals,
		`SELECT student_id, subject_id, target, updated_at FROM goals WHERE student_id = $1 ORDER BY subject_id`,
		studentID,
	)
	return goals, errors.Wrap(err, "selecting goals")
}
