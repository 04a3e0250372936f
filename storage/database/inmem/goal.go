package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/alama/core/goal"
)

type goalRepository struct {
	db *DB
}

func NewGoalRepository(db *DB) goal.Repository {
	return &goalRepository{db: db}
}

func (repo *goalRepository) UpsertGoal(_ context.Context, g goal.Goal) (goal.Goal, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.goals[goalKey{studentID: g.StudentID, subjectID: g.SubjectID}] = &g
	return g, nil
}

func (repo *goalRepository) ListStudentGoals(_ context.Context, studentID string) ([]goal.Goal, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	goals := make([]goal.Goal, 0)
	for key, g := range repo.db.goals {
		if key.studentID == studentID {
			goals = append(goals, *g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].SubjectID < goals[j].SubjectID })
	return goals, nil
}
