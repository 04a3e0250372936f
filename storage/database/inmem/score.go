package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/alama/core/score"
)

type scoreRepository struct {
	db *DB
}

func NewScoreRepository(db *DB) score.Repository {
	return &scoreRepository{db: db}
}

func (repo *scoreRepository) CreateScore(_ context.Context, sc score.Score) (score.Score, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sc.ID = repo.db.nextID()
	if sub, ok := repo.db.subjects[sc.SubjectID]; ok {
		sc.SubjectName = sub.Name
	}
	repo.db.scores[sc.ID] = &sc
	return sc, nil
}

func (repo *scoreRepository) DeleteScore(_ context.Context, teacherID string, id int64) (bool, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sc, ok := repo.db.scores[id]
	if !ok || sc.TeacherID != teacherID {
		return false, nil
	}
	delete(repo.db.scores, id)
	return true, nil
}

func (repo *scoreRepository) filter(keep func(sc *score.Score) bool) []score.Score {
	scores := make([]score.Score, 0)
	for _, sc := range repo.db.scores {
		if keep(sc) {
			s := *sc
			if sub, ok := repo.db.subjects[s.SubjectID]; ok {
				s.SubjectName = sub.Name
			}
			scores = append(scores, s)
		}
	}
	return scores
}

// bySubjectAndDate orders scores by subject name, then date, then id.
func bySubjectAndDate(scores []score.Score) {
	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.SubjectName != b.SubjectName {
			return a.SubjectName < b.SubjectName
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
}

func (repo *scoreRepository) ListStudentScores(_ context.Context, studentID string) ([]score.Score, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	scores := repo.filter(func(sc *score.Score) bool { return sc.StudentID == studentID })
	bySubjectAndDate(scores)
	return scores, nil
}

func (repo *scoreRepository) ListTeacherScores(_ context.Context, teacherID string) ([]score.Score, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	scores := repo.filter(func(sc *score.Score) bool { return sc.TeacherID == teacherID })
	bySubjectAndDate(scores)
	return scores, nil
}

func (repo *scoreRepository) ListTeacherScoresSince(_ context.Context, teacherID string, since time.Time) ([]score.Score, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	scores := repo.filter(func(sc *score.Score) bool {
		return sc.TeacherID == teacherID && !sc.Date.Before(since)
	})
	sort.Slice(scores, func(i, j int) bool {
		if !scores[i].Date.Equal(scores[j].Date) {
			return scores[i].Date.After(scores[j].Date)
		}
		return scores[i].ID > scores[j].ID
	})
	return scores, nil
}
