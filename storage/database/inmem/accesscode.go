package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/alama/core/accesscode"
)

type accessCodeRepository struct {
	db *DB
}

func NewAccessCodeRepository(db *DB) accesscode.Repository {
	return &accessCodeRepository{db: db}
}

func (repo *accessCodeRepository) ReplaceCodes(_ context.Context, ac accesscode.AccessCode) (accesscode.AccessCode, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, c := range repo.db.codes {
		if c.TeacherID == ac.TeacherID {
			delete(repo.db.codes, id)
		}
	}
	ac.ID = repo.db.nextID()
	repo.db.codes[ac.ID] = &ac
	return ac, nil
}

// latestFirst orders codes by creation time then id, most recent first.
func latestFirst(codes []accesscode.AccessCode) {
	sort.Slice(codes, func(i, j int) bool {
		if !codes[i].CreatedAt.Equal(codes[j].CreatedAt) {
			return codes[i].CreatedAt.After(codes[j].CreatedAt)
		}
		return codes[i].ID > codes[j].ID
	})
}

func (repo *accessCodeRepository) GetLatestByCode(_ context.Context, code string) (accesscode.AccessCode, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var found []accesscode.AccessCode
	for _, c := range repo.db.codes {
		if c.Code == code {
			found = append(found, *c)
		}
	}
	if len(found) == 0 {
		return accesscode.AccessCode{}, accesscode.ErrNotFound
	}
	latestFirst(found)
	return found[0], nil
}

func (repo *accessCodeRepository) ListRecentCodes(_ context.Context, teacherID string, limit int) ([]accesscode.AccessCode, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	codes := make([]accesscode.AccessCode, 0)
	for _, c := range repo.db.codes {
		if c.TeacherID == teacherID {
			codes = append(codes, *c)
		}
	}
	latestFirst(codes)
	if limit > 0 && len(codes) > limit {
		codes = codes[:limit]
	}
	return codes, nil
}

// InsertAccessCode stores a code without replacing the teacher's other codes.
// Lets tests seed expired or historical codes.
func (db *DB) InsertAccessCode(ac accesscode.AccessCode) accesscode.AccessCode {
	db.mu.Lock()
	defer db.mu.Unlock()

	ac.ID = db.nextID()
	db.codes[ac.ID] = &ac
	return ac
}
