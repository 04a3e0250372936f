// Package inmemdb implements the repositories in memory. Used by tests and by the API
// when no database is configured.
package inmemdb

import (
	"sync"

	"github.com/trezcool/alama/core/accesscode"
	"github.com/trezcool/alama/core/goal"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
)

type goalKey struct {
	studentID string
	subjectID int64
}

// DB holds every table behind a single lock so that joins see a consistent state.
type DB struct {
	mu sync.RWMutex

	admins   map[string]*user.Admin
	schools  map[string]*school.School
	teachers map[string]*school.Teacher
	students map[string]*school.Student
	subjects map[int64]*school.Subject
	scores   map[int64]*score.Score
	goals    map[goalKey]*goal.Goal
	codes    map[int64]*accesscode.AccessCode

	seq int64
}

func Open() *DB {
	return &DB{
		admins:   make(map[string]*user.Admin),
		schools:  make(map[string]*school.School),
		teachers: make(map[string]*school.Teacher),
		students: make(map[string]*school.Student),
		subjects: make(map[int64]*school.Subject),
		scores:   make(map[int64]*score.Score),
		goals:    make(map[goalKey]*goal.Goal),
		codes:    make(map[int64]*accesscode.AccessCode),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}
