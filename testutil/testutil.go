// Package testutil holds the fixtures shared by the tests.
package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
	appfs "github.com/trezcool/alama/fs"
)

// StrongPassword satisfies the password policy.
const StrongPassword = "Tr0ub4dor&3x"

// NewValidate returns a validator with every package's validations registered.
func NewValidate() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := core.NewValidate(translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(appfs.FS, NopLogger{})
	school.InitValidators(validate)
	score.InitValidators(validate, translator)
	return validate, translator
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func CreateSchool(t *testing.T, repo school.Repository, id, name string) school.School {
	sch, err := repo.CreateSchool(context.Background(), school.School{ID: id, Name: name})
	if err != nil {
		t.Fatalf("CreateSchool() failed: %v", err)
	}
	return sch
}

func CreateTeacher(t *testing.T, repo school.Repository, id, name, schoolID, pwd string, email ...string) school.Teacher {
	tch := school.Teacher{ID: id, Name: name, SchoolID: schoolID}
	if len(email) > 0 && email[0] != "" {
		tch.Email = null.StringFrom(email[0])
	}
	if pwd != "" {
		if err := tch.SetPassword(pwd); err != nil {
			t.Fatalf("CreateTeacher() failed: %v", err)
		}
	}
	tch, err := repo.CreateTeacher(context.Background(), tch)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}

func CreateStudent(t *testing.T, repo school.Repository, id, name, teacherID string) school.Student {
	std, err := repo.UpsertStudent(context.Background(), school.Student{ID: id, Name: name, TeacherID: teacherID})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateSubject(t *testing.T, repo school.Repository, teacherID, name string) school.Subject {
	sub, err := repo.CreateSubject(context.Background(), school.Subject{TeacherID: teacherID, Name: name})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

// CreateScore records a percent score.
func CreateScore(t *testing.T, repo score.Repository, studentID string, sub school.Subject, date time.Time, percent float64) score.Score {
	sc := score.Score{
		StudentID:   studentID,
		TeacherID:   sub.TeacherID,
		SubjectID:   sub.ID,
		SubjectName: sub.Name,
		Date:        date,
		Value:       percent,
		Actual:      score.ActualFraction(percent, null.Float64{}),
		CreatedAt:   time.Now().UTC(),
	}
	sc, err := repo.CreateScore(context.Background(), sc)
	if err != nil {
		t.Fatalf("CreateScore() failed: %v", err)
	}
	return sc
}

// Day returns the date of a day of 2024, at midnight UTC.
func Day(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
}
