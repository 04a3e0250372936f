package score

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/now"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("score not found")
	ErrWrongSubject = errors.New("subject does not belong to the student's teacher")
	ErrForbidden    = errors.New("not allowed to record scores for this student")
)

type (
	Repository interface {
		CreateScore(ctx context.Context, sc Score) (Score, error)
		// DeleteScore deletes a score recorded by the teacher.
		DeleteScore(ctx context.Context, teacherID string, id int64) (deleted bool, err error)
		// ListStudentScores lists the scores of a student ordered by subject name then date.
		ListStudentScores(ctx context.Context, studentID string) ([]Score, error)
		// ListTeacherScores lists the scores recorded by a teacher ordered by subject name then date.
		ListTeacherScores(ctx context.Context, teacherID string) ([]Score, error)
		// ListTeacherScoresSince lists a teacher's scores dated since the given day, most recent first.
		ListTeacherScoresSince(ctx context.Context, teacherID string, since time.Time) ([]Score, error)
	}

	// Directory resolves the students and subjects scores are recorded against.
	Directory interface {
		GetStudentInfo(ctx context.Context, studentID string) (school.StudentInfo, error)
		GetSubject(ctx context.Context, id int64) (school.Subject, error)
	}

	Service struct {
		repo     Repository
		dir      Directory
		validate *validator.Validate
		nowFunc  func() time.Time
	}
)

func NewService(repo Repository, dir Directory, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(dir, "dir"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, dir: dir, validate: validate, nowFunc: time.Now}
}

// Submit records a score for a student, on behalf of the student or their own teacher.
// The score is attributed to the student's teacher.
func (svc *Service) Submit(ctx context.Context, ident user.Identity, studentID string, ns NewScore) (Score, error) {
	if err := svc.validate.Struct(ns); err != nil {
		return Score{}, err
	}

	std, err := svc.dir.GetStudentInfo(ctx, studentID)
	if err != nil {
		return Score{}, err
	}
	if !ident.CanRecordScore(std.StudentID, std.TeacherID) {
		return Score{}, ErrForbidden
	}
	sub, err := svc.dir.GetSubject(ctx, ns.SubjectID)
	if err != nil {
		if errors.Cause(err) == school.ErrSubjectNotFound {
			return Score{}, core.NewFieldError("subject_id", school.ErrSubjectNotFound.Error())
		}
		return Score{}, errors.Wrap(err, "finding subject")
	}
	if sub.TeacherID != std.TeacherID {
		return Score{}, core.NewFieldError("subject_id", ErrWrongSubject.Error())
	}

	date := now.With(svc.nowFunc().UTC()).BeginningOfDay()
	if ns.Date != "" {
		if date, err = time.Parse(dateLayout, ns.Date); err != nil {
			return Score{}, core.NewFieldError("date", "invalid date")
		}
	}

	value, possible := ns.valueAndPossible()
	sc := Score{
		StudentID:   std.StudentID,
		TeacherID:   std.TeacherID,
		SubjectID:   sub.ID,
		SubjectName: sub.Name,
		Date:        date,
		Value:       value,
		Possible:    possible,
		Actual:      ActualFraction(value, possible),
		CreatedAt:   svc.nowFunc().UTC(),
	}
	return svc.repo.CreateScore(ctx, sc)
}

// Delete removes a score. Scores of other teachers are reported as not found.
func (svc *Service) Delete(ctx context.Context, teacherID string, id int64) error {
	deleted, err := svc.repo.DeleteScore(ctx, teacherID, id)
	if err != nil {
		return errors.Wrap(err, "deleting score")
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) ListForStudent(ctx context.Context, studentID string) ([]Score, error) {
	return svc.repo.ListStudentScores(ctx, studentID)
}

func (svc *Service) ListForTeacher(ctx context.Context, teacherID string) ([]Score, error) {
	return svc.repo.ListTeacherScores(ctx, teacherID)
}

// ListThisWeek lists the scores a teacher recorded for the current week.
func (svc *Service) ListThisWeek(ctx context.Context, teacherID string) ([]Score, error) {
	since := now.With(svc.nowFunc().UTC()).BeginningOfWeek()
	return svc.repo.ListTeacherScoresSince(ctx, teacherID, since)
}
