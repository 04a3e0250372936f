package goal

import (
	"context"
	"math"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/user"
)

var (
	// errors
	ErrInvalidTarget = errors.New("goal must be a percent between 0 and 100, or a fraction between 0 and 1")
	ErrForbidden     = errors.New("not allowed to set goals for this student")
	ErrWrongSubject  = errors.New("subject does not belong to the student's teacher")
)

// Goal is the target fraction a student aims for in a subject.
type Goal struct {
	StudentID string    `json:"student_id" db:"student_id"`
	SubjectID int64     `json:"subject_id" db:"subject_id"`
	Target    float64   `json:"target" db:"target"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewGoal is submitted to set a goal. Target may be a number or a numeric string.
type NewGoal struct {
	Target interface{} `json:"target"`
}

// Normalize turns a goal entry into a fraction in [0, 1]. Values above 1 must be whole
// percents (85 -> 0.85, 1.5 is rejected).
func Normalize(raw interface{}) (float64, error) {
	if raw == nil {
		return 0, ErrInvalidTarget
	}
	if _, ok := raw.(bool); ok {
		return 0, ErrInvalidTarget
	}
	if s, ok := raw.(string); ok {
		raw = core.CleanString(s)
	}

	target, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(target) || math.IsInf(target, 0) {
		return 0, ErrInvalidTarget
	}
	if target > 1 {
		if target != math.Trunc(target) {
			return 0, ErrInvalidTarget
		}
		target /= 100
	}
	if target < 0 || target > 1 {
		return 0, ErrInvalidTarget
	}
	return target, nil
}

type (
	Repository interface {
		// UpsertGoal creates the goal or overwrites the target of the (student, subject) goal.
		UpsertGoal(ctx context.Context, g Goal) (Goal, error)
		ListStudentGoals(ctx context.Context, studentID string) ([]Goal, error)
	}

	Directory interface {
		GetStudentInfo(ctx context.Context, studentID string) (school.StudentInfo, error)
		GetSubject(ctx context.Context, id int64) (school.Subject, error)
	}

	Service struct {
		repo    Repository
		dir     Directory
		nowFunc func() time.Time
	}
)

func NewService(repo Repository, dir Directory) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(dir, "dir"),
	).CheckAndPanic()

	return &Service{repo: repo, dir: dir, nowFunc: time.Now}
}

// Set normalizes and stores the goal of a student in a subject.
func (svc *Service) Set(ctx context.Context, ident user.Identity, studentID string, subjectID int64, ng NewGoal) (Goal, error) {
	std, err := svc.dir.GetStudentInfo(ctx, studentID)
	if err != nil {
		return Goal{}, err
	}
	if !ident.CanSetGoal(std.StudentID, std.TeacherID) {
		return Goal{}, ErrForbidden
	}

	sub, err := svc.dir.GetSubject(ctx, subjectID)
	if err != nil {
		return Goal{}, err
	}
	if sub.TeacherID != std.TeacherID {
		return Goal{}, ErrWrongSubject
	}

	target, err := Normalize(ng.Target)
	if err != nil {
		return Goal{}, core.NewFieldError("target", err.Error())
	}

	g := Goal{StudentID: std.StudentID, SubjectID: sub.ID, Target: target, UpdatedAt: svc.nowFunc().UTC()}
	return svc.repo.UpsertGoal(ctx, g)
}

func (svc *Service) ListForStudent(ctx context.Context, studentID string) ([]Goal, error) {
	return svc.repo.ListStudentGoals(ctx, studentID)
}

// BySubject indexes goals by subject id.
func BySubject(goals []Goal) map[int64]Goal {
	m := make(map[int64]Goal, len(goals))
	for _, g := range goals {
		m[g.SubjectID] = g
	}
	return m
}
