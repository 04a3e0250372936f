package stats

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/goal"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
)

var ErrForbidden = errors.New("not allowed to view this student")

type (
	Directory interface {
		GetStudentInfo(ctx context.Context, studentID string) (school.StudentInfo, error)
		ListTeacherSubjects(ctx context.Context, teacherID string) ([]school.Subject, error)
	}

	ScoreLister interface {
		ListForStudent(ctx context.Context, studentID string) ([]score.Score, error)
		ListForTeacher(ctx context.Context, teacherID string) ([]score.Score, error)
	}

	GoalLister interface {
		ListForStudent(ctx context.Context, studentID string) ([]goal.Goal, error)
	}

	Service struct {
		dir          Directory
		scores       ScoreLister
		goals        GoalLister
		accessPolicy string
	}
)

func NewService(dir Directory, scores ScoreLister, goals GoalLister, conf *core.Config) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(dir, "dir"),
		vala.IsNotNil(scores, "scores"),
		vala.IsNotNil(goals, "goals"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	return &Service{dir: dir, scores: scores, goals: goals, accessPolicy: conf.TeacherAccess}
}

// Student returns the student info if ident may view the student's pages.
func (svc *Service) Student(ctx context.Context, ident user.Identity, studentID string) (school.StudentInfo, error) {
	std, err := svc.dir.GetStudentInfo(ctx, studentID)
	if err != nil {
		return school.StudentInfo{}, err
	}
	if !ident.CanViewStudent(std.StudentID, std.TeacherID, svc.accessPolicy) {
		return school.StudentInfo{}, ErrForbidden
	}
	return std, nil
}

func (svc *Service) Stats(ctx context.Context, ident user.Identity, studentID string) (StatsReport, error) {
	std, err := svc.Student(ctx, ident, studentID)
	if err != nil {
		return StatsReport{}, err
	}

	scores, err := svc.scores.ListForStudent(ctx, std.StudentID)
	if err != nil {
		return StatsReport{}, errors.Wrap(err, "listing student scores")
	}
	if len(scores) == 0 {
		return BuildStatsReport(std, nil, nil, nil), nil
	}

	classScores, err := svc.scores.ListForTeacher(ctx, std.TeacherID)
	if err != nil {
		return StatsReport{}, errors.Wrap(err, "listing class scores")
	}
	goals, err := svc.goals.ListForStudent(ctx, std.StudentID)
	if err != nil {
		return StatsReport{}, errors.Wrap(err, "listing goals")
	}
	return BuildStatsReport(std, scores, classScores, goals), nil
}

func (svc *Service) Entry(ctx context.Context, ident user.Identity, studentID string) (EntryReport, error) {
	std, err := svc.Student(ctx, ident, studentID)
	if err != nil {
		return EntryReport{}, err
	}

	subjects, err := svc.dir.ListTeacherSubjects(ctx, std.TeacherID)
	if err != nil {
		return EntryReport{}, errors.Wrap(err, "listing subjects")
	}
	scores, err := svc.scores.ListForStudent(ctx, std.StudentID)
	if err != nil {
		return EntryReport{}, errors.Wrap(err, "listing student scores")
	}
	goals, err := svc.goals.ListForStudent(ctx, std.StudentID)
	if err != nil {
		return EntryReport{}, errors.Wrap(err, "listing goals")
	}
	return BuildEntryReport(std, subjects, scores, goals), nil
}
