package school

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
)

var (
	// errors
	ErrSchoolNotFound     = errors.New("school not found")
	ErrSchoolExists       = errors.New("a school with this id already exists")
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrTeacherExists      = errors.New("a teacher with this id already exists")
	ErrStudentNotFound    = errors.New("student not found")
	ErrStudentTaken       = errors.New("a student with this id belongs to another teacher")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		GetSchool(ctx context.Context, id string) (School, error)
		ListSchools(ctx context.Context) ([]School, error)

		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		GetTeacher(ctx context.Context, id string) (Teacher, error)
		ListTeachers(ctx context.Context) ([]Teacher, error)
		UpdateTeacherPassword(ctx context.Context, id string, hash []byte) error

		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubject(ctx context.Context, id int64) (Subject, error)
		ListSubjects(ctx context.Context) ([]Subject, error)
		ListTeacherSubjects(ctx context.Context, teacherID string) ([]Subject, error)

		// UpsertStudent creates the student or renames it. Returns ErrStudentTaken when the id
		// belongs to another teacher.
		UpsertStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudent(ctx context.Context, teacherID, studentID string) (deleted bool, err error)
		ListStudents(ctx context.Context, teacherID string) ([]Student, error)
		GetStudentInfo(ctx context.Context, studentID string) (StudentInfo, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, validate: validate}
}

// --- admin ---

func (svc *Service) CreateSchool(ctx context.Context, ns NewSchool) (School, error) {
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return School{}, err
	}

	_, err := svc.repo.GetSchool(ctx, ns.ID)
	switch errors.Cause(err) {
	case nil:
		return School{}, core.NewFieldError("id", ErrSchoolExists.Error())
	case ErrSchoolNotFound:
	default:
		return School{}, errors.Wrap(err, "finding school")
	}
	return svc.repo.CreateSchool(ctx, School{ID: ns.ID, Name: ns.Name})
}

func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	nt.Clean()
	if err := svc.validate.Struct(nt); err != nil {
		return Teacher{}, err
	}

	sch, err := svc.repo.GetSchool(ctx, nt.SchoolID)
	if err != nil {
		if errors.Cause(err) == ErrSchoolNotFound {
			return Teacher{}, core.NewFieldError("school_id", ErrSchoolNotFound.Error())
		}
		return Teacher{}, errors.Wrap(err, "finding school")
	}

	_, err = svc.repo.GetTeacher(ctx, nt.ID)
	switch errors.Cause(err) {
	case nil:
		return Teacher{}, core.NewFieldError("id", ErrTeacherExists.Error())
	case ErrTeacherNotFound:
	default:
		return Teacher{}, errors.Wrap(err, "finding teacher")
	}

	tch := Teacher{ID: nt.ID, Name: nt.Name, SchoolID: sch.ID, SchoolName: sch.Name}
	if nt.Email != "" {
		tch.Email = null.StringFrom(nt.Email)
	}
	if err = tch.SetPassword(nt.Password); err != nil {
		return Teacher{}, err
	}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Subject{}, err
	}

	tch, err := svc.repo.GetTeacher(ctx, ns.TeacherID)
	if err != nil {
		if errors.Cause(err) == ErrTeacherNotFound {
			return Subject{}, core.NewFieldError("teacher_id", ErrTeacherNotFound.Error())
		}
		return Subject{}, errors.Wrap(err, "finding teacher")
	}

	sub := Subject{TeacherID: tch.ID, Name: ns.Name, TeacherName: tch.Name, SchoolName: tch.SchoolName}
	return svc.repo.CreateSubject(ctx, sub)
}

// Overview lists all schools, teachers & subjects.
func (svc *Service) Overview(ctx context.Context) (Overview, error) {
	var (
		ov  Overview
		err error
	)
	if ov.Schools, err = svc.repo.ListSchools(ctx); err != nil {
		return Overview{}, errors.Wrap(err, "listing schools")
	}
	if ov.Teachers, err = svc.repo.ListTeachers(ctx); err != nil {
		return Overview{}, errors.Wrap(err, "listing teachers")
	}
	if ov.Subjects, err = svc.repo.ListSubjects(ctx); err != nil {
		return Overview{}, errors.Wrap(err, "listing subjects")
	}
	return ov, nil
}

// --- directory ---

func (svc *Service) ListTeachers(ctx context.Context) ([]Teacher, error) {
	return svc.repo.ListTeachers(ctx)
}

// ListStudents lists the students of a teacher, ordered by name.
func (svc *Service) ListStudents(ctx context.Context, teacherID string) ([]Student, error) {
	if _, err := svc.repo.GetTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	return svc.repo.ListStudents(ctx, teacherID)
}

func (svc *Service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, id)
}

func (svc *Service) GetStudentInfo(ctx context.Context, studentID string) (StudentInfo, error) {
	return svc.repo.GetStudentInfo(ctx, studentID)
}

func (svc *Service) GetSubject(ctx context.Context, id int64) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *Service) ListTeacherSubjects(ctx context.Context, teacherID string) ([]Subject, error) {
	return svc.repo.ListTeacherSubjects(ctx, teacherID)
}

// --- teacher ---

// AuthenticateTeacher checks the credentials of a Teacher.
func (svc *Service) AuthenticateTeacher(ctx context.Context, creds TeacherCredentials) (Teacher, error) {
	creds.TeacherID = core.CleanString(creds.TeacherID)
	if err := svc.validate.Struct(creds); err != nil {
		return Teacher{}, err
	}

	tch, err := svc.repo.GetTeacher(ctx, creds.TeacherID)
	if err != nil {
		if errors.Cause(err) == ErrTeacherNotFound {
			return Teacher{}, ErrInvalidCredentials
		}
		return Teacher{}, errors.Wrap(err, "finding teacher")
	}
	if err = tch.CheckPassword(creds.Password); err != nil {
		return Teacher{}, ErrInvalidCredentials
	}
	return tch, nil
}

// AddStudent creates a student under the teacher, or renames one of the teacher's students.
// Students of other teachers are left untouched.
func (svc *Service) AddStudent(ctx context.Context, teacherID string, ns NewStudent) (Student, error) {
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Student{}, err
	}
	if _, err := svc.repo.GetTeacher(ctx, teacherID); err != nil {
		return Student{}, err
	}
	std, err := svc.repo.UpsertStudent(ctx, Student{ID: ns.ID, Name: ns.Name, TeacherID: teacherID})
	if err != nil {
		if errors.Cause(err) == ErrStudentTaken {
			return Student{}, core.NewFieldError("id", ErrStudentTaken.Error())
		}
		return Student{}, err
	}
	return std, nil
}

// DeleteStudent removes one of the teacher's students. Students of other teachers are
// reported as not found.
func (svc *Service) DeleteStudent(ctx context.Context, teacherID, studentID string) error {
	deleted, err := svc.repo.DeleteStudent(ctx, teacherID, studentID)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if !deleted {
		return ErrStudentNotFound
	}
	return nil
}

// ChangePassword replaces the password of a teacher after checking the current one.
func (svc *Service) ChangePassword(ctx context.Context, teacherID string, cp ChangePassword) error {
	if err := svc.validate.Struct(cp); err != nil {
		return err
	}

	tch, err := svc.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		return err
	}
	if err = tch.CheckPassword(cp.CurrentPassword); err != nil {
		return core.NewFieldError("current_password", ErrWrongPassword.Error())
	}
	if err = tch.SetPassword(cp.NewPassword); err != nil {
		return err
	}
	return svc.repo.UpdateTeacherPassword(ctx, tch.ID, tch.PasswordHash)
}

// ResetPassword sets a new password on a teacher without checking the current one.
// Used from the admin CLI.
func (svc *Service) ResetPassword(ctx context.Context, teacherID, pwd string) error {
	tch, err := svc.repo.GetTeacher(ctx, core.CleanString(teacherID))
	if err != nil {
		return err
	}
	pr := passwordReset{ID: tch.ID, Name: tch.Name, Email: tch.Email.String, Password: pwd}
	if err = svc.validate.Struct(pr); err != nil {
		return err
	}
	if err = tch.SetPassword(pwd); err != nil {
		return err
	}
	return svc.repo.UpdateTeacherPassword(ctx, tch.ID, tch.PasswordHash)
}
