package school_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/school"
	inmemdb "github.com/trezcool/alama/storage/database/inmem"
	"github.com/trezcool/alama/testutil"
)

func setup(t *testing.T) (*school.Service, school.Repository) {
	repo := inmemdb.NewSchoolRepository(inmemdb.Open())
	validate, _ := testutil.NewValidate()
	return school.NewService(repo, validate), repo
}

func TestService_CreateSchool(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	sch, err := svc.CreateSchool(ctx, school.NewSchool{ID: " upendo ", Name: " Upendo Primary "})
	require.NoError(t, err)
	assert.Equal(t, school.School{ID: "upendo", Name: "Upendo Primary"}, sch)

	_, err = svc.CreateSchool(ctx, school.NewSchool{ID: "upendo", Name: "Again"})
	assert.True(t, core.IsValidationError(err))

	_, err = svc.CreateSchool(ctx, school.NewSchool{ID: "bad id", Name: "x"})
	assert.IsType(t, validator.ValidationErrors{}, err)
}

func TestService_CreateTeacher(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	testutil.CreateSchool(t, repo, "upendo", "Upendo")

	tests := []struct {
		name      string
		nt        school.NewTeacher
		wantField string
	}{
		{"unknown school", school.NewTeacher{ID: "t1", Name: "Ms K", SchoolID: "nope", Password: testutil.StrongPassword}, "school_id"},
		{"weak password", school.NewTeacher{ID: "t1", Name: "Ms K", SchoolID: "upendo", Password: "password"}, "password"},
		{"bad email", school.NewTeacher{ID: "t1", Name: "Ms K", SchoolID: "upendo", Email: "nope", Password: testutil.StrongPassword}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTeacher(ctx, tt.nt)
			require.Error(t, err)
			switch e := err.(type) {
			case validator.ValidationErrors:
				assert.Equal(t, tt.wantField, e[0].Field())
			case *core.ValidationError:
				assert.Equal(t, tt.wantField, e.Fields[0].Field)
			default:
				t.Fatalf("unexpected error %T: %v", err, err)
			}
		})
	}

	tch, err := svc.CreateTeacher(ctx, school.NewTeacher{
		ID: "t1", Name: "Ms K", SchoolID: "upendo", Email: "K@School.test", Password: testutil.StrongPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "Upendo", tch.SchoolName)
	assert.Equal(t, "k@school.test", tch.Email.String)
	assert.NoError(t, tch.CheckPassword(testutil.StrongPassword))

	_, err = svc.CreateTeacher(ctx, school.NewTeacher{ID: "t1", Name: "Dup", SchoolID: "upendo", Password: testutil.StrongPassword})
	assert.True(t, core.IsValidationError(err))
}

func TestService_Overview(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	testutil.CreateSchool(t, repo, "upendo", "Upendo")
	testutil.CreateTeacher(t, repo, "t1", "Ms K", "upendo", "")

	_, err := svc.CreateSubject(ctx, school.NewSubject{Name: "Math", TeacherID: "nope"})
	assert.True(t, core.IsValidationError(err))

	sub, err := svc.CreateSubject(ctx, school.NewSubject{Name: " Math ", TeacherID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, "Math", sub.Name)
	assert.Equal(t, "Ms K", sub.TeacherName)
	assert.Equal(t, "Upendo", sub.SchoolName)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, ov.Schools, 1)
	require.Len(t, ov.Teachers, 1)
	assert.Equal(t, "Upendo", ov.Teachers[0].SchoolName)
	require.Len(t, ov.Subjects, 1)
	assert.Equal(t, "Upendo", ov.Subjects[0].SchoolName)
}

func TestService_students(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	testutil.CreateSchool(t, repo, "upendo", "Upendo")
	testutil.CreateTeacher(t, repo, "t1", "Ms K", "upendo", "")
	testutil.CreateTeacher(t, repo, "t2", "Mr J", "upendo", "")

	_, err := svc.AddStudent(ctx, "t1", school.NewStudent{ID: "s1", Name: "Zawadi"})
	require.NoError(t, err)
	_, err = svc.AddStudent(ctx, "t1", school.NewStudent{ID: "s2", Name: "Amani"})
	require.NoError(t, err)
	_, err = svc.AddStudent(ctx, "nope", school.NewStudent{ID: "s3", Name: "Ghost"})
	assert.Equal(t, school.ErrTeacherNotFound, err)

	students, err := svc.ListStudents(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []school.Student{{ID: "s2", Name: "Amani", TeacherID: "t1"}, {ID: "s1", Name: "Zawadi", TeacherID: "t1"}}, students)

	_, err = svc.ListStudents(ctx, "nope")
	assert.Equal(t, school.ErrTeacherNotFound, err)

	// upsert renames the teacher's own student
	_, err = svc.AddStudent(ctx, "t1", school.NewStudent{ID: "s1", Name: "Zawadi M"})
	require.NoError(t, err)
	info, err := svc.GetStudentInfo(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "t1", info.TeacherID)
	assert.Equal(t, "Zawadi M", info.StudentName)
	assert.Equal(t, "Upendo", info.SchoolName)

	// deletion is scoped to the teacher
	assert.Equal(t, school.ErrStudentNotFound, svc.DeleteStudent(ctx, "t2", "s1"))
	assert.NoError(t, svc.DeleteStudent(ctx, "t1", "s1"))
	_, err = svc.GetStudentInfo(ctx, "s1")
	assert.Equal(t, school.ErrStudentNotFound, err)
}

func TestService_AddStudent_ofAnotherTeacher(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	repo := inmemdb.NewSchoolRepository(db)
	scoreRepo := inmemdb.NewScoreRepository(db)
	validate, _ := testutil.NewValidate()
	svc := school.NewService(repo, validate)

	testutil.CreateSchool(t, repo, "upendo", "Upendo")
	testutil.CreateTeacher(t, repo, "t1", "Ms K", "upendo", "")
	testutil.CreateTeacher(t, repo, "t2", "Mr J", "upendo", "")
	testutil.CreateStudent(t, repo, "kid", "Amani", "t1")
	math := testutil.CreateSubject(t, repo, "t1", "Math")
	testutil.CreateScore(t, scoreRepo, "kid", math, testutil.Day(3, 4), 80)

	_, err := svc.AddStudent(ctx, "t2", school.NewStudent{ID: "kid", Name: "Taken"})
	require.Error(t, err)
	require.True(t, core.IsValidationError(err))
	vErr := err.(*core.ValidationError)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "id", vErr.Fields[0].Field)

	// the student stays with their teacher, and so do the scores
	info, err := svc.GetStudentInfo(ctx, "kid")
	require.NoError(t, err)
	assert.Equal(t, "t1", info.TeacherID)
	assert.Equal(t, "Amani", info.StudentName)

	assert.Equal(t, school.ErrStudentNotFound, svc.DeleteStudent(ctx, "t2", "kid"))
	scores, err := scoreRepo.ListTeacherScores(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestService_teacherPassword(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	testutil.CreateSchool(t, repo, "upendo", "Upendo")
	testutil.CreateTeacher(t, repo, "t1", "Ms K", "upendo", testutil.StrongPassword)

	_, err := svc.AuthenticateTeacher(ctx, school.TeacherCredentials{TeacherID: "t1", Password: "wrong"})
	assert.Equal(t, school.ErrInvalidCredentials, err)
	_, err = svc.AuthenticateTeacher(ctx, school.TeacherCredentials{TeacherID: "nope", Password: testutil.StrongPassword})
	assert.Equal(t, school.ErrInvalidCredentials, err)
	tch, err := svc.AuthenticateTeacher(ctx, school.TeacherCredentials{TeacherID: " t1 ", Password: testutil.StrongPassword})
	require.NoError(t, err)
	assert.Equal(t, "t1", tch.Identity().ID)

	newPwd := "N3w-Passw0rd!"
	tests := []struct {
		name    string
		cp      school.ChangePassword
		wantErr bool
	}{
		{"wrong current", school.ChangePassword{CurrentPassword: "wrong", NewPassword: newPwd, ConfirmPassword: newPwd}, true},
		{"mismatch", school.ChangePassword{CurrentPassword: testutil.StrongPassword, NewPassword: newPwd, ConfirmPassword: "other"}, true},
		{"weak", school.ChangePassword{CurrentPassword: testutil.StrongPassword, NewPassword: "12345678", ConfirmPassword: "12345678"}, true},
		{"ok", school.ChangePassword{CurrentPassword: testutil.StrongPassword, NewPassword: newPwd, ConfirmPassword: newPwd}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ChangePassword(ctx, "t1", tt.cp)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}

	_, err = svc.AuthenticateTeacher(ctx, school.TeacherCredentials{TeacherID: "t1", Password: newPwd})
	assert.NoError(t, err)
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	testutil.CreateSchool(t, repo, "upendo", "Upendo")
	testutil.CreateTeacher(t, repo, "kasongo", "Kasongo", "upendo", testutil.StrongPassword)

	assert.Equal(t, school.ErrTeacherNotFound, svc.ResetPassword(ctx, "nope", testutil.StrongPassword))

	err := svc.ResetPassword(ctx, "kasongo", "Kasongo123!")
	require.Error(t, err)
	assert.IsType(t, validator.ValidationErrors{}, err)

	newPwd := "N3w-Passw0rd!"
	require.NoError(t, svc.ResetPassword(ctx, " kasongo ", newPwd))
	_, err = svc.AuthenticateTeacher(ctx, school.TeacherCredentials{TeacherID: "kasongo", Password: newPwd})
	assert.NoError(t, err)
}
