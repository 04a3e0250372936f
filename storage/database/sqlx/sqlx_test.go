package sqlxrepos_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/accesscode"
	"github.com/trezcool/alama/core/goal"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/user"
	sqlxrepos "github.com/trezcool/alama/storage/database/sqlx"
	"github.com/trezcool/alama/testutil"
)

func TestAdminRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewAdminRepository(testutil.PrepareDB(t))

	adm := user.Admin{Username: "root", CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
	require.NoError(t, adm.SetPassword(testutil.StrongPassword))
	adm, err := repo.CreateAdmin(ctx, adm)
	require.NoError(t, err)
	assert.NotEmpty(t, adm.ID)

	_, err = repo.CreateAdmin(ctx, user.Admin{Username: "root", PasswordHash: adm.PasswordHash, CreatedAt: adm.CreatedAt})
	assert.Equal(t, user.ErrUsernameExists, err)

	_, err = repo.GetAdminByID(ctx, "not-a-uuid")
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.GetAdminByUsername(ctx, "ghost")
	assert.Equal(t, user.ErrNotFound, err)

	adm.LastLogin.SetValid(time.Now().UTC())
	updated, err := repo.UpdateAdmin(ctx, adm)
	require.NoError(t, err)
	assert.True(t, updated.LastLogin.Valid)
	assert.NoError(t, updated.CheckPassword(testutil.StrongPassword))
}

func TestSchoolRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewSchoolRepository(testutil.PrepareDB(t))

	testutil.CreateSchool(t, repo, "upendo", "Upendo")
	_, err := repo.CreateSchool(ctx, school.School{ID: "upendo", Name: "Again"})
	assert.Equal(t, school.ErrSchoolExists, err)

	tch := testutil.CreateTeacher(t, repo, "t1", "Ms K", "upendo", testutil.StrongPassword, "k@school.test")
	assert.Equal(t, "Upendo", tch.SchoolName)
	assert.Equal(t, null.StringFrom("k@school.test"), tch.Email)
	_, err = repo.CreateTeacher(ctx, school.Teacher{ID: "t2", Name: "Mr J", SchoolID: "nope"})
	assert.Equal(t, school.ErrSchoolNotFound, err)

	sub := testutil.CreateSubject(t, repo, "t1", "Math")
	assert.Equal(t, "Ms K", sub.TeacherName)
	_, err = repo.GetSubject(ctx, sub.ID+100)
	assert.Equal(t, school.ErrSubjectNotFound, err)

	testutil.CreateStudent(t, repo, "s1", "Zawadi", "t1")
	testutil.CreateStudent(t, repo, "s2", "Amani", "t1")
	_, err = repo.UpsertStudent(ctx, school.Student{ID: "s3", Name: "Ghost", TeacherID: "nope"})
	assert.Equal(t, school.ErrTeacherNotFound, err)

	testutil.CreateTeacher(t, repo, "t2", "Mr J", "upendo", "")
	_, err = repo.UpsertStudent(ctx, school.Student{ID: "s1", Name: "Taken", TeacherID: "t2"})
	assert.Equal(t, school.ErrStudentTaken, err)
	renamed, err := repo.UpsertStudent(ctx, school.Student{ID: "s2", Name: "Amani M", TeacherID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, school.Student{ID: "s2", Name: "Amani M", TeacherID: "t1"}, renamed)

	students, err := repo.ListStudents(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "s2", students[0].ID)
	assert.Equal(t, "Zawadi", students[1].Name)

	info, err := repo.GetStudentInfo(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, school.StudentInfo{StudentID: "s1", StudentName: "Zawadi", TeacherID: "t1", TeacherName: "Ms K", SchoolName: "Upendo"}, info)

	deleted, err := repo.DeleteStudent(ctx, "t2", "s1")
	require.NoError(t, err)
	assert.False(t, deleted)
	deleted, err = repo.DeleteStudent(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.NoError(t, repo.UpdateTeacherPassword(ctx, "t1", []byte("hash")))
	assert.Equal(t, school.ErrTeacherNotFound, repo.UpdateTeacherPassword(ctx, "nope", []byte("hash")))
}

func TestScoreAndGoalRepositories(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	schoolRepo := sqlxrepos.NewSchoolRepository(db)
	scoreRepo := sqlxrepos.NewScoreRepository(db)
	goalRepo := sqlxrepos.NewGoalRepository(db)

	testutil.CreateSchool(t, schoolRepo, "upendo", "Upendo")
	testutil.CreateTeacher(t, schoolRepo, "t1", "Ms K", "upendo", "")
	testutil.CreateStudent(t, schoolRepo, "s1", "Amani", "t1")
	math := testutil.CreateSubject(t, schoolRepo, "t1", "Math")
	art := testutil.CreateSubject(t, schoolRepo, "t1", "Art")

	m2 := testutil.CreateScore(t, scoreRepo, "s1", math, testutil.Day(time.March, 2), 80)
	m1 := testutil.CreateScore(t, scoreRepo, "s1", math, testutil.Day(time.March, 1), 70)
	a1 := testutil.CreateScore(t, scoreRepo, "s1", art, testutil.Day(time.March, 3), 90)

	scores, err := scoreRepo.ListStudentScores(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, []int64{a1.ID, m1.ID, m2.ID}, []int64{scores[0].ID, scores[1].ID, scores[2].ID})
	assert.Equal(t, "Math", scores[1].SubjectName)
	assert.False(t, scores[1].Possible.Valid)
	assert.InDelta(t, .7, scores[1].Actual.Float64, 1e-9)

	recent, err := scoreRepo.ListTeacherScoresSince(ctx, "t1", testutil.Day(time.March, 2))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, a1.ID, recent[0].ID)

	deleted, err := scoreRepo.DeleteScore(ctx, "t2", m1.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = goalRepo.UpsertGoal(ctx, goal.Goal{StudentID: "s1", SubjectID: math.ID, Target: .8, UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	_, err = goalRepo.UpsertGoal(ctx, goal.Goal{StudentID: "s1", SubjectID: math.ID, Target: .9, UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	goals, err := goalRepo.ListStudentGoals(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.InDelta(t, .9, goals[0].Target, 1e-9)
}

func TestAccessCodeRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	schoolRepo := sqlxrepos.NewSchoolRepository(db)
	repo := sqlxrepos.NewAccessCodeRepository(db)

	testutil.CreateSchool(t, schoolRepo, "upendo", "Upendo")
	testutil.CreateTeacher(t, schoolRepo, "t1", "Ms K", "upendo", "")

	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := repo.ReplaceCodes(ctx, accesscode.AccessCode{TeacherID: "t1", Code: "AAAAA", CreatedAt: now.Add(-time.Minute)})
	require.NoError(t, err)
	second, err := repo.ReplaceCodes(ctx, accesscode.AccessCode{TeacherID: "t1", Code: "BBBBB", CreatedAt: now})
	require.NoError(t, err)

	codes, err := repo.ListRecentCodes(ctx, "t1", accesscode.RecentLimit)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, second.ID, codes[0].ID)

	_, err = repo.GetLatestByCode(ctx, "AAAAA")
	assert.Equal(t, accesscode.ErrNotFound, err)
	got, err := repo.GetLatestByCode(ctx, "BBBBB")
	require.NoError(t, err)
	assert.True(t, now.Equal(got.CreatedAt))

	_, err = repo.ReplaceCodes(ctx, accesscode.AccessCode{TeacherID: "nope", Code: "CCCCC", CreatedAt: now})
	assert.Equal(t, school.ErrTeacherNotFound, err)

	t.Run("concurrent rotations leave one code", func(t *testing.T) {
		const n = 8
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				code := accesscode.AccessCode{TeacherID: "t1", Code: fmt.Sprintf("CC%03d", i), CreatedAt: time.Now().UTC()}
				_, err := repo.ReplaceCodes(ctx, code)
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		codes, err := repo.ListRecentCodes(ctx, "t1", accesscode.RecentLimit)
		require.NoError(t, err)
		assert.Len(t, codes, 1)
	})
}
