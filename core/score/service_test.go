package score_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
	inmemdb "github.com/trezcool/alama/storage/database/inmem"
	"github.com/trezcool/alama/testutil"
)

func TestActualFraction(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		possible null.Float64
		want     null.Float64
	}{
		{"percent", 85, null.Float64{}, null.Float64From(.85)},
		{"points", 18, null.Float64From(20), null.Float64From(.9)},
		{"zero possible", 18, null.Float64From(0), null.Float64{}},
		{"negative possible", 18, null.Float64From(-5), null.Float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score.ActualFraction(tt.value, tt.possible)
			assert.Equal(t, tt.want.Valid, got.Valid)
			assert.InDelta(t, tt.want.Float64, got.Float64, 1e-9)
		})
	}
}

// t1 teaches s1; t2 teaches nobody
var (
	t1 = user.Identity{Role: user.RoleTeacher, ID: "t1", TeacherID: "t1"}
	t2 = user.Identity{Role: user.RoleTeacher, ID: "t2", TeacherID: "t2"}
)

type fixture struct {
	svc        *score.Service
	schoolRepo school.Repository
	math       school.Subject
	history    school.Subject
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	schoolRepo := inmemdb.NewSchoolRepository(db)
	validate, _ := testutil.NewValidate()
	schoolSvc := school.NewService(schoolRepo, validate)

	testutil.CreateSchool(t, schoolRepo, "upendo", "Upendo")
	testutil.CreateTeacher(t, schoolRepo, "t1", "Ms K", "upendo", "")
	testutil.CreateTeacher(t, schoolRepo, "t2", "Mr J", "upendo", "")
	testutil.CreateStudent(t, schoolRepo, "s1", "Amani", "t1")

	return fixture{
		svc:        score.NewService(inmemdb.NewScoreRepository(db), schoolSvc, validate),
		schoolRepo: schoolRepo,
		math:       testutil.CreateSubject(t, schoolRepo, "t1", "Math"),
		history:    testutil.CreateSubject(t, schoolRepo, "t2", "History"),
	}
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	invalid := []struct {
		name string
		ns   score.NewScore
	}{
		{"no form", score.NewScore{SubjectID: f.math.ID}},
		{"both forms", score.NewScore{SubjectID: f.math.ID, PercentScore: null.Float64From(80), PointsEarned: null.Float64From(8), PointsPossible: null.Float64From(10)}},
		{"points without possible", score.NewScore{SubjectID: f.math.ID, PointsEarned: null.Float64From(8)}},
		{"zero possible", score.NewScore{SubjectID: f.math.ID, PointsEarned: null.Float64From(8), PointsPossible: null.Float64From(0)}},
		{"negative percent", score.NewScore{SubjectID: f.math.ID, PercentScore: null.Float64From(-1)}},
		{"bad date", score.NewScore{SubjectID: f.math.ID, PercentScore: null.Float64From(80), Date: "03/01/2024"}},
		{"missing subject", score.NewScore{PercentScore: null.Float64From(80)}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, t1, "s1", tt.ns)
			assert.IsType(t, validator.ValidationErrors{}, err)
		})
	}

	t.Run("subject of another teacher", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, t1, "s1", score.NewScore{SubjectID: f.history.ID, PercentScore: null.Float64From(80)})
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, t1, "s1", score.NewScore{SubjectID: 9999, PercentScore: null.Float64From(80)})
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, t1, "nobody", score.NewScore{SubjectID: f.math.ID, PercentScore: null.Float64From(80)})
		assert.Equal(t, school.ErrStudentNotFound, err)
	})

	t.Run("not the student's teacher", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, t2, "s1", score.NewScore{SubjectID: f.math.ID, PercentScore: null.Float64From(80)})
		assert.Equal(t, score.ErrForbidden, err)
	})

	t.Run("another student", func(t *testing.T) {
		s2 := user.Identity{Role: user.RoleStudent, ID: "s2", TeacherID: "t1"}
		_, err := f.svc.Submit(ctx, s2, "s1", score.NewScore{SubjectID: f.math.ID, PercentScore: null.Float64From(80)})
		assert.Equal(t, score.ErrForbidden, err)
	})

	t.Run("the student", func(t *testing.T) {
		s1 := user.Identity{Role: user.RoleStudent, ID: "s1", TeacherID: "t1"}
		sc, err := f.svc.Submit(ctx, s1, "s1", score.NewScore{SubjectID: f.math.ID, PercentScore: null.Float64From(75), Date: "2024-02-01"})
		require.NoError(t, err)
		assert.Equal(t, "t1", sc.TeacherID)
	})

	t.Run("percent", func(t *testing.T) {
		sc, err := f.svc.Submit(ctx, t1, "s1", score.NewScore{SubjectID: f.math.ID, PercentScore: null.Float64From(85), Date: "2024-03-01"})
		require.NoError(t, err)
		assert.NotZero(t, sc.ID)
		assert.Equal(t, "t1", sc.TeacherID)
		assert.Equal(t, "Math", sc.SubjectName)
		assert.Equal(t, testutil.Day(time.March, 1), sc.Date)
		assert.False(t, sc.Possible.Valid)
		assert.InDelta(t, .85, sc.Actual.Float64, 1e-9)
	})

	t.Run("points, date defaults to today", func(t *testing.T) {
		sc, err := f.svc.Submit(ctx, t1, "s1", score.NewScore{SubjectID: f.math.ID, PointsEarned: null.Float64From(18), PointsPossible: null.Float64From(20)})
		require.NoError(t, err)
		assert.Equal(t, 18.0, sc.Value)
		assert.Equal(t, null.Float64From(20), sc.Possible)
		assert.InDelta(t, .9, sc.Actual.Float64, 1e-9)

		today := time.Now().UTC()
		assert.Equal(t, today.Format("2006-01-02"), sc.Date.Format("2006-01-02"))
		assert.Zero(t, sc.Date.Hour())
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	sc, err := f.svc.Submit(ctx, t1, "s1", score.NewScore{SubjectID: f.math.ID, PercentScore: null.Float64From(85)})
	require.NoError(t, err)

	assert.Equal(t, score.ErrNotFound, f.svc.Delete(ctx, "t2", sc.ID), "non-owner")
	assert.NoError(t, f.svc.Delete(ctx, "t1", sc.ID))
	assert.Equal(t, score.ErrNotFound, f.svc.Delete(ctx, "t1", sc.ID), "already deleted")

	scores, err := f.svc.ListForStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestService_lists(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	art := testutil.CreateSubject(t, f.schoolRepo, "t1", "Art")
	testutil.CreateStudent(t, f.schoolRepo, "s2", "Baraka", "t1")

	submit := func(studentID string, sub school.Subject, date string, pct float64) score.Score {
		sc, err := f.svc.Submit(ctx, t1, studentID, score.NewScore{SubjectID: sub.ID, PercentScore: null.Float64From(pct), Date: date})
		require.NoError(t, err)
		return sc
	}
	m2 := submit("s1", f.math, "2024-03-02", 70)
	m1 := submit("s1", f.math, "2024-03-01", 60)
	a1 := submit("s1", art, "2024-03-05", 90)
	o1 := submit("s2", f.math, "2024-03-01", 50)

	ids := func(scores []score.Score) []int64 {
		res := make([]int64, 0, len(scores))
		for _, sc := range scores {
			res = append(res, sc.ID)
		}
		return res
	}

	scores, err := f.svc.ListForStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []int64{a1.ID, m1.ID, m2.ID}, ids(scores))

	scores, err = f.svc.ListForTeacher(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []int64{a1.ID, m1.ID, o1.ID, m2.ID}, ids(scores))
}
