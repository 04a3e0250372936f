package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/score"
)

func pctScore(studentID string, subjectID int64, subjectName string, day int, pct float64) score.Score {
	return score.Score{
		StudentID:   studentID,
		SubjectID:   subjectID,
		SubjectName: subjectName,
		Date:        time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
		Value:       pct,
		Actual:      null.Float64From(pct / 100),
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{2.4, 2},
		{2.5, 3},
		{-2.5, -2},
		{-2.6, -3},
		{30.000000000000004, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in), "Round(%v)", tt.in)
	}
}

func TestAverage(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.False(t, Average(nil).Valid)
		assert.False(t, Average([]score.Score{}).Valid)
	})

	t.Run("mean of actual fractions", func(t *testing.T) {
		scores := []score.Score{pctScore("s1", 1, "Math", 1, 80), pctScore("s1", 1, "Math", 2, 90)}
		avg := Average(scores)
		assert.True(t, avg.Valid)
		assert.InDelta(t, 0.85, avg.Float64, 1e-9)
	})

	t.Run("null actuals are ignored", func(t *testing.T) {
		broken := pctScore("s1", 1, "Math", 3, 0)
		broken.Actual = null.Float64{}
		scores := []score.Score{pctScore("s1", 1, "Math", 1, 60), broken}
		assert.InDelta(t, 0.6, Average(scores).Float64, 1e-9)
		assert.False(t, Average([]score.Score{broken}).Valid)
	})
}

func TestBand(t *testing.T) {
	tests := []struct {
		name string
		avg  null.Float64
		want string
	}{
		{"null", null.Float64{}, BandNone},
		{"90%", null.Float64From(.9), BandHigh},
		{"100%", null.Float64From(1), BandHigh},
		{"89%", null.Float64From(.89), BandMedium},
		{"70%", null.Float64From(.7), BandMedium},
		{"69%", null.Float64From(.69), BandLow},
		{"0%", null.Float64From(0), BandLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Band(tt.avg))
		})
	}
}

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name       string
		percents   []int
		wantChange null.Int
		wantDir    string
	}{
		{"no scores", nil, null.IntFrom(0), DirectionNoChange},
		{"single score", []int{80}, null.IntFrom(0), DirectionNoChange},
		{"improved", []int{70, 91}, null.IntFrom(30), DirectionImproved},
		{"unchanged counts as improved", []int{80, 60, 80}, null.IntFrom(0), DirectionImproved},
		{"declined", []int{80, 60}, null.IntFrom(-25), DirectionDeclined},
		{"rounded half up", []int{8, 9}, null.IntFrom(13), DirectionImproved},
		{"negative half rounds up", []int{8, 7}, null.IntFrom(-12), DirectionDeclined},
		{"first is zero", []int{0, 50}, null.Int{}, DirectionUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTrend("Math", tt.percents)
			assert.Equal(t, "Math", got.SubjectName)
			assert.Equal(t, tt.wantChange, got.Change)
			assert.Equal(t, tt.wantDir, got.Direction)
		})
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 50, 0},
		{"single", []float64{42}, 75, 42},
		{"median even", []float64{10, 20, 30, 40}, 50, 25},
		{"median odd", []float64{60, 70, 80}, 50, 70},
		{"q1", []float64{10, 20, 30, 40}, 25, 17.5},
		{"min", []float64{10, 20, 30, 40}, 0, 10},
		{"max", []float64{10, 20, 30, 40}, 100, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.sorted, tt.p), 1e-9)
		})
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{40, 10, 30, 20}
	got := Summarize(values)
	assert.Equal(t, Summary{Min: 10, Q1: 17.5, Median: 25, Q3: 32.5, Max: 40}, got)
	assert.Equal(t, []float64{40, 10, 30, 20}, values, "input must not be reordered")

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestGraphs(t *testing.T) {
	scores := []score.Score{
		pctScore("s1", 2, "English", 1, 70),
		pctScore("s1", 2, "English", 5, 91),
		pctScore("s1", 1, "Math", 2, 80.4),
	}
	graphs := Graphs(scores, map[int64]float64{1: .85})

	if assert.Len(t, graphs, 2) {
		assert.Equal(t, Graph{
			SubjectID:   2,
			SubjectName: "English",
			Dates:       []string{"2024-03-01", "2024-03-05"},
			Scores:      []int{70, 91},
		}, graphs[0])
		assert.Equal(t, Graph{
			SubjectID:   1,
			SubjectName: "Math",
			Dates:       []string{"2024-03-02"},
			Scores:      []int{80},
			Goal:        null.Float64From(.85),
		}, graphs[1])
	}

	trends := Trends(graphs)
	assert.Equal(t, []Trend{
		{SubjectName: "English", Change: null.IntFrom(30), Direction: DirectionImproved},
		{SubjectName: "Math", Change: null.IntFrom(0), Direction: DirectionNoChange},
	}, trends)
}

func TestBoxPlots(t *testing.T) {
	classScores := []score.Score{
		pctScore("s2", 1, "Math", 1, 60),
		pctScore("s3", 1, "Math", 1, 70),
		pctScore("s1", 1, "Math", 2, 80),
		pctScore("s2", 2, "Science", 1, 50),
	}
	plots := BoxPlots(classScores, "s1")

	if assert.Len(t, plots, 2) {
		math := plots[0]
		assert.Equal(t, "Math", math.SubjectName)
		assert.InDeltaSlice(t, []float64{60, 70, 80}, math.AllScores, 1e-9)
		assert.True(t, math.StudentAvg.Valid)
		assert.InDelta(t, 80, math.StudentAvg.Float64, 1e-9)
		assert.InDelta(t, 70, math.Summary.Median, 1e-9)

		science := plots[1]
		assert.Equal(t, "Science", science.SubjectName)
		assert.False(t, science.StudentAvg.Valid)
	}

	assert.Empty(t, BoxPlots(nil, "s1"))
}
