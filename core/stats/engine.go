// Package stats aggregates score rows into averages, trends and box plots.
// Every function is pure: missing data yields neutral results, never errors.
package stats

import (
	"math"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/score"
)

// Score bands
const (
	BandNone   = "none"
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"
)

// Trend directions
const (
	DirectionImproved  = "improved"
	DirectionDeclined  = "declined"
	DirectionNoChange  = "no change"
	DirectionUndefined = "undefined"
)

const dateLayout = "2006-01-02"

// Round rounds half toward positive infinity (2.5 -> 3, -2.5 -> -2).
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Percent converts a fraction to a whole percent.
func Percent(fraction float64) int {
	return int(Round(fraction * 100))
}

// Average is the mean actual fraction of scores. Scores without an actual fraction are
// ignored; null when nothing is left.
func Average(scores []score.Score) null.Float64 {
	var (
		sum float64
		n   int
	)
	for _, sc := range scores {
		if sc.Actual.Valid {
			sum += sc.Actual.Float64
			n++
		}
	}
	if n == 0 {
		return null.Float64{}
	}
	return null.Float64From(sum / float64(n))
}

// Band classifies an average fraction.
func Band(avg null.Float64) string {
	if !avg.Valid {
		return BandNone
	}
	pct := avg.Float64 * 100
	switch {
	case pct >= 90:
		return BandHigh
	case pct >= 70:
		return BandMedium
	default:
		return BandLow
	}
}

type Trend struct {
	SubjectName string   `json:"subject_name"`
	Change      null.Int `json:"change"` // percent change from first to last score
	Direction   string   `json:"direction"`
}

// ComputeTrend compares the first and last of chronologically ordered percents.
func ComputeTrend(subjectName string, percents []int) Trend {
	if len(percents) < 2 {
		return Trend{SubjectName: subjectName, Change: null.IntFrom(0), Direction: DirectionNoChange}
	}
	first, last := percents[0], percents[len(percents)-1]
	if first == 0 {
		return Trend{SubjectName: subjectName, Direction: DirectionUndefined}
	}

	change := float64(last-first) / float64(first) * 100
	dir := DirectionImproved
	if change < 0 {
		dir = DirectionDeclined
	}
	return Trend{SubjectName: subjectName, Change: null.IntFrom(int(Round(change))), Direction: dir}
}

// Percentile interpolates linearly between the closest ranks of sorted. p is in [0, 100].
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := p / 100 * float64(n-1)
	lower, upper := int(math.Floor(idx)), int(math.Ceil(idx))
	weight := idx - float64(lower)
	return sorted[lower] + weight*(sorted[upper]-sorted[lower])
}

type Summary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Summarize computes the five-number summary of values, which are left untouched.
func Summarize(values []float64) Summary {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Summary{
		Min:    Percentile(sorted, 0),
		Q1:     Percentile(sorted, 25),
		Median: Percentile(sorted, 50),
		Q3:     Percentile(sorted, 75),
		Max:    Percentile(sorted, 100),
	}
}

type Graph struct {
	SubjectID   int64        `json:"subject_id"`
	SubjectName string       `json:"subject_name"`
	Dates       []string     `json:"dates"`
	Scores      []int        `json:"scores"` // whole percents
	Goal        null.Float64 `json:"goal"`
}

type BoxPlot struct {
	SubjectName string       `json:"subject_name"`
	AllScores   []float64    `json:"all_scores"` // percents of the whole class
	StudentAvg  null.Float64 `json:"student_avg"`
	Summary     Summary      `json:"summary"`
}

type subjectGroup struct {
	id     int64
	name   string
	scores []score.Score
}

// groupBySubject groups scores by subject name, in order of first appearance.
// Scores without an actual fraction are dropped.
func groupBySubject(scores []score.Score) []*subjectGroup {
	var groups []*subjectGroup
	idx := make(map[string]*subjectGroup)
	for _, sc := range scores {
		if !sc.Actual.Valid {
			continue
		}
		grp, ok := idx[sc.SubjectName]
		if !ok {
			grp = &subjectGroup{id: sc.SubjectID, name: sc.SubjectName}
			idx[sc.SubjectName] = grp
			groups = append(groups, grp)
		}
		grp.scores = append(grp.scores, sc)
	}
	return groups
}

// Graphs builds a line series per subject out of a student's scores ordered by subject
// name then date. goals maps subject ids to target fractions.
func Graphs(scores []score.Score, goals map[int64]float64) []Graph {
	groups := groupBySubject(scores)
	graphs := make([]Graph, 0, len(groups))
	for _, grp := range groups {
		g := Graph{
			SubjectID:   grp.id,
			SubjectName: grp.name,
			Dates:       make([]string, 0, len(grp.scores)),
			Scores:      make([]int, 0, len(grp.scores)),
		}
		for _, sc := range grp.scores {
			g.Dates = append(g.Dates, sc.Date.Format(dateLayout))
			g.Scores = append(g.Scores, Percent(sc.Actual.Float64))
		}
		if target, ok := goals[grp.id]; ok {
			g.Goal = null.Float64From(target)
		}
		graphs = append(graphs, g)
	}
	return graphs
}

// Trends computes the trend of every graph.
func Trends(graphs []Graph) []Trend {
	trends := make([]Trend, 0, len(graphs))
	for _, g := range graphs {
		trends = append(trends, ComputeTrend(g.SubjectName, g.Scores))
	}
	return trends
}

// BoxPlots compares a student with the whole class, per subject. classScores are all the
// scores recorded by the student's teacher, ordered by subject name.
func BoxPlots(classScores []score.Score, studentID string) []BoxPlot {
	groups := groupBySubject(classScores)
	plots := make([]BoxPlot, 0, len(groups))
	for _, grp := range groups {
		var (
			values     = make([]float64, 0, len(grp.scores))
			studentSum float64
			studentN   int
		)
		for _, sc := range grp.scores {
			v := sc.Actual.Float64 * 100
			values = append(values, v)
			if sc.StudentID == studentID {
				studentSum += v
				studentN++
			}
		}

		bp := BoxPlot{SubjectName: grp.name, AllScores: values, Summary: Summarize(values)}
		if studentN > 0 {
			bp.StudentAvg = null.Float64From(studentSum / float64(studentN))
		}
		plots = append(plots, bp)
	}
	return plots
}
