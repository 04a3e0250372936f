package stats

import (
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/goal"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/score"
)

// MsgNotEnoughData is reported when a student has no scores yet.
const MsgNotEnoughData = "Not enough data yet."

type StatsReport struct {
	Student        school.StudentInfo `json:"student"`
	Graphs         []Graph            `json:"graphs"`
	SubjectChanges []Trend            `json:"subject_changes"`
	BoxPlots       []BoxPlot          `json:"box_plots"`
	Message        null.String        `json:"message"`
}

// BuildStatsReport aggregates the scores of a student (ordered by subject name then date)
// and compares them with the class scores of their teacher.
func BuildStatsReport(std school.StudentInfo, scores, classScores []score.Score, goals []goal.Goal) StatsReport {
	if len(scores) == 0 {
		return StatsReport{
			Student:        std,
			Graphs:         []Graph{},
			SubjectChanges: []Trend{},
			BoxPlots:       []BoxPlot{},
			Message:        null.StringFrom(MsgNotEnoughData),
		}
	}

	targets := make(map[int64]float64, len(goals))
	for _, g := range goals {
		targets[g.SubjectID] = g.Target
	}
	graphs := Graphs(scores, targets)
	return StatsReport{
		Student:        std,
		Graphs:         graphs,
		SubjectChanges: Trends(graphs),
		BoxPlots:       BoxPlots(classScores, std.StudentID),
	}
}

type SubjectEntry struct {
	Subject school.Subject `json:"subject"`
	Scores  []score.Score  `json:"scores"` // most recent first
	Average null.Float64   `json:"average"`
	Band    string         `json:"band"`
	Goal    null.Float64   `json:"goal"`
}

type EntryReport struct {
	Student  school.StudentInfo `json:"student"`
	Subjects []SubjectEntry     `json:"subjects"`
}

// BuildEntryReport lists, for each subject of the student's teacher, the student's scores
// with their average.
func BuildEntryReport(std school.StudentInfo, subjects []school.Subject, scores []score.Score, goals []goal.Goal) EntryReport {
	bySubject := make(map[int64][]score.Score)
	for _, sc := range scores {
		bySubject[sc.SubjectID] = append(bySubject[sc.SubjectID], sc)
	}
	targets := goal.BySubject(goals)

	entries := make([]SubjectEntry, 0, len(subjects))
	for _, sub := range subjects {
		subScores := bySubject[sub.ID]
		sort.SliceStable(subScores, func(i, j int) bool {
			return subScores[i].Date.After(subScores[j].Date)
		})
		if subScores == nil {
			subScores = []score.Score{}
		}

		avg := Average(subScores)
		entry := SubjectEntry{Subject: sub, Scores: subScores, Average: avg, Band: Band(avg)}
		if g, ok := targets[sub.ID]; ok {
			entry.Goal = null.Float64From(g.Target)
		}
		entries = append(entries, entry)
	}
	return EntryReport{Student: std, Subjects: entries}
}
