package score

import (
	"time"

	"github.com/volatiletech/null/v8"
)

const dateLayout = "2006-01-02"

type Score struct {
	ID          int64        `json:"id" db:"id"`
	StudentID   string       `json:"student_id" db:"student_id"`
	TeacherID   string       `json:"teacher_id" db:"teacher_id"`
	SubjectID   int64        `json:"subject_id" db:"subject_id"`
	SubjectName string       `json:"subject_name" db:"subject_name"`
	Date        time.Time    `json:"date" db:"date"`
	Value       float64      `json:"value" db:"value"`
	Possible    null.Float64 `json:"possible" db:"possible"`
	Actual      null.Float64 `json:"actual" db:"actual"` // fraction in [0, 1] (may exceed 1 with bonus points)
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// ActualFraction computes the actual fraction of a score: value/possible for points
// scores, value/100 for percent scores. Invalid when possible is not positive.
func ActualFraction(value float64, possible null.Float64) null.Float64 {
	if !possible.Valid {
		return null.Float64From(value / 100)
	}
	if possible.Float64 <= 0 {
		return null.Float64{}
	}
	return null.Float64From(value / possible.Float64)
}

// NewScore is submitted for a student. Exactly one of PercentScore or
// (PointsEarned, PointsPossible) must be set.
type NewScore struct {
	SubjectID      int64        `json:"subject_id" validate:"required"`
	Date           string       `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PercentScore   null.Float64 `json:"percent_score"`
	PointsEarned   null.Float64 `json:"points_earned"`
	PointsPossible null.Float64 `json:"points_possible"`
}

func (ns NewScore) isPercent() bool {
	return ns.PercentScore.Valid && !ns.PointsEarned.Valid && !ns.PointsPossible.Valid
}

func (ns NewScore) isPoints() bool {
	return !ns.PercentScore.Valid && ns.PointsEarned.Valid && ns.PointsPossible.Valid
}

// valueAndPossible returns the raw entered value and the possible points (invalid for
// percent scores).
func (ns NewScore) valueAndPossible() (float64, null.Float64) {
	if ns.isPercent() {
		return ns.PercentScore.Float64, null.Float64{}
	}
	return ns.PointsEarned.Float64, ns.PointsPossible
}
