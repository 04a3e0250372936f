package score

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/alama/core"
)

const (
	scoreFormTag  = "scoreform"
	scoreFormText = "provide either a percent score, or points earned and points possible"

	scoreNegativeTag  = "scorenonneg"
	scoreNegativeText = "{0} cannot be negative"

	pointsPossibleTag  = "pointspossible"
	pointsPossibleText = "{0} must be greater than 0"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newScoreStructValidation, NewScore{})

	core.RegisterCustomTranslation(validate, translator, scoreFormTag, scoreFormText)
	core.RegisterCustomTranslation(validate, translator, scoreNegativeTag, scoreNegativeText)
	core.RegisterCustomTranslation(validate, translator, pointsPossibleTag, pointsPossibleText)
}

func newScoreStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewScore)
	if !ok {
		return
	}

	switch {
	case ns.isPercent():
		if ns.PercentScore.Float64 < 0 {
			sl.ReportError(ns.PercentScore, "percent_score", "PercentScore", scoreNegativeTag, "")
		}
	case ns.isPoints():
		if ns.PointsEarned.Float64 < 0 {
			sl.ReportError(ns.PointsEarned, "points_earned", "PointsEarned", scoreNegativeTag, "")
		}
		if ns.PointsPossible.Float64 <= 0 {
			sl.ReportError(ns.PointsPossible, "points_possible", "PointsPossible", pointsPossibleTag, "")
		}
	default:
		sl.ReportError(ns.PercentScore, "percent_score", "PercentScore", scoreFormTag, "")
	}
}
