// Package grade implements the Quality Grader (QG, spec §4.5): it scores
// a candidate WeeklyPlan's liked-recipe ratio and worst-case macro
// deviation against the target envelope.
package grade

import (
	"math"

	"github.com/dared22/mealplanner/internal/model"
)

// AcceptLikedRatioMin and AcceptMacroDeviationMax are the thresholds GC
// applies to any candidate plan before accepting it (§4.5).
const (
	AcceptLikedRatioMin     = 0.5
	AcceptMacroDeviationMax = 0.20
)

// Grade implements grade(WeeklyPlan, likes, targets) → QualityMetrics (§4.5).
func Grade(days []model.PlannerDayPlan, likes map[int64]bool, targets model.MacroTargets) model.QualityMetrics {
	var liked, total int
	maxDeviation := 0.0

	for _, day := range days {
		dayTotal := model.MacroTargets{}
		for _, m := range day.Meals {
			if m.RecipeID == 0 {
				continue // unfilled slot; excluded from both ratio and deviation
			}
			total++
			if likes[m.RecipeID] {
				liked++
			}
			dayTotal.Calories += m.Nutrition.Calories
			dayTotal.ProteinG += m.Nutrition.ProteinG
			dayTotal.CarbsG += m.Nutrition.CarbsG
			dayTotal.FatG += m.Nutrition.FatG
		}

		for _, macro := range model.Macros {
			target := macroValue(targets, macro)
			if target == 0 {
				continue
			}
			actual := macroValue(dayTotal, macro)
			deviation := math.Abs(actual-target) / target
			if deviation > maxDeviation {
				maxDeviation = deviation
			}
		}
	}

	likedRatio := 0.0
	if total > 0 {
		likedRatio = float64(liked) / float64(total)
	}

	return model.QualityMetrics{
		LikedRatio:        likedRatio,
		MacroDeviationMax: maxDeviation,
	}
}

func macroValue(t model.MacroTargets, macro string) float64 {
	switch macro {
	case "kcal":
		return t.Calories
	case "protein":
		return t.ProteinG
	case "carbs":
		return t.CarbsG
	case "fat":
		return t.FatG
	}
	return 0
}

// Accepts reports whether a plan's metrics clear GC's acceptance
// thresholds (§4.5).
func Accepts(m model.QualityMetrics) bool {
	return m.LikedRatio >= AcceptLikedRatioMin && m.MacroDeviationMax <= AcceptMacroDeviationMax
}
