// Package feasibility implements the Feasibility Checker (FC, spec §4.3):
// it rejects target/profile combinations that no realistic recipe set
// could satisfy, before the optimizer ever runs.
package feasibility

import (
	"fmt"

	"github.com/dared22/mealplanner/internal/model"
)

// Verdict is the outcome of a feasibility check.
type Verdict struct {
	Feasible bool
	Reason   string
}

// Bounds used to judge whether a macro envelope is achievable. These are
// conservative, restriction-aware density bounds per realistic recipe
// class — not physiological minimums, since the checker only needs to
// catch combinations no recipe set could meet, not certify optimality.
const (
	maxProteinGPerKcalUnrestricted = 0.12 // ~480 kcal/day could plausibly carry ~58g protein from protein-dense recipes
	maxProteinGPerKcalVegan        = 0.07 // plant protein sources are less calorie-dense per gram of protein
	minCalories                    = 1000
	maxCalories                    = 6000
)

// Check implements is_feasible(MacroTargets, UserProfile) (§4.3).
func Check(targets model.MacroTargets, profile model.UserProfile) Verdict {
	if targets.Calories < minCalories {
		return Verdict{Feasible: false, Reason: fmt.Sprintf("calorie target %.0f is below a sustainable minimum of %d", targets.Calories, minCalories)}
	}
	if targets.Calories > maxCalories {
		return Verdict{Feasible: false, Reason: fmt.Sprintf("calorie target %.0f exceeds a realistic daily maximum of %d", targets.Calories, maxCalories)}
	}

	maxRatio := maxProteinGPerKcalUnrestricted
	restricted := false
	for _, tag := range profile.DietaryRestrictions {
		if tag == "vegan" || tag == "vegetarian" {
			maxRatio = maxProteinGPerKcalVegan
			restricted = true
		}
	}

	maxAchievableProtein := targets.Calories * maxRatio
	if targets.ProteinG > maxAchievableProtein {
		reason := fmt.Sprintf(
			"protein target %.0fg cannot be met by a %.0f-kcal diet", targets.ProteinG, targets.Calories)
		if restricted {
			reason += " under the requested vegan/vegetarian restriction"
		}
		return Verdict{Feasible: false, Reason: reason}
	}

	// Macro grams must not, by themselves, already exceed the calorie
	// budget (protein/carbs ~4 kcal/g, fat ~9 kcal/g).
	impliedCalories := targets.ProteinG*4 + targets.CarbsG*4 + targets.FatG*9
	if impliedCalories > targets.Calories*1.5 {
		return Verdict{Feasible: false, Reason: "macro grams imply far more calories than the calorie target allows"}
	}

	return Verdict{Feasible: true}
}
