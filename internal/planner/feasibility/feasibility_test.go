package feasibility

import (
	"testing"

	"github.com/dared22/mealplanner/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCheck_Accepts(t *testing.T) {
	targets := model.MacroTargets{Calories: 2000, ProteinG: 120, CarbsG: 220, FatG: 60}
	profile := model.UserProfile{}

	verdict := Check(targets, profile)
	assert.True(t, verdict.Feasible)
	assert.Empty(t, verdict.Reason)
}

func TestCheck_CaloriesTooLow(t *testing.T) {
	targets := model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 50, FatG: 15}

	verdict := Check(targets, model.UserProfile{})
	assert.False(t, verdict.Feasible)
	assert.Contains(t, verdict.Reason, "sustainable minimum")
}

func TestCheck_CaloriesTooHigh(t *testing.T) {
	targets := model.MacroTargets{Calories: 8000, ProteinG: 200, CarbsG: 600, FatG: 150}

	verdict := Check(targets, model.UserProfile{})
	assert.False(t, verdict.Feasible)
	assert.Contains(t, verdict.Reason, "realistic daily maximum")
}

func TestCheck_ProteinUnachievable(t *testing.T) {
	targets := model.MacroTargets{Calories: 1500, ProteinG: 400, CarbsG: 100, FatG: 40}

	verdict := Check(targets, model.UserProfile{})
	assert.False(t, verdict.Feasible)
	assert.Contains(t, verdict.Reason, "cannot be met")
}

func TestCheck_VeganTighterProteinBound(t *testing.T) {
	// Achievable unrestricted (0.12 ratio allows 240g at 2000 kcal) but not
	// under the vegan bound (0.07 ratio allows 140g at 2000 kcal).
	targets := model.MacroTargets{Calories: 2000, ProteinG: 180, CarbsG: 220, FatG: 60}
	profile := model.UserProfile{DietaryRestrictions: []string{"vegan"}}

	verdict := Check(targets, profile)
	assert.False(t, verdict.Feasible)
	assert.Contains(t, verdict.Reason, "vegan/vegetarian restriction")
}

func TestCheck_MacroGramsExceedCalories(t *testing.T) {
	targets := model.MacroTargets{Calories: 1200, ProteinG: 150, CarbsG: 200, FatG: 100}

	verdict := Check(targets, model.UserProfile{})
	assert.False(t, verdict.Feasible)
	assert.Contains(t, verdict.Reason, "imply far more calories")
}
