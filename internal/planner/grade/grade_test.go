package grade

import (
	"testing"

	"github.com/dared22/mealplanner/internal/model"
	"github.com/stretchr/testify/assert"
)

func meal(recipeID int64, nutrition model.MacroTargets) model.PlanRecipeAssignment {
	return model.PlanRecipeAssignment{RecipeID: recipeID, Nutrition: nutrition}
}

func TestGrade_LikedRatioAndDeviation(t *testing.T) {
	targets := model.MacroTargets{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 60}
	days := []model.PlannerDayPlan{
		{
			DayIndex: 0,
			Meals: []model.PlanRecipeAssignment{
				meal(1, model.MacroTargets{Calories: 1000, ProteinG: 75, CarbsG: 100, FatG: 30}),
				meal(2, model.MacroTargets{Calories: 1000, ProteinG: 75, CarbsG: 100, FatG: 30}),
			},
		},
	}
	likes := map[int64]bool{1: true, 2: false}

	metrics := Grade(days, likes, targets)
	assert.Equal(t, 0.5, metrics.LikedRatio)
	assert.InDelta(t, 0.0, metrics.MacroDeviationMax, 1e-9)
}

func TestGrade_SkipsUnfilledSlots(t *testing.T) {
	targets := model.MacroTargets{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 60}
	days := []model.PlannerDayPlan{
		{
			DayIndex: 0,
			Meals: []model.PlanRecipeAssignment{
				meal(1, model.MacroTargets{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 60}),
				{RecipeID: 0},
			},
		},
	}
	likes := map[int64]bool{1: true}

	metrics := Grade(days, likes, targets)
	assert.Equal(t, 1.0, metrics.LikedRatio)
}

func TestGrade_WorstCaseDeviationAcrossDays(t *testing.T) {
	targets := model.MacroTargets{Calories: 2000, ProteinG: 100, CarbsG: 200, FatG: 60}
	days := []model.PlannerDayPlan{
		{DayIndex: 0, Meals: []model.PlanRecipeAssignment{meal(1, model.MacroTargets{Calories: 2000, ProteinG: 100, CarbsG: 200, FatG: 60})}},
		{DayIndex: 1, Meals: []model.PlanRecipeAssignment{meal(2, model.MacroTargets{Calories: 1600, ProteinG: 100, CarbsG: 200, FatG: 60})}},
	}
	likes := map[int64]bool{1: true, 2: true}

	metrics := Grade(days, likes, targets)
	assert.InDelta(t, 0.2, metrics.MacroDeviationMax, 1e-9)
}

func TestGrade_EmptyPlanHasZeroRatio(t *testing.T) {
	metrics := Grade(nil, map[int64]bool{}, model.MacroTargets{Calories: 2000})
	assert.Equal(t, 0.0, metrics.LikedRatio)
	assert.Equal(t, 0.0, metrics.MacroDeviationMax)
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts(model.QualityMetrics{LikedRatio: 0.6, MacroDeviationMax: 0.1}))
	assert.False(t, Accepts(model.QualityMetrics{LikedRatio: 0.4, MacroDeviationMax: 0.1}))
	assert.False(t, Accepts(model.QualityMetrics{LikedRatio: 0.6, MacroDeviationMax: 0.3}))
}
