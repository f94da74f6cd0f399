package optimize

import (
	"context"
	"testing"
	"time"

	"github.com/dared22/mealplanner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipeFor(id int64, mealType string, nutrition model.MacroTargets) model.Recipe {
	return model.Recipe{
		ID:               id,
		Name:             mealType,
		MealTypes:        model.JSONSlice{mealType},
		CaloriesPerServe: nutrition.Calories,
		ProteinGPerServe: nutrition.ProteinG,
		CarbsGPerServe:   nutrition.CarbsG,
		FatGPerServe:     nutrition.FatG,
		Active:           true,
	}
}

func TestSolve_InfeasibleWhenSlotHasNoCandidate(t *testing.T) {
	pool := []model.Recipe{
		recipeFor(1, "breakfast", model.MacroTargets{Calories: 600}),
		// no lunch or dinner candidates
	}
	profile := model.UserProfile{MealsPerDay: 3}
	targets := model.MacroTargets{Calories: 1800}

	result := Solve(context.Background(), pool, targets, profile, nil, nil, 2*time.Second)
	assert.Equal(t, StatusInfeasible, result.Status)
	assert.NotEmpty(t, result.Reason)
}

func TestSolve_DistinctCandidatesPerSlotAssembleExactAssignment(t *testing.T) {
	breakfast := model.MacroTargets{Calories: 600, ProteinG: 30, CarbsG: 70, FatG: 20}
	lunch := model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20}
	dinner := model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20}

	// Seven distinct recipes per meal type: with 21 recipes for 21 slots
	// each recipe is used at most once, so every slot can still be filled.
	var pool []model.Recipe
	likes := map[int64]bool{}
	for i := int64(0); i < 7; i++ {
		pool = append(pool,
			recipeFor(10+i, "breakfast", breakfast),
			recipeFor(20+i, "lunch", lunch),
			recipeFor(30+i, "dinner", dinner),
		)
		likes[10+i], likes[20+i], likes[30+i] = true, true, true
	}
	profile := model.UserProfile{MealsPerDay: 3}
	targets := model.MacroTargets{
		Calories: breakfast.Calories + lunch.Calories + dinner.Calories,
		ProteinG: breakfast.ProteinG + lunch.ProteinG + dinner.ProteinG,
		CarbsG:   breakfast.CarbsG + lunch.CarbsG + dinner.CarbsG,
		FatG:     breakfast.FatG + lunch.FatG + dinner.FatG,
	}

	result := Solve(context.Background(), pool, targets, profile, likes, nil, 2*time.Second)
	require.Equal(t, StatusOptimal, result.Status)
	require.Len(t, result.Days, 7)

	for _, day := range result.Days {
		require.Len(t, day.Meals, 3)
		mealTypes := map[string]bool{}
		for _, m := range day.Meals {
			mealTypes[m.MealType] = true
			assert.Equal(t, "db", m.Source)
		}
		assert.True(t, mealTypes["breakfast"] && mealTypes["lunch"] && mealTypes["dinner"])
		assert.InDelta(t, targets.Calories, day.Totals.Calories, 0.01)
	}
}

func TestSolve_DislikedRecipeExcludedEvenIfInPool(t *testing.T) {
	target := model.MacroTargets{Calories: 600, ProteinG: 30, CarbsG: 70, FatG: 20}
	pool := []model.Recipe{
		recipeFor(1, "breakfast", target),
	}
	profile := model.UserProfile{MealsPerDay: 3}
	disliked := map[int64]bool{1: true}

	result := Solve(context.Background(), pool, model.MacroTargets{Calories: 1800}, profile, nil, disliked, 2*time.Second)
	assert.Equal(t, StatusInfeasible, result.Status)
}
