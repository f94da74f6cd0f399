package greedy

import (
	"testing"

	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/planner/slots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipe(id int64, mealType string, nutrition model.MacroTargets) model.Recipe {
	return model.Recipe{
		ID:               id,
		Name:             mealType,
		MealTypes:        model.JSONSlice{mealType},
		CaloriesPerServe: nutrition.Calories,
		ProteinGPerServe: nutrition.ProteinG,
		CarbsGPerServe:   nutrition.CarbsG,
		FatGPerServe:     nutrition.FatG,
		HasFullDetails:   true,
		Active:           true,
	}
}

// recipesFor builds n distinct recipes for mealType, ids starting at
// startID, all with identical nutrition — enough of them (>= 7, one per
// day) lets a test fill every day without tripping the hard uniqueness
// cap (§3 invariant 2).
func recipesFor(startID int64, n int, mealType string, nutrition model.MacroTargets) []model.Recipe {
	out := make([]model.Recipe, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, recipe(startID+int64(i), mealType, nutrition))
	}
	return out
}

func TestPlan_FillsEveryDayWhenCandidatesExist(t *testing.T) {
	var pool []model.Recipe
	pool = append(pool, recipesFor(1, 7, "breakfast", model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15})...)
	pool = append(pool, recipesFor(101, 7, "lunch", model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20})...)
	pool = append(pool, recipesFor(201, 7, "dinner", model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20})...)

	profile := model.UserProfile{MealsPerDay: 3}
	weekSlots := slots.Build(profile)
	targets := model.MacroTargets{Calories: 1900, ProteinG: 110, CarbsG: 220, FatG: 55}

	days := Plan(pool, targets, profile, nil, weekSlots, 1)
	require.Len(t, days, 7)
	for _, day := range days {
		require.Len(t, day.Meals, 3)
		for _, m := range day.Meals {
			assert.NotZero(t, m.RecipeID)
			assert.Equal(t, "db", m.Source)
		}
	}
}

func TestPlan_MarksSlotUnfilledWhenNoCandidate(t *testing.T) {
	var pool []model.Recipe
	pool = append(pool, recipesFor(1, 7, "breakfast", model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15})...)
	// no lunch or dinner candidates at all

	profile := model.UserProfile{MealsPerDay: 3}
	weekSlots := slots.Build(profile)

	days := Plan(pool, model.MacroTargets{Calories: 1900}, profile, nil, weekSlots, 1)
	require.Len(t, days, 7)
	for _, day := range days {
		var unfilled int
		for _, m := range day.Meals {
			if m.RecipeID == 0 {
				unfilled++
			}
		}
		assert.Equal(t, 2, unfilled) // lunch and dinner unfilled every day
	}
}

func TestPlan_EnforcesHardUniquenessCapWhenPoolSmallerThanSlotCount(t *testing.T) {
	// A single breakfast recipe against 7 weekly breakfast slots: pool (1) <
	// weekSlots (21), so the cap relaxes to 2 (§3 invariant 2, §4.4
	// "Uniqueness") — it must still cap usage at 2, not let the soft
	// unusedThisWeekBonus scoring nudge allow unlimited reuse.
	pool := []model.Recipe{
		recipe(1, "breakfast", model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15}),
	}
	profile := model.UserProfile{MealsPerDay: 3}
	weekSlots := slots.Build(profile)

	days := Plan(pool, model.MacroTargets{Calories: 1900}, profile, nil, weekSlots, 1)

	var uses int
	for _, day := range days {
		for _, m := range day.Meals {
			if m.RecipeID == 1 {
				uses++
			}
		}
	}
	assert.LessOrEqual(t, uses, 2, "recipe used more times than the relaxed uniqueness cap allows")
}

func TestPlan_IsDeterministicGivenSeed(t *testing.T) {
	pool := []model.Recipe{
		recipe(1, "breakfast", model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15}),
		recipe(2, "breakfast", model.MacroTargets{Calories: 520, ProteinG: 32, CarbsG: 58, FatG: 16}),
		recipe(3, "lunch", model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20}),
		recipe(4, "dinner", model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20}),
	}
	profile := model.UserProfile{MealsPerDay: 3}
	weekSlots := slots.Build(profile)
	targets := model.MacroTargets{Calories: 1900, ProteinG: 110, CarbsG: 220, FatG: 55}

	first := Plan(pool, targets, profile, nil, weekSlots, 7)
	second := Plan(pool, targets, profile, nil, weekSlots, 7)
	assert.Equal(t, first, second)
}

func TestTopScorers_RanksLikedRecipeFirstWhenMacroDistanceTies(t *testing.T) {
	liked := recipe(1, "breakfast", model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15})
	other := recipe(2, "breakfast", model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15})
	ideal := model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15}
	likes := map[int64]bool{1: true}

	top := topScorers([]model.Recipe{other, liked}, ideal, likes, map[int64]bool{}, 5)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1), top[0].ID)
}

func TestTopScorers_PrefersRecipeCloserToIdealMacros(t *testing.T) {
	near := recipe(1, "breakfast", model.MacroTargets{Calories: 510, ProteinG: 31, CarbsG: 61, FatG: 15})
	far := recipe(2, "breakfast", model.MacroTargets{Calories: 900, ProteinG: 60, CarbsG: 120, FatG: 40})
	ideal := model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15}

	top := topScorers([]model.Recipe{far, near}, ideal, map[int64]bool{}, map[int64]bool{}, 5)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1), top[0].ID)
}
