package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserProfile_EffectiveMealsPerDay(t *testing.T) {
	assert.Equal(t, 3, UserProfile{}.EffectiveMealsPerDay())
	assert.Equal(t, 3, UserProfile{MealsPerDay: 2}.EffectiveMealsPerDay())
	assert.Equal(t, 5, UserProfile{MealsPerDay: 5}.EffectiveMealsPerDay())
}

func TestMacroTargets_Get(t *testing.T) {
	targets := MacroTargets{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 60}
	assert.Equal(t, 2000.0, targets.Get("kcal"))
	assert.Equal(t, 2000.0, targets.Get("calories"))
	assert.Equal(t, 150.0, targets.Get("protein"))
	assert.Equal(t, 200.0, targets.Get("carbs"))
	assert.Equal(t, 60.0, targets.Get("fat"))
	assert.Equal(t, 0.0, targets.Get("unknown"))
}

func TestRecipe_SupportsMealType(t *testing.T) {
	r := Recipe{MealTypes: JSONSlice{"breakfast", "snack"}}
	assert.True(t, r.SupportsMealType("breakfast"))
	assert.False(t, r.SupportsMealType("lunch"))
	assert.True(t, r.SupportsMealType("snack1"), "any slot beginning with snack should match a snack-tagged recipe")
	assert.True(t, r.SupportsMealType("snack2"))
}

func TestRecipe_SatisfiesRestriction(t *testing.T) {
	vegan := Recipe{IsVegan: true}
	assert.True(t, vegan.SatisfiesRestriction("vegan"))
	assert.False(t, vegan.SatisfiesRestriction("vegetarian"))

	withPeanuts := Recipe{Allergens: JSONSlice{"peanuts"}}
	assert.False(t, withPeanuts.SatisfiesRestriction("peanuts"))
	assert.True(t, withPeanuts.SatisfiesRestriction("shellfish"))
}

func TestRecipe_Nutrition(t *testing.T) {
	r := Recipe{CaloriesPerServe: 500, ProteinGPerServe: 30, CarbsGPerServe: 60, FatGPerServe: 15}
	n := r.Nutrition()
	assert.Equal(t, MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15}, n)
}

func TestWeeklyPlan_RecipeIDs(t *testing.T) {
	plan := WeeklyPlan{
		Days: []PlannerDayPlan{
			{Meals: []PlanRecipeAssignment{{RecipeID: 1}, {RecipeID: 0}, {RecipeID: 2}}},
			{Meals: []PlanRecipeAssignment{{RecipeID: 2}, {RecipeID: 3}}},
		},
	}

	ids := plan.RecipeIDs()
	assert.Len(t, ids, 3)
	assert.True(t, ids[1] && ids[2] && ids[3])
	assert.False(t, ids[0])
}
