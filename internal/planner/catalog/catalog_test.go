package catalog

import (
	"testing"

	"github.com/dared22/mealplanner/internal/model"
	"github.com/stretchr/testify/assert"
)

func recipe(id int64, mealTypes []string, opts ...func(*model.Recipe)) model.Recipe {
	slice := make(model.JSONSlice, len(mealTypes))
	for i, mt := range mealTypes {
		slice[i] = mt
	}
	r := model.Recipe{ID: id, MealTypes: slice, Active: true, TotalCookMinutes: 20, CostTier: "low"}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func TestCandidates_DropsInactiveRecipes(t *testing.T) {
	all := []model.Recipe{
		recipe(1, []string{"breakfast"}),
		recipe(2, []string{"breakfast"}, func(r *model.Recipe) { r.Active = false }),
	}

	result := Candidates(all, model.UserProfile{}, nil, nil, 1)
	assert.Len(t, result.Pool, 1)
	assert.Equal(t, int64(1), result.Pool[0].ID)
}

func TestCandidates_DietaryFilterNeverRelaxed(t *testing.T) {
	all := []model.Recipe{
		recipe(1, []string{"breakfast"}, func(r *model.Recipe) { r.IsVegan = true }),
		recipe(2, []string{"breakfast"}, func(r *model.Recipe) { r.IsVegan = false }),
	}
	profile := model.UserProfile{DietaryRestrictions: []string{"vegan"}}

	result := Candidates(all, profile, nil, nil, 1)
	assert.Len(t, result.Pool, 1)
	assert.Equal(t, int64(1), result.Pool[0].ID)
}

func TestCandidates_ExcludesDislikedAndPreviousWeek(t *testing.T) {
	all := []model.Recipe{
		recipe(1, []string{"breakfast"}),
		recipe(2, []string{"breakfast"}),
		recipe(3, []string{"breakfast"}),
	}
	disliked := map[int64]bool{1: true}
	previous := map[int64]bool{2: true}

	result := Candidates(all, model.UserProfile{}, disliked, previous, 1)
	assert.Len(t, result.Pool, 1)
	assert.Equal(t, int64(3), result.Pool[0].ID)
}

func TestCandidates_RelaxesSoftPreferencesBelowFloor(t *testing.T) {
	all := make([]model.Recipe, 0, PoolFloor-1)
	for i := 0; i < PoolFloor-1; i++ {
		all = append(all, recipe(int64(i+1), []string{"breakfast"}, func(r *model.Recipe) {
			r.TotalCookMinutes = 90
			r.CostTier = "high"
		}))
	}
	profile := model.UserProfile{MaxCookingMinutes: 15, BudgetTier: "low"}

	result := Candidates(all, profile, nil, nil, 1)
	// The cook-time/budget gate would otherwise drop every recipe; since the
	// pool falls below PoolFloor, the gate is progressively relaxed and the
	// whole pool survives.
	assert.Len(t, result.Pool, PoolFloor-1)
}

func TestCandidates_CoversAllMealTypes(t *testing.T) {
	all := []model.Recipe{
		recipe(1, []string{"breakfast"}),
		recipe(2, []string{"lunch"}),
		recipe(3, []string{"dinner"}),
		recipe(4, []string{"snack"}),
	}

	result := Candidates(all, model.UserProfile{}, nil, nil, 1)
	for _, mt := range MealTypeSlots {
		assert.Equal(t, 1, result.Coverage[mt], "meal type %s", mt)
	}
}

func TestCandidates_CapsPoolSize(t *testing.T) {
	all := make([]model.Recipe, 0, PoolCap+50)
	for i := 0; i < PoolCap+50; i++ {
		all = append(all, recipe(int64(i+1), []string{"breakfast", "lunch", "dinner", "snack"}))
	}

	result := Candidates(all, model.UserProfile{}, nil, nil, 42)
	assert.LessOrEqual(t, len(result.Pool), PoolCap)
}

func TestCandidates_CapBalancedIsDeterministic(t *testing.T) {
	all := make([]model.Recipe, 0, PoolCap+50)
	for i := 0; i < PoolCap+50; i++ {
		all = append(all, recipe(int64(i+1), []string{"breakfast", "lunch", "dinner", "snack"}))
	}

	first := Candidates(all, model.UserProfile{}, nil, nil, 7)
	second := Candidates(all, model.UserProfile{}, nil, nil, 7)
	assert.Equal(t, first.Pool, second.Pool)
}
