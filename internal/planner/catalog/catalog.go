// Package catalog implements the Catalog Query (CQ, spec §4.2): it filters
// the recipe catalog into a candidate pool honoring dietary restrictions
// and soft preferences, then caps and balances the pool for the optimizer.
package catalog

import (
	"math/rand"
	"sort"

	"github.com/dared22/mealplanner/internal/model"
)

// PoolFloor is the minimum retained-pool size below which the soft
// preference gate is progressively relaxed (§4.2 step 4): 21 slots × 4
// candidates per slot gives the optimizer room to maneuver.
const PoolFloor = 21 * 4

// PoolCap is the cap applied after relaxation, per §4.2 step 5.
const PoolCap = 400

// MealTypeSlots are the canonical meal types a pool must cover, independent
// of how many snack slots a given profile resolves to (§4.2 "CQ guarantees
// the pool ... covers all required meal types").
var MealTypeSlots = []string{"breakfast", "lunch", "dinner", "snack"}

// Result is the CQ output: the candidate pool plus a per-slot coverage map
// so downstream components can signal infeasibility (§4.2).
type Result struct {
	Pool     []model.Recipe
	Coverage map[string]int // meal type -> candidate count
}

// Candidates implements candidates(UserProfile, exclude_recipe_ids,
// previous_week_ids) → set<Recipe> (§4.2).
func Candidates(all []model.Recipe, profile model.UserProfile, dislikedIDs, previousWeekIDs map[int64]bool, seed int64) Result {
	// Step 1: active flag.
	pool := make([]model.Recipe, 0, len(all))
	for _, r := range all {
		if r.Active {
			pool = append(pool, r)
		}
	}

	// Step 2: dietary hard filter — never relaxed (§3 invariant 6).
	pool = filterDietary(pool, profile.DietaryRestrictions)

	// Step 3: historical exclusion.
	pool = filterHistory(pool, dislikedIDs, previousWeekIDs)

	// Step 4: soft preference gate, progressively relaxed if the pool
	// falls below the floor.
	withPrefs := filterSoftPreferences(pool, profile, true, true)
	if len(withPrefs) < PoolFloor {
		withPrefs = filterSoftPreferences(pool, profile, false, true) // relax cooking time first
	}
	if len(withPrefs) < PoolFloor {
		withPrefs = filterSoftPreferences(pool, profile, false, false) // then relax budget
	}
	pool = withPrefs

	// Step 5: pool cap, sampled to balance meal-type coverage.
	pool = capBalanced(pool, PoolCap, seed)

	return Result{Pool: pool, Coverage: coverage(pool)}
}

func filterDietary(in []model.Recipe, restrictions []string) []model.Recipe {
	if len(restrictions) == 0 {
		return in
	}
	out := make([]model.Recipe, 0, len(in))
	for _, r := range in {
		ok := true
		for _, tag := range restrictions {
			if !r.SatisfiesRestriction(tag) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

func filterHistory(in []model.Recipe, dislikedIDs, previousWeekIDs map[int64]bool) []model.Recipe {
	out := make([]model.Recipe, 0, len(in))
	for _, r := range in {
		if dislikedIDs[r.ID] || previousWeekIDs[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

func filterSoftPreferences(in []model.Recipe, profile model.UserProfile, enforceCookTime, enforceBudget bool) []model.Recipe {
	out := make([]model.Recipe, 0, len(in))
	for _, r := range in {
		if enforceCookTime && profile.MaxCookingMinutes > 0 && r.TotalCookMinutes > profile.MaxCookingMinutes {
			continue
		}
		if enforceBudget && profile.BudgetTier != "" && !budgetCompatible(r.CostTier, profile.BudgetTier) {
			continue
		}
		out = append(out, r)
	}
	return out
}

var budgetRank = map[string]int{"low": 0, "medium": 1, "high": 2}

// budgetCompatible allows a recipe at or below the user's budget tier.
func budgetCompatible(recipeTier, userTier string) bool {
	rt, ok1 := budgetRank[recipeTier]
	ut, ok2 := budgetRank[userTier]
	if !ok1 || !ok2 {
		return true
	}
	return rt <= ut
}

// capBalanced samples down to `cap` recipes, preserving roughly even
// coverage across meal types (§4.2 step 5). Deterministic given seed.
func capBalanced(in []model.Recipe, cap int, seed int64) []model.Recipe {
	if len(in) <= cap {
		return in
	}

	rng := rand.New(rand.NewSource(seed))
	byMealType := make(map[string][]model.Recipe)
	for _, mt := range MealTypeSlots {
		byMealType[mt] = nil
	}
	for _, r := range in {
		for _, mt := range MealTypeSlots {
			if r.SupportsMealType(mt) {
				byMealType[mt] = append(byMealType[mt], r)
			}
		}
	}

	perType := cap / len(MealTypeSlots)
	seen := make(map[int64]bool)
	out := make([]model.Recipe, 0, cap)
	for _, mt := range MealTypeSlots {
		bucket := byMealType[mt]
		rng.Shuffle(len(bucket), func(i, j int) { bucket[i], bucket[j] = bucket[j], bucket[i] })
		took := 0
		for _, r := range bucket {
			if took >= perType {
				break
			}
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
			took++
		}
	}

	// Fill remaining capacity from anything not yet picked, to use the
	// full cap when some meal types are sparse.
	if len(out) < cap {
		rest := make([]model.Recipe, 0, len(in))
		for _, r := range in {
			if !seen[r.ID] {
				rest = append(rest, r)
			}
		}
		rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
		for _, r := range rest {
			if len(out) >= cap {
				break
			}
			out = append(out, r)
			seen[r.ID] = true
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func coverage(pool []model.Recipe) map[string]int {
	cov := make(map[string]int, len(MealTypeSlots))
	for _, mt := range MealTypeSlots {
		count := 0
		for _, r := range pool {
			if r.SupportsMealType(mt) {
				count++
			}
		}
		cov[mt] = count
	}
	return cov
}
