// Package greedy implements the Greedy Fallback Planner (GFP, spec §4.6):
// a non-ILP planner used when the optimizer can't satisfy quality
// thresholds in time, or when the caller lacks rating history.
package greedy

import (
	"math/rand"

	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/planner/slots"
)

// topN is the number of top scorers sampled from at each slot, introducing
// variety while staying deterministic given a seed (§4.6 step 5).
const topN = 5

const (
	likedBonus          = 0.5
	completeBonus       = 0.2
	unusedThisWeekBonus = 0.1
)

// Plan implements plan_greedy(pool, targets, profile, likes,
// previous_week_ids) → WeeklyPlan (§4.6). It never fails — unfilled slots
// are possible but the function always returns a plan.
func Plan(pool []model.Recipe, targets model.MacroTargets, profile model.UserProfile, likes map[int64]bool, weekSlots []slots.Slot, seed int64) []model.PlannerDayPlan {
	rng := rand.New(rand.NewSource(seed))
	usedThisWeek := make(map[int64]bool)
	usedCount := make(map[int64]int)

	uniquenessCap := 1
	if len(pool) < len(weekSlots) {
		uniquenessCap = 2 // §4.4/§3 invariant 2 "Uniqueness", relaxed iff |pool| < total_slots
	}

	byDay := make(map[int]*model.PlannerDayPlan)
	for d := 0; d < 7; d++ {
		byDay[d] = &model.PlannerDayPlan{DayIndex: d}
	}

	slotsByDay := make(map[int][]slots.Slot)
	for _, s := range weekSlots {
		slotsByDay[s.Day] = append(slotsByDay[s.Day], s)
	}

	for d := 0; d < 7; d++ {
		daySlots := slotsByDay[d]
		assigned := model.MacroTargets{}
		remainingSlots := len(daySlots)

		for _, slot := range daySlots {
			remaining := model.MacroTargets{
				Calories: targets.Calories - assigned.Calories,
				ProteinG: targets.ProteinG - assigned.ProteinG,
				CarbsG:   targets.CarbsG - assigned.CarbsG,
				FatG:     targets.FatG - assigned.FatG,
			}
			ideal := model.MacroTargets{
				Calories: remaining.Calories / float64(remainingSlots),
				ProteinG: remaining.ProteinG / float64(remainingSlots),
				CarbsG:   remaining.CarbsG / float64(remainingSlots),
				FatG:     remaining.FatG / float64(remainingSlots),
			}

			eligible := eligibleFor(pool, slot.MealType, usedCount, uniquenessCap)
			if len(eligible) == 0 {
				// §4.6 step 6: mark the slot unfilled.
				byDay[d].Meals = append(byDay[d].Meals, model.PlanRecipeAssignment{
					DayIndex: d,
					MealType: slot.MealType,
				})
				remainingSlots--
				continue
			}

			top := topScorers(eligible, ideal, likes, usedThisWeek, topN)
			choice := top[rng.Intn(len(top))]

			nutrition := choice.Nutrition()
			byDay[d].Meals = append(byDay[d].Meals, model.PlanRecipeAssignment{
				DayIndex:   d,
				MealType:   slot.MealType,
				RecipeID:   choice.ID,
				RecipeName: choice.Name,
				Nutrition:  nutrition,
				Source:     "db",
			})

			assigned.Calories += nutrition.Calories
			assigned.ProteinG += nutrition.ProteinG
			assigned.CarbsG += nutrition.CarbsG
			assigned.FatG += nutrition.FatG
			usedThisWeek[choice.ID] = true
			usedCount[choice.ID]++
			remainingSlots--
		}

		byDay[d].Totals = assigned
	}

	days := make([]model.PlannerDayPlan, 0, 7)
	for d := 0; d < 7; d++ {
		days = append(days, *byDay[d])
	}
	return days
}

// eligibleFor returns pool recipes matching mealType that have not yet hit
// the hard per-recipe uniqueness cap (§3 invariant 2, §4.4 "Uniqueness");
// a recipe already used uniquenessCap times this week is excluded outright,
// not just deprioritized by the unusedThisWeekBonus scoring nudge.
func eligibleFor(pool []model.Recipe, mealType string, usedCount map[int64]int, uniquenessCap int) []model.Recipe {
	var out []model.Recipe
	for _, r := range pool {
		if !r.SupportsMealType(mealType) {
			continue
		}
		if usedCount[r.ID] >= uniquenessCap {
			continue
		}
		out = append(out, r)
	}
	return out
}

type scored struct {
	recipe model.Recipe
	score  float64
}

// topScorers implements §4.6 step 4: score by negative ideal-macro
// distance, with small bonuses for liked, complete, and previously-unused
// recipes, and returns the top N.
func topScorers(eligible []model.Recipe, ideal model.MacroTargets, likes map[int64]bool, usedThisWeek map[int64]bool, n int) []model.Recipe {
	scores := make([]scored, 0, len(eligible))
	for _, r := range eligible {
		s := -macroDistance(r, ideal)
		if likes[r.ID] {
			s += likedBonus
		}
		if r.HasFullDetails {
			s += completeBonus
		}
		if !usedThisWeek[r.ID] {
			s += unusedThisWeekBonus
		}
		scores = append(scores, scored{recipe: r, score: s})
	}

	// partial selection sort for top n, fine for pool sizes in the hundreds
	for i := 0; i < n && i < len(scores); i++ {
		best := i
		for j := i + 1; j < len(scores); j++ {
			if scores[j].score > scores[best].score {
				best = j
			}
		}
		scores[i], scores[best] = scores[best], scores[i]
	}

	limit := n
	if limit > len(scores) {
		limit = len(scores)
	}
	out := make([]model.Recipe, limit)
	for i := 0; i < limit; i++ {
		out[i] = scores[i].recipe
	}
	return out
}

func macroDistance(r model.Recipe, ideal model.MacroTargets) float64 {
	dist := 0.0
	dist += relAbs(r.CaloriesPerServe, ideal.Calories)
	dist += relAbs(r.ProteinGPerServe, ideal.ProteinG)
	dist += relAbs(r.CarbsGPerServe, ideal.CarbsG)
	dist += relAbs(r.FatGPerServe, ideal.FatG)
	return dist
}

func relAbs(actual, ideal float64) float64 {
	if ideal == 0 {
		return 0
	}
	d := actual - ideal
	if d < 0 {
		d = -d
	}
	return d / ideal
}
