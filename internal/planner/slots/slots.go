// Package slots builds the week's (day, meal-type) slot template from a
// UserProfile's meals_per_day (spec §9 open question (a)): the current
// formulation treats snacks homogeneously, and the snack1/snack2
// tie-break order below is arbitrary and must not be asserted in tests.
package slots

import "github.com/dared22/mealplanner/internal/model"

// Slot is one (day, meal-type) cell to be filled.
type Slot struct {
	Day      int
	MealType string
}

// Build lays out all 7×mealsPerDay slots in day-major, fixed meal-type
// order (§5 "Plan assignments ... ordered first by day, then by a fixed
// meal-type order").
func Build(profile model.UserProfile) []Slot {
	template := MealTypeTemplate(profile.EffectiveMealsPerDay())

	out := make([]Slot, 0, 7*len(template))
	for d := 0; d < 7; d++ {
		for _, mt := range template {
			out = append(out, Slot{Day: d, MealType: mt})
		}
	}
	return out
}

// MealTypeTemplate returns the ordered meal-type labels for a single day
// given a meals-per-day count (3-6).
func MealTypeTemplate(mealsPerDay int) []string {
	template := []string{"breakfast", "lunch", "dinner"}
	extraSnacks := mealsPerDay - 3
	for i := 0; i < extraSnacks; i++ {
		if i == 0 {
			template = append(template, "snack1")
		} else {
			template = append(template, "snack2")
		}
	}
	return template
}
