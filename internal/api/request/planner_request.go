package request

// GenerateMealPlanRequest is the payload for submitting a weekly meal plan
// generation request (§6.1).
type GenerateMealPlanRequest struct {
	Age                 int      `json:"age" binding:"required,min=13,max=120"`
	Sex                 string   `json:"sex" binding:"required,oneof=male female"`
	HeightCM            float64  `json:"height_cm" binding:"required,min=50,max=280"`
	WeightKG            float64  `json:"weight_kg" binding:"required,min=20,max=400"`
	ActivityLevel       string   `json:"activity_level" binding:"required,oneof=sedentary light moderate active very_active"`
	NutritionGoal       string   `json:"nutrition_goal" binding:"required,oneof=lose maintain gain"`
	MealsPerDay         int      `json:"meals_per_day" binding:"omitempty,min=3,max=6"`
	BudgetTier          string   `json:"budget_tier" binding:"omitempty,oneof=low medium high"`
	MaxCookingMinutes   int      `json:"max_cooking_minutes" binding:"omitempty,min=0"`
	DietaryRestrictions []string `json:"dietary_restrictions" binding:"omitempty,dive,min=1,max=100"`
	PreferredCuisines   []string `json:"preferred_cuisines" binding:"omitempty,dive,min=1,max=100"`
	DislikedItems       []string `json:"disliked_items" binding:"omitempty,dive,min=1,max=100"`
}

// RateRecipeRequest is the payload for recording a like/dislike (§6.4
// get_likes/get_dislikes source data).
type RateRecipeRequest struct {
	RecipeID int64 `json:"recipe_id" binding:"required,min=1"`
	Liked    bool  `json:"liked"`
}
