package model

import "time"

// UserProfile is the immutable input to a single generation request (§3).
// It is not persisted by the generator itself — it is read from the
// questionnaire/profile store and passed through as-is.
type UserProfile struct {
	UserID              int64    `json:"user_id" validate:"required"`
	Age                 int      `json:"age" validate:"required,min=13,max=120"`
	Sex                 string   `json:"sex" validate:"required,oneof=male female"`
	HeightCM            float64  `json:"height_cm" validate:"required,min=50,max=280"`
	WeightKG            float64  `json:"weight_kg" validate:"required,min=20,max=400"`
	ActivityLevel       string   `json:"activity_level" validate:"required,oneof=sedentary light moderate active very_active"`
	NutritionGoal       string   `json:"nutrition_goal" validate:"required,oneof=lose maintain gain"`
	MealsPerDay         int      `json:"meals_per_day" validate:"omitempty,min=3,max=6"`
	BudgetTier          string   `json:"budget_tier" validate:"omitempty,oneof=low medium high"`
	MaxCookingMinutes   int      `json:"max_cooking_minutes" validate:"omitempty,min=0"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	PreferredCuisines   []string `json:"preferred_cuisines"`
	DislikedItems       []string `json:"disliked_items"`
}

// EffectiveMealsPerDay returns the profile's meals-per-day, defaulting to 3
// per §4.1.
func (p UserProfile) EffectiveMealsPerDay() int {
	if p.MealsPerDay < 3 {
		return 3
	}
	return p.MealsPerDay
}

// MacroTargets is the per-day nutrient envelope produced by the Macro
// Target Oracle and held constant across the 7-day plan (§3, §4.1).
type MacroTargets struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Get returns the value of a named macro, used by components that iterate
// over the macro set generically (feasibility checker, optimizer, grader).
func (t MacroTargets) Get(macro string) float64 {
	switch macro {
	case "kcal", "calories":
		return t.Calories
	case "protein":
		return t.ProteinG
	case "carbs":
		return t.CarbsG
	case "fat":
		return t.FatG
	}
	return 0
}

// Macros lists the canonical macro keys in the order components should
// iterate them, matching §4.4's constraint enumeration.
var Macros = []string{"kcal", "protein", "carbs", "fat"}

// Recipe is a selectable meal unit (§3). It is read-only from the
// generator's perspective; CRUD happens elsewhere.
type Recipe struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string    `gorm:"size:200;not null" json:"name"`
	MealTypes         JSONSlice `gorm:"type:json" json:"meal_types"` // subset of breakfast/lunch/dinner/snack
	CaloriesPerServe  float64   `gorm:"type:decimal(7,2)" json:"calories_per_serve"`
	ProteinGPerServe  float64   `gorm:"type:decimal(6,2)" json:"protein_g_per_serve"`
	CarbsGPerServe    float64   `gorm:"type:decimal(6,2)" json:"carbs_g_per_serve"`
	FatGPerServe      float64   `gorm:"type:decimal(6,2)" json:"fat_g_per_serve"`
	IsVegan           bool      `gorm:"default:false" json:"is_vegan"`
	IsVegetarian      bool      `gorm:"default:false" json:"is_vegetarian"`
	IsGlutenFree      bool      `gorm:"default:false" json:"is_gluten_free"`
	IsDairyFree       bool      `gorm:"default:false" json:"is_dairy_free"`
	Allergens         JSONSlice `gorm:"type:json" json:"allergens"`
	CuisineTag        string    `gorm:"size:50" json:"cuisine_tag"`
	CostTier          string    `gorm:"size:20" json:"cost_tier" validate:"omitempty,oneof=low medium high"`
	TotalCookMinutes  int       `json:"total_cook_minutes"`
	HasFullDetails    bool      `gorm:"default:true" json:"has_full_details"` // has ingredients+instructions, used by GFP §4.6 step 4
	Active            bool      `gorm:"default:true;index" json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// SupportsMealType reports whether the recipe is flagged suitable for the
// given meal-type slot (§4.2, §4.4 "meal-type suitability").
func (r Recipe) SupportsMealType(mealType string) bool {
	base := mealType
	if len(mealType) >= 5 && mealType[:5] == "snack" {
		base = "snack"
	}
	for _, mt := range r.MealTypes {
		if s, ok := mt.(string); ok && s == base {
			return true
		}
	}
	return false
}

// SatisfiesRestriction reports whether the recipe honors a single dietary
// restriction tag (§4.2 step 2).
func (r Recipe) SatisfiesRestriction(tag string) bool {
	switch tag {
	case "vegan":
		return r.IsVegan
	case "vegetarian":
		return r.IsVegetarian
	case "gluten-free":
		return r.IsGlutenFree
	case "dairy-free":
		return r.IsDairyFree
	default:
		// treat unrecognized tags as allergen names: absence satisfies them.
		for _, a := range r.Allergens {
			if s, ok := a.(string); ok && s == tag {
				return false
			}
		}
		return true
	}
}

// Nutrition returns the recipe's per-serving nutrition as a MacroTargets
// shaped value, convenient for the optimizer and grader's per-macro math.
func (r Recipe) Nutrition() MacroTargets {
	return MacroTargets{
		Calories: r.CaloriesPerServe,
		ProteinG: r.ProteinGPerServe,
		CarbsG:   r.CarbsGPerServe,
		FatG:     r.FatGPerServe,
	}
}

// Rating is a user's verdict on a recipe (§3). The generator only ever
// reads the latest state; writes are external (§9 "Rating upsert").
type Rating struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:user_recipe" json:"user_id"`
	RecipeID  int64     `gorm:"not null;uniqueIndex:user_recipe" json:"recipe_id"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// PlanSlot is one (day, meal-type) cell to be filled (§3). It exists only
// within a generation — never persisted on its own.
type PlanSlot struct {
	Day      int    `json:"day_index"` // 0..6
	MealType string `json:"slot"`      // breakfast | lunch | dinner | snack1 | snack2 ...
}

// PlanRecipeAssignment binds a Recipe to a PlanSlot (§3).
type PlanRecipeAssignment struct {
	Slot       PlanSlot     `json:"-"`
	DayIndex   int          `json:"day_index"`
	MealType   string       `json:"slot"`
	RecipeID   int64        `json:"recipe_id"`
	RecipeName string       `json:"name"`
	Nutrition  MacroTargets `json:"nutrition"`
	Source     string       `json:"source"` // "db" | "generated"
}

// QualityMetrics is the output of the Quality Grader (§4.5).
type QualityMetrics struct {
	LikedRatio        float64 `json:"liked_ratio"`
	MacroDeviationMax float64 `json:"macro_deviation_max"`
}

// RecommendationReason is one human-readable justification keyed by
// recipe id (§4.7 "Provenance", §6.3).
type RecommendationReason struct {
	RecipeID int64  `json:"recipe_id"`
	Reason   string `json:"reason"`
}

// GenerationSource is the provenance label on a plan (§3, §4.7).
type GenerationSource string

const (
	SourceOptimizer  GenerationSource = "optimizer"
	SourceGreedy     GenerationSource = "greedy"
	SourceGenerative GenerationSource = "generative"
)

// FallbackReason is the typed reason code logged when the coordinator
// descends the fallback chain (§4.7 "Observability contract").
type FallbackReason string

const (
	FallbackNone                  FallbackReason = ""
	FallbackTimeout               FallbackReason = "timeout"
	FallbackInfeasible            FallbackReason = "infeasible"
	FallbackQualityBelowThreshold FallbackReason = "quality_below_threshold"
	FallbackCoverageGap           FallbackReason = "coverage_gap"
)

// DayPlan is one day's worth of assignments and aggregated totals, shaped
// for the §6.3 wire payload.
type PlannerDayPlan struct {
	DayIndex int                     `json:"day_index"`
	Meals    []PlanRecipeAssignment  `json:"meals"`
	Totals   MacroTargets            `json:"totals"`
}

// WeeklyPlan is the full plan result emitted once per request (§3, §6.3).
type WeeklyPlan struct {
	ID                    int64                   `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID                int64                   `gorm:"not null;index" json:"user_id"`
	RequestID             string                  `gorm:"size:64;index" json:"request_id"`
	Days                  []PlannerDayPlan        `gorm:"-" json:"days"`
	GenerationSource      GenerationSource        `gorm:"size:20" json:"generation_source"`
	Quality               *QualityMetrics         `gorm:"-" json:"quality"`
	RecommendationReasons []RecommendationReason  `gorm:"-" json:"recommendation_reasons"`
	FallbackReason        FallbackReason          `gorm:"size:40" json:"fallback_reason"`
	MacroTargets          MacroTargets            `gorm:"-" json:"-"`
	PlanData              JSONMap                 `gorm:"type:json;not null" json:"-"`
	GeneratedAt           time.Time               `json:"generated_at"`
	CreatedAt             time.Time               `json:"created_at"`
}

func (WeeklyPlan) TableName() string {
	return "weekly_plans"
}

// RecipeIDs returns the set of recipe ids referenced by the plan,
// used to build next week's "previous_week_ids" exclusion set (§3 invariant 3).
func (w WeeklyPlan) RecipeIDs() map[int64]bool {
	ids := make(map[int64]bool)
	for _, day := range w.Days {
		for _, m := range day.Meals {
			if m.RecipeID != 0 {
				ids[m.RecipeID] = true
			}
		}
	}
	return ids
}

// GenerationStage is the coordinator's lifecycle stage (§4.7).
type GenerationStage string

const (
	StageQueued           GenerationStage = "queued"
	StageDerivingTargets  GenerationStage = "deriving_targets"
	StageQueryingCatalog  GenerationStage = "querying_catalog"
	StageOptimizing       GenerationStage = "optimizing"
	StageGrading          GenerationStage = "grading"
	StageFinalizing       GenerationStage = "finalizing"
	StageComplete         GenerationStage = "complete"
	StageFailed           GenerationStage = "failed"
	StageImpossible       GenerationStage = "impossible"
)

// StageOrder is the canonical stage sequence; a poller must always observe
// a prefix of this order (§8 "stage sequence" property).
var StageOrder = []GenerationStage{
	StageQueued, StageDerivingTargets, StageQueryingCatalog,
	StageOptimizing, StageGrading, StageFinalizing,
}

// GenerationRequest is the work item tracked during execution (§3).
type GenerationRequest struct {
	RequestID      string          `json:"request_id"`
	UserID         int64           `json:"user_id"`
	Stage          GenerationStage `json:"stage"`
	StartedAt      time.Time       `json:"started_at"`
	Deadline       time.Time       `json:"deadline"`
	ErrorKind      string          `json:"error_kind,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	ImpossibleWhy  string          `json:"impossible_reason,omitempty"`
	Plan           *WeeklyPlan     `json:"plan,omitempty"`
	Canceled       bool            `json:"-"`
}
