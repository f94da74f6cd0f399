package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dared22/mealplanner/internal/model"
	"gorm.io/gorm"
)

// RecipeFilter narrows list_recipes (§6.4) to active recipes only; finer
// filtering (dietary, historical, soft preference) happens in
// internal/planner/catalog, not here, so this stays a thin read adapter.
type RecipeFilter struct {
	ActiveOnly bool
}

// RecipeRepository is the generator's read-only view of the recipe catalog
// (§6.4 list_recipes).
type RecipeRepository interface {
	ListRecipes(ctx context.Context, filter RecipeFilter) ([]model.Recipe, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Recipe, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) ListRecipes(ctx context.Context, filter RecipeFilter) ([]model.Recipe, error) {
	var recipes []model.Recipe
	query := r.db.WithContext(ctx).Model(&model.Recipe{})
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recipes []model.Recipe
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// RatingRepository exposes get_likes/get_dislikes/get_rating_count (§6.4)
// plus the write path that produces them.
type RatingRepository interface {
	GetLikes(ctx context.Context, userID int64) (map[int64]bool, error)
	GetDislikes(ctx context.Context, userID int64) (map[int64]bool, error)
	GetRatingCount(ctx context.Context, userID int64) (int64, error)
	Rate(ctx context.Context, userID, recipeID int64, liked bool) error
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) GetLikes(ctx context.Context, userID int64) (map[int64]bool, error) {
	return r.ratingSet(ctx, userID, true)
}

func (r *ratingRepository) GetDislikes(ctx context.Context, userID int64) (map[int64]bool, error) {
	return r.ratingSet(ctx, userID, false)
}

func (r *ratingRepository) ratingSet(ctx context.Context, userID int64, liked bool) (map[int64]bool, error) {
	var ratings []model.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND liked = ?", userID, liked).
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(ratings))
	for _, rt := range ratings {
		set[rt.RecipeID] = true
	}
	return set, nil
}

// Rate upserts the caller's like/dislike for a recipe, the write side of
// get_likes/get_dislikes (§6.4). The unique index on (user_id, recipe_id)
// makes this idempotent on re-rating.
func (r *ratingRepository) Rate(ctx context.Context, userID, recipeID int64, liked bool) error {
	rating := model.Rating{UserID: userID, RecipeID: recipeID, Liked: liked}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Assign(model.Rating{Liked: liked}).
		FirstOrCreate(&rating).Error
}

func (r *ratingRepository) GetRatingCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PlanRepository exposes get_previous_plan_recipes/save_plan (§6.4).
type PlanRepository interface {
	GetPreviousPlanRecipeIDs(ctx context.Context, userID int64, within time.Duration) (map[int64]bool, error)
	SavePlan(ctx context.Context, plan *model.WeeklyPlan) error
	GetLatestPlan(ctx context.Context, userID int64) (*model.WeeklyPlan, error)
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) GetPreviousPlanRecipeIDs(ctx context.Context, userID int64, within time.Duration) (map[int64]bool, error) {
	var plan model.WeeklyPlan
	cutoff := time.Now().Add(-within)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND generated_at >= ?", userID, cutoff).
		Order("generated_at DESC").
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return map[int64]bool{}, nil
		}
		return nil, err
	}

	ids := map[int64]bool{}
	daysRaw, ok := plan.PlanData["days"]
	if !ok {
		return ids, nil
	}
	days, ok := daysRaw.([]interface{})
	if !ok {
		return ids, nil
	}
	for _, d := range days {
		dayMap, ok := d.(map[string]interface{})
		if !ok {
			continue
		}
		meals, ok := dayMap["meals"].([]interface{})
		if !ok {
			continue
		}
		for _, m := range meals {
			mealMap, ok := m.(map[string]interface{})
			if !ok {
				continue
			}
			if idFloat, ok := mealMap["recipe_id"].(float64); ok {
				ids[int64(idFloat)] = true
			}
		}
	}
	return ids, nil
}

// SavePlan persists the accepted WeeklyPlan as free-form JSON (§6.4, §6) —
// the payload of §6.3 plus the derived MacroTargets and generated_at.
func (r *planRepository) SavePlan(ctx context.Context, plan *model.WeeklyPlan) error {
	plan.PlanData = buildPlanData(plan)
	plan.GeneratedAt = time.Now()
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepository) GetLatestPlan(ctx context.Context, userID int64) (*model.WeeklyPlan, error) {
	var plan model.WeeklyPlan
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("generated_at DESC").
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func buildPlanData(plan *model.WeeklyPlan) model.JSONMap {
	days := make([]interface{}, 0, len(plan.Days))
	for _, d := range plan.Days {
		meals := make([]interface{}, 0, len(d.Meals))
		for _, m := range d.Meals {
			meals = append(meals, map[string]interface{}{
				"slot":      m.MealType,
				"recipe_id": m.RecipeID,
				"name":      m.RecipeName,
				"nutrition": map[string]interface{}{
					"kcal":      m.Nutrition.Calories,
					"protein_g": m.Nutrition.ProteinG,
					"carbs_g":   m.Nutrition.CarbsG,
					"fat_g":     m.Nutrition.FatG,
				},
				"source": m.Source,
			})
		}
		days = append(days, map[string]interface{}{
			"day_index": d.DayIndex,
			"meals":     meals,
			"totals": map[string]interface{}{
				"kcal":      d.Totals.Calories,
				"protein_g": d.Totals.ProteinG,
				"carbs_g":   d.Totals.CarbsG,
				"fat_g":     d.Totals.FatG,
			},
		})
	}

	reasons := make([]interface{}, 0, len(plan.RecommendationReasons))
	for _, r := range plan.RecommendationReasons {
		reasons = append(reasons, map[string]interface{}{
			"recipe_id": r.RecipeID,
			"reason":    r.Reason,
		})
	}

	var quality interface{}
	if plan.Quality != nil {
		quality = map[string]interface{}{
			"liked_ratio":         plan.Quality.LikedRatio,
			"macro_deviation_max": plan.Quality.MacroDeviationMax,
		}
	}

	return model.JSONMap{
		"days":                    days,
		"generation_source":       string(plan.GenerationSource),
		"quality":                 quality,
		"recommendation_reasons":  reasons,
		"fallback_reason":         string(plan.FallbackReason),
		"macro_targets": map[string]interface{}{
			"kcal":      plan.MacroTargets.Calories,
			"protein_g": plan.MacroTargets.ProteinG,
			"carbs_g":   plan.MacroTargets.CarbsG,
			"fat_g":     plan.MacroTargets.FatG,
		},
		"generated_at": plan.GeneratedAt,
	}
}
