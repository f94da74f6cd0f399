package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dared22/mealplanner/internal/api/request"
	"github.com/dared22/mealplanner/internal/api/response"
	"github.com/dared22/mealplanner/internal/config"
	apperrors "github.com/dared22/mealplanner/internal/errors"
	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/planner/coordinator"
	"github.com/dared22/mealplanner/internal/repository"
)

// PlannerHandler exposes the generation endpoints of §6.1/§6.2.
type PlannerHandler struct {
	*BaseHandler
	coordinator *coordinator.Coordinator
	ratings     repository.RatingRepository
	cfg         config.PlannerConfig
}

func NewPlannerHandler(c *coordinator.Coordinator, ratings repository.RatingRepository, cfg config.PlannerConfig) *PlannerHandler {
	return &PlannerHandler{
		BaseHandler: NewBaseHandler(),
		coordinator: c,
		ratings:     ratings,
		cfg:         cfg,
	}
}

// GenerateMealPlan handles POST /api/v1/meal-plans/generate (§6.1).
func (h *PlannerHandler) GenerateMealPlan(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	var req request.GenerateMealPlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	profile := model.UserProfile{
		UserID:              userID,
		Age:                 req.Age,
		Sex:                 req.Sex,
		HeightCM:            req.HeightCM,
		WeightKG:            req.WeightKG,
		ActivityLevel:       req.ActivityLevel,
		NutritionGoal:       req.NutritionGoal,
		MealsPerDay:         req.MealsPerDay,
		BudgetTier:          req.BudgetTier,
		MaxCookingMinutes:   req.MaxCookingMinutes,
		DietaryRestrictions: req.DietaryRestrictions,
		PreferredCuisines:   req.PreferredCuisines,
		DislikedItems:       req.DislikedItems,
	}

	requestID, err := h.coordinator.Submit(c.Request.Context(), profile, "")
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, response.GenerationAcceptedResponse{
		RequestID: requestID,
		Stage:     string(model.StageQueued),
	})
}

// GetGenerationStatus handles GET /api/v1/meal-plans/generate/:requestId
// (§6.2).
func (h *PlannerHandler) GetGenerationStatus(c *gin.Context) {
	requestID := c.Param("requestId")
	if requestID == "" {
		h.BadRequest(c, "requestId is required")
		return
	}

	req, err := h.coordinator.Poll(c.Request.Context(), requestID)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Only the impossible outcome carries detail (ImpossibleWhy); every
	// other failure is reported with the one generic retry message.
	errorMessage := req.ErrorMessage
	if req.Stage == model.StageFailed {
		errorMessage = apperrors.ErrAllTiersFailed.Message
	}

	resp := response.GenerationStatusResponse{
		RequestID:     req.RequestID,
		Stage:         string(req.Stage),
		ErrorMessage:  errorMessage,
		ImpossibleWhy: req.ImpossibleWhy,
	}

	// §4.7 "taking longer than usual": surfaced once the request has run
	// past slow_stage_after without reaching a terminal stage.
	if !isTerminalStage(req.Stage) && time.Since(req.StartedAt) > h.cfg.SlowStageAfter {
		resp.SlowWarning = true
	}

	if req.Plan != nil {
		resp.Plan = toWeeklyPlanPayload(req.Plan)
	}

	h.Success(c, resp)
}

// CancelGeneration handles DELETE /api/v1/meal-plans/generate/:requestId,
// honored at the coordinator's next yield point (§5).
func (h *PlannerHandler) CancelGeneration(c *gin.Context) {
	requestID := c.Param("requestId")
	if requestID == "" {
		h.BadRequest(c, "requestId is required")
		return
	}

	if err := h.coordinator.Cancel(c.Request.Context(), requestID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// RateRecipe handles POST /api/v1/recipes/rating, the source
// data behind get_likes/get_dislikes (§6.4).
func (h *PlannerHandler) RateRecipe(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	var req request.RateRecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.ratings.Rate(c.Request.Context(), userID, req.RecipeID, req.Liked); err != nil {
		h.Error(c, apperrors.Wrap(err, apperrors.ErrDatabase, "failed to save rating"))
		return
	}
	h.NoContent(c)
}

func isTerminalStage(s model.GenerationStage) bool {
	return s == model.StageComplete || s == model.StageFailed || s == model.StageImpossible
}

func toWeeklyPlanPayload(plan *model.WeeklyPlan) *response.WeeklyPlanPayload {
	days := make([]response.DayPlanPayload, 0, len(plan.Days))
	for _, d := range plan.Days {
		meals := make([]response.MealSlotPayload, 0, len(d.Meals))
		for _, m := range d.Meals {
			meals = append(meals, response.MealSlotPayload{
				Slot:     m.MealType,
				RecipeID: m.RecipeID,
				Name:     m.RecipeName,
				Nutrition: response.NutritionPayload{
					Calories: m.Nutrition.Calories,
					ProteinG: m.Nutrition.ProteinG,
					CarbsG:   m.Nutrition.CarbsG,
					FatG:     m.Nutrition.FatG,
				},
				Source: m.Source,
			})
		}
		days = append(days, response.DayPlanPayload{
			DayIndex: d.DayIndex,
			Meals:    meals,
			Totals: response.NutritionPayload{
				Calories: d.Totals.Calories,
				ProteinG: d.Totals.ProteinG,
				CarbsG:   d.Totals.CarbsG,
				FatG:     d.Totals.FatG,
			},
		})
	}

	var quality *response.QualityPayload
	if plan.Quality != nil {
		quality = &response.QualityPayload{
			LikedRatio:        plan.Quality.LikedRatio,
			MacroDeviationMax: plan.Quality.MacroDeviationMax,
		}
	}

	reasons := make([]response.RecommendationPayload, 0, len(plan.RecommendationReasons))
	for _, r := range plan.RecommendationReasons {
		reasons = append(reasons, response.RecommendationPayload{RecipeID: r.RecipeID, Reason: r.Reason})
	}

	return &response.WeeklyPlanPayload{
		Days:                  days,
		GenerationSource:      string(plan.GenerationSource),
		Quality:               quality,
		RecommendationReasons: reasons,
		FallbackReason:        string(plan.FallbackReason),
	}
}
