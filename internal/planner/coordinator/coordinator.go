// Package coordinator implements the Generation Coordinator (GC, spec
// §4.7): the orchestrator that decides which planner to invoke, enforces
// the time budget, publishes stage transitions, applies the fallback
// chain, and emits a final plan with provenance metadata.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dared22/mealplanner/internal/config"
	"github.com/dared22/mealplanner/internal/errors"
	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/pkg/logger"
	"github.com/dared22/mealplanner/internal/pkg/stage"
	"github.com/dared22/mealplanner/internal/planner/backstop"
	"github.com/dared22/mealplanner/internal/planner/catalog"
	"github.com/dared22/mealplanner/internal/planner/feasibility"
	"github.com/dared22/mealplanner/internal/planner/grade"
	"github.com/dared22/mealplanner/internal/planner/greedy"
	"github.com/dared22/mealplanner/internal/planner/macro"
	"github.com/dared22/mealplanner/internal/planner/optimize"
	"github.com/dared22/mealplanner/internal/planner/slots"
	"github.com/dared22/mealplanner/internal/repository"
)

// Coordinator is the Generation Coordinator. One instance is shared across
// requests; per-request state lives in model.GenerationRequest, never on
// the Coordinator itself (§9 "Global coordinator state → explicit context").
type Coordinator struct {
	recipes  repository.RecipeRepository
	ratings  repository.RatingRepository
	plans    repository.PlanRepository
	oracle   *macro.Oracle
	backstop *backstop.Backstop
	stages   stage.Store
	cfg      config.PlannerConfig

	// llmLimiter bounds the process-wide rate of outbound calls to the
	// external macro_llm/backstop adapter. The Redis-backed
	// AIGenerationRateLimitMiddleware already gates how often a single
	// user may submit a request; this limiter additionally protects the
	// provider from a burst of concurrently-accepted requests each
	// spawning their own oracle/backstop call on the run() goroutine.
	llmLimiter *rate.Limiter

	mu        sync.Mutex
	cancelers map[string]context.CancelFunc
}

func New(
	recipes repository.RecipeRepository,
	ratings repository.RatingRepository,
	plans repository.PlanRepository,
	oracle *macro.Oracle,
	gen *backstop.Backstop,
	stages stage.Store,
	cfg config.PlannerConfig,
) *Coordinator {
	perSecond := cfg.LLMCallsPerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	burst := cfg.LLMBurst
	if burst <= 0 {
		burst = 10
	}
	if cfg.MacroLLMTimeout <= 0 {
		cfg.MacroLLMTimeout = 8 * time.Second // §5 MTO budget
	}

	return &Coordinator{
		recipes:    recipes,
		ratings:    ratings,
		plans:      plans,
		oracle:     oracle,
		backstop:   gen,
		stages:     stages,
		cfg:        cfg,
		llmLimiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		cancelers:  make(map[string]context.CancelFunc),
	}
}

// Submit implements §6.1: it creates a GenerationRequest and returns its
// id immediately; the request runs as a single logical task off the
// calling goroutine (§5 "Scheduling model").
func (c *Coordinator) Submit(ctx context.Context, profile model.UserProfile, requestID string) (string, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}

	if existing, err := c.stages.Get(ctx, requestID); err == nil && existing != nil && !isTerminal(existing.Stage) {
		return "", errors.ErrDuplicateRequestID
	}

	deadline := time.Now().Add(c.cfg.RequestTimeBudget)
	req := &model.GenerationRequest{
		RequestID: requestID,
		UserID:    profile.UserID,
		Stage:     model.StageQueued,
		StartedAt: time.Now(),
		Deadline:  deadline,
	}
	if err := c.stages.Put(ctx, req); err != nil {
		return "", errors.Wrap(err, errors.ErrInternalServer, "failed to persist generation request")
	}

	runCtx, cancel := context.WithDeadline(context.Background(), deadline)
	c.mu.Lock()
	c.cancelers[requestID] = cancel
	c.mu.Unlock()

	go c.run(runCtx, cancel, requestID, profile)

	return requestID, nil
}

// Poll implements §6.2: returns the current stage snapshot.
func (c *Coordinator) Poll(ctx context.Context, requestID string) (*model.GenerationRequest, error) {
	req, err := c.stages.Get(ctx, requestID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternalServer, "failed to read generation request")
	}
	if req == nil {
		return nil, errors.ErrGenerationRequestNotFound
	}
	return req, nil
}

// Cancel implements the owner-initiated cancellation of §5: the
// coordinator honors it at the next yield point.
func (c *Coordinator) Cancel(ctx context.Context, requestID string) error {
	c.mu.Lock()
	cancel, ok := c.cancelers[requestID]
	c.mu.Unlock()
	if !ok {
		return errors.ErrGenerationRequestNotFound
	}
	cancel()
	return nil
}

func isTerminal(s model.GenerationStage) bool {
	return s == model.StageComplete || s == model.StageFailed || s == model.StageImpossible
}

// run executes the full pipeline for one request. It is the sole writer
// of this request's stage record.
func (c *Coordinator) run(ctx context.Context, cancel context.CancelFunc, requestID string, profile model.UserProfile) {
	defer cancel()
	defer func() {
		c.mu.Lock()
		delete(c.cancelers, requestID)
		c.mu.Unlock()
	}()

	start := time.Now()
	log := logger.Logger.With(zap.String("request_id", requestID), zap.Int64("user_id", profile.UserID))

	setStage := func(s model.GenerationStage) {
		req, err := c.stages.Get(ctx, requestID)
		if err != nil || req == nil {
			return
		}
		req.Stage = s
		_ = c.stages.Put(ctx, req)
		log.Info("stage transition", zap.String("stage", string(s)), zap.Duration("elapsed", time.Since(start)))
	}

	fail := func(kind int, message string) {
		req, err := c.stages.Get(ctx, requestID)
		if err != nil || req == nil {
			return
		}
		req.Stage = model.StageFailed
		req.ErrorKind = fmt.Sprintf("%d", kind)
		req.ErrorMessage = message
		_ = c.stages.Put(ctx, req)
		log.Warn("generation failed", zap.String("reason", message))
	}

	impossible := func(reason string) {
		req, err := c.stages.Get(ctx, requestID)
		if err != nil || req == nil {
			return
		}
		req.Stage = model.StageImpossible
		req.ImpossibleWhy = reason
		_ = c.stages.Put(ctx, req)
		log.Info("generation impossible", zap.String("reason", reason))
	}

	if ctx.Err() != nil {
		fail(errors.ErrGenerationCanceled, "canceled before start")
		return
	}

	// Stage: deriving_targets (§4.7 step 2).
	setStage(model.StageDerivingTargets)
	if err := c.llmLimiter.Wait(ctx); err != nil {
		fail(errors.ErrGenerationCanceled, "canceled while waiting for an LLM call slot")
		return
	}
	mtoCtx, mtoCancel := context.WithTimeout(ctx, c.cfg.MacroLLMTimeout)
	targets, err := c.oracle.DeriveTargets(mtoCtx, profile)
	mtoCancel()
	if err != nil {
		fail(errors.ErrMacroDerivationFailed, "macro target oracle could not return valid numbers")
		return
	}

	verdict := feasibility.Check(targets, profile)
	if !verdict.Feasible {
		impossible(verdict.Reason)
		return
	}

	if ctx.Err() != nil {
		fail(errors.ErrGenerationCanceled, "canceled during target derivation")
		return
	}

	// Stage: querying_catalog (§4.7 step 3).
	setStage(model.StageQueryingCatalog)
	ratingCount, err := c.ratings.GetRatingCount(ctx, profile.UserID)
	if err != nil {
		fail(errors.ErrInternalServer, "failed to read rating count")
		return
	}
	likes, err := c.ratings.GetLikes(ctx, profile.UserID)
	if err != nil {
		fail(errors.ErrInternalServer, "failed to read likes")
		return
	}
	dislikes, err := c.ratings.GetDislikes(ctx, profile.UserID)
	if err != nil {
		fail(errors.ErrInternalServer, "failed to read dislikes")
		return
	}
	previousWeekIDs, err := c.plans.GetPreviousPlanRecipeIDs(ctx, profile.UserID, 7*24*time.Hour)
	if err != nil {
		fail(errors.ErrInternalServer, "failed to read previous week's plan")
		return
	}
	allRecipes, err := c.recipes.ListRecipes(ctx, repository.RecipeFilter{ActiveOnly: true})
	if err != nil {
		fail(errors.ErrInternalServer, "failed to list recipes")
		return
	}

	result := catalog.Candidates(allRecipes, profile, dislikes, previousWeekIDs, start.UnixNano())
	if len(result.Pool) == 0 {
		fail(errors.ErrNoViableRecipes, "no recipes satisfy the dietary restrictions")
		return
	}

	if ctx.Err() != nil {
		fail(errors.ErrGenerationCanceled, "canceled after catalog query")
		return
	}

	// Stage: optimizing (§4.7 step 4: route on rating count).
	setStage(model.StageOptimizing)
	var (
		days           []model.PlannerDayPlan
		metrics        model.QualityMetrics
		source         model.GenerationSource
		fallbackReason model.FallbackReason
		accepted       bool
	)

	weekSlots := slots.Build(profile)

	if ratingCount >= int64(c.cfg.PersonalizationThreshold) {
		optResult := optimize.Solve(ctx, result.Pool, targets, profile, likes, dislikes, c.cfg.SolverTimeBudget)
		if optResult.Status == optimize.StatusOptimal || optResult.Status == optimize.StatusFeasible {
			setStage(model.StageGrading)
			m := grade.Grade(optResult.Days, likes, targets)
			if grade.Accepts(m) {
				days, metrics, source, accepted = optResult.Days, m, model.SourceOptimizer, true
			} else {
				fallbackReason = model.FallbackQualityBelowThreshold
				log.Info("optimizer plan below quality threshold, falling back", zap.Float64("liked_ratio", m.LikedRatio), zap.Float64("macro_deviation_max", m.MacroDeviationMax))
			}
		} else {
			if optResult.Status == optimize.StatusTimeout {
				fallbackReason = model.FallbackTimeout
			} else {
				fallbackReason = model.FallbackInfeasible
			}
			log.Info("optimizer did not produce an acceptable plan, falling back", zap.String("status", string(optResult.Status)), zap.String("reason", optResult.Reason))
		}
	} else {
		fallbackReason = "" // not a fallback — cold-start users route to greedy directly
	}

	// Fallback chain step: greedy (§4.7 step 5).
	if !accepted && time.Since(start) < c.cfg.RequestTimeBudget {
		greedyDays := greedy.Plan(result.Pool, targets, profile, likes, weekSlots, start.UnixNano())
		setStage(model.StageGrading)
		m := grade.Grade(greedyDays, likes, targets)
		if grade.Accepts(m) {
			days, metrics, source, accepted = greedyDays, m, model.SourceGreedy, true
			if fallbackReason == "" && ratingCount >= int64(c.cfg.PersonalizationThreshold) {
				fallbackReason = model.FallbackCoverageGap
			}
		} else {
			days = greedyDays // carried forward in case the generative backstop only needs to patch unfilled slots
			if fallbackReason == "" {
				fallbackReason = model.FallbackQualityBelowThreshold
			}
		}
	}

	// Fallback chain step: generative backstop (§4.7 step 5, §4.8).
	if !accepted && time.Since(start) < c.cfg.RequestTimeBudget {
		backstopCtx, backstopCancel := context.WithTimeout(ctx, c.cfg.BackstopTimeout)
		if err := c.llmLimiter.Wait(backstopCtx); err != nil {
			backstopCancel()
			fail(errors.ErrGenerationUnavailable, "could not generate plan, please retry")
			return
		}
		filled, err := c.backstop.FillUnfilled(backstopCtx, days, targets, profile)
		backstopCancel()
		if err != nil {
			fail(errors.ErrGenerationUnavailable, "could not generate plan, please retry")
			return
		}
		days, source, accepted = filled, model.SourceGenerative, true
		metrics = model.QualityMetrics{} // §4.7: "the coordinator does not grade the backstop output"
	}

	if ctx.Err() != nil {
		fail(errors.ErrGenerationCanceled, "canceled before finalizing")
		return
	}

	if !accepted {
		fail(errors.ErrGenerationUnavailable, "could not generate plan, please retry")
		return
	}

	// Stage: finalizing (§4.7 step 6).
	setStage(model.StageFinalizing)
	var qualityPtr *model.QualityMetrics
	if source != model.SourceGenerative {
		qualityPtr = &metrics
	}

	plan := &model.WeeklyPlan{
		UserID:                profile.UserID,
		RequestID:             requestID,
		Days:                  days,
		GenerationSource:      source,
		Quality:               qualityPtr,
		RecommendationReasons: buildRecommendationReasons(days, likes),
		FallbackReason:        fallbackReason,
		MacroTargets:          targets,
	}

	if err := c.plans.SavePlan(ctx, plan); err != nil {
		fail(errors.ErrInternalServer, "failed to persist accepted plan")
		return
	}

	req, err := c.stages.Get(ctx, requestID)
	if err == nil && req != nil {
		req.Stage = model.StageComplete
		req.Plan = plan
		_ = c.stages.Put(ctx, req)
	}
	log.Info("generation complete", zap.String("source", string(source)), zap.Duration("elapsed", time.Since(start)))
}

// buildRecommendationReasons produces the human-readable justifications
// named in §4.7 "Provenance" / §6.3, grounded on the teacher's
// buildTrainingPlanPrompt style of summarizing structured input into
// short sentences.
func buildRecommendationReasons(days []model.PlannerDayPlan, likes map[int64]bool) []model.RecommendationReason {
	var reasons []model.RecommendationReason
	seen := make(map[int64]bool)

	for _, day := range days {
		for _, m := range day.Meals {
			if m.RecipeID == 0 || seen[m.RecipeID] {
				continue
			}
			seen[m.RecipeID] = true
			if likes[m.RecipeID] {
				reasons = append(reasons, model.RecommendationReason{
					RecipeID: m.RecipeID,
					Reason:   "you've liked this recipe before",
				})
			}
		}
	}
	return reasons
}
