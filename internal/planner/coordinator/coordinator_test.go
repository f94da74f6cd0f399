package coordinator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dared22/mealplanner/internal/config"
	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/pkg/stage"
	"github.com/dared22/mealplanner/internal/planner/backstop"
	"github.com/dared22/mealplanner/internal/planner/macro"
	"github.com/dared22/mealplanner/internal/repository"
)

// fakeRecipeRepository, fakeRatingRepository and fakePlanRepository give
// the coordinator an in-memory catalog/rating/history view so its
// pipeline can be exercised without a database, mirroring how the
// teacher's handler tests substitute fakes for its repository interfaces.
type fakeRecipeRepository struct {
	recipes []model.Recipe
}

func (f *fakeRecipeRepository) ListRecipes(ctx context.Context, filter repository.RecipeFilter) ([]model.Recipe, error) {
	return f.recipes, nil
}

func (f *fakeRecipeRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Recipe, error) {
	return f.recipes, nil
}

type fakeRatingRepository struct {
	likes    map[int64]bool
	dislikes map[int64]bool
	count    int64
}

func (f *fakeRatingRepository) GetLikes(ctx context.Context, userID int64) (map[int64]bool, error) {
	return f.likes, nil
}

func (f *fakeRatingRepository) GetDislikes(ctx context.Context, userID int64) (map[int64]bool, error) {
	return f.dislikes, nil
}

func (f *fakeRatingRepository) GetRatingCount(ctx context.Context, userID int64) (int64, error) {
	return f.count, nil
}

func (f *fakeRatingRepository) Rate(ctx context.Context, userID, recipeID int64, liked bool) error {
	return nil
}

type fakePlanRepository struct {
	saved []*model.WeeklyPlan
}

func (f *fakePlanRepository) GetPreviousPlanRecipeIDs(ctx context.Context, userID int64, within time.Duration) (map[int64]bool, error) {
	return nil, nil
}

func (f *fakePlanRepository) SavePlan(ctx context.Context, plan *model.WeeklyPlan) error {
	f.saved = append(f.saved, plan)
	return nil
}

func (f *fakePlanRepository) GetLatestPlan(ctx context.Context, userID int64) (*model.WeeklyPlan, error) {
	if len(f.saved) == 0 {
		return nil, nil
	}
	return f.saved[len(f.saved)-1], nil
}

type fakeAIAPIRepository struct {
	repository.AIAPIRepository
}

func (fakeAIAPIRepository) GetDefaultByUser(ctx context.Context, userID int64) (*model.AIAPI, error) {
	return nil, assert.AnError
}

type testEncryptor struct{}

func (testEncryptor) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (testEncryptor) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

func macroStub(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": body}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestStore(t *testing.T) stage.Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return stage.NewStore(client)
}

func testPlannerConfig() config.PlannerConfig {
	return config.PlannerConfig{
		PersonalizationThreshold: 5,
		SolverTimeBudget:         2 * time.Second,
		RequestTimeBudget:        5 * time.Second,
		SlowStageAfter:           10 * time.Second,
		BackstopTimeout:          2 * time.Second,
		MacroLLMTimeout:          2 * time.Second,
		PoolFloor:                1,
		PoolCap:                  500,
		LikedScore:               1,
		DislikedScore:            -1,
	}
}

func recipe(id int64, mealType string, nutrition model.MacroTargets) model.Recipe {
	return model.Recipe{
		ID:               id,
		Name:             mealType,
		MealTypes:        model.JSONSlice{mealType},
		CaloriesPerServe: nutrition.Calories,
		ProteinGPerServe: nutrition.ProteinG,
		CarbsGPerServe:   nutrition.CarbsG,
		FatGPerServe:     nutrition.FatG,
		Active:           true,
		HasFullDetails:   true,
	}
}

func awaitTerminal(t *testing.T, c *Coordinator, requestID string) *model.GenerationRequest {
	t.Helper()
	var req *model.GenerationRequest
	require.Eventually(t, func() bool {
		r, err := c.Poll(context.Background(), requestID)
		if err != nil {
			return false
		}
		if r.Stage == model.StageComplete || r.Stage == model.StageFailed || r.Stage == model.StageImpossible {
			req = r
			return true
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)
	require.NotNil(t, req, "generation never reached a terminal stage")
	return req
}

func TestSubmit_AcceptsGreedyPlanWhenBelowPersonalizationThreshold(t *testing.T) {
	server := macroStub(t, `{"calories": 1900, "protein_g": 110, "carbs_g": 220, "fat_g": 55}`)
	defer server.Close()

	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: server.URL, APIKey: "key"}
	oracle := macro.NewOracle(fakeAIAPIRepository{}, testEncryptor{}, fallback)
	gen := backstop.NewBackstop(fakeAIAPIRepository{}, testEncryptor{}, fallback)

	// Seven recipes per meal type (21 for 21 slots, so each is used at
	// most once) whose daily sum equals the stubbed targets; lunches and
	// dinners are liked, giving a liked ratio of 14/21.
	var pool []model.Recipe
	likes := map[int64]bool{}
	for i := int64(0); i < 7; i++ {
		pool = append(pool,
			recipe(1+i, "breakfast", model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15}),
			recipe(11+i, "lunch", model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20}),
			recipe(21+i, "dinner", model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20}),
		)
		likes[11+i], likes[21+i] = true, true
	}

	c := New(
		&fakeRecipeRepository{recipes: pool},
		&fakeRatingRepository{likes: likes, count: 1},
		&fakePlanRepository{},
		oracle, gen, newTestStore(t), testPlannerConfig(),
	)

	requestID, err := c.Submit(context.Background(), model.UserProfile{UserID: 1, MealsPerDay: 3}, "")
	require.NoError(t, err)

	req := awaitTerminal(t, c, requestID)
	require.Equal(t, model.StageComplete, req.Stage)
	require.NotNil(t, req.Plan)
	assert.Equal(t, model.SourceGreedy, req.Plan.GenerationSource)
}

func TestSubmit_ImpossibleWhenDerivedTargetsFailFeasibility(t *testing.T) {
	server := macroStub(t, `{"calories": 400, "protein_g": 20, "carbs_g": 30, "fat_g": 10}`)
	defer server.Close()

	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: server.URL, APIKey: "key"}
	oracle := macro.NewOracle(fakeAIAPIRepository{}, testEncryptor{}, fallback)
	gen := backstop.NewBackstop(fakeAIAPIRepository{}, testEncryptor{}, fallback)

	c := New(
		&fakeRecipeRepository{},
		&fakeRatingRepository{count: 0},
		&fakePlanRepository{},
		oracle, gen, newTestStore(t), testPlannerConfig(),
	)

	requestID, err := c.Submit(context.Background(), model.UserProfile{UserID: 2, MealsPerDay: 3}, "")
	require.NoError(t, err)

	req := awaitTerminal(t, c, requestID)
	assert.Equal(t, model.StageImpossible, req.Stage)
	assert.NotEmpty(t, req.ImpossibleWhy)
}

func TestSubmit_FailsWhenCatalogHasNoCandidates(t *testing.T) {
	server := macroStub(t, `{"calories": 1900, "protein_g": 110, "carbs_g": 220, "fat_g": 55}`)
	defer server.Close()

	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: server.URL, APIKey: "key"}
	oracle := macro.NewOracle(fakeAIAPIRepository{}, testEncryptor{}, fallback)
	gen := backstop.NewBackstop(fakeAIAPIRepository{}, testEncryptor{}, fallback)

	c := New(
		&fakeRecipeRepository{recipes: nil},
		&fakeRatingRepository{count: 0},
		&fakePlanRepository{},
		oracle, gen, newTestStore(t), testPlannerConfig(),
	)

	requestID, err := c.Submit(context.Background(), model.UserProfile{UserID: 3, MealsPerDay: 3}, "")
	require.NoError(t, err)

	req := awaitTerminal(t, c, requestID)
	assert.Equal(t, model.StageFailed, req.Stage)
}

func TestSubmit_RejectsDuplicateRequestIDWhileInFlight(t *testing.T) {
	server := macroStub(t, `{"calories": 1900, "protein_g": 110, "carbs_g": 220, "fat_g": 55}`)
	defer server.Close()

	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: server.URL, APIKey: "key"}
	oracle := macro.NewOracle(fakeAIAPIRepository{}, testEncryptor{}, fallback)
	gen := backstop.NewBackstop(fakeAIAPIRepository{}, testEncryptor{}, fallback)

	pool := []model.Recipe{
		recipe(1, "breakfast", model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15}),
		recipe(3, "lunch", model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20}),
		recipe(4, "dinner", model.MacroTargets{Calories: 700, ProteinG: 40, CarbsG: 80, FatG: 20}),
	}

	c := New(
		&fakeRecipeRepository{recipes: pool},
		&fakeRatingRepository{count: 1},
		&fakePlanRepository{},
		oracle, gen, newTestStore(t), testPlannerConfig(),
	)

	requestID, err := c.Submit(context.Background(), model.UserProfile{UserID: 4, MealsPerDay: 3}, "fixed-id")
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), model.UserProfile{UserID: 4, MealsPerDay: 3}, requestID)
	assert.Error(t, err)

	awaitTerminal(t, c, requestID)
}

func TestCancel_UnknownRequestIDReturnsNotFound(t *testing.T) {
	c := New(&fakeRecipeRepository{}, &fakeRatingRepository{}, &fakePlanRepository{}, nil, nil, newTestStore(t), testPlannerConfig())
	err := c.Cancel(context.Background(), "never-submitted")
	assert.Error(t, err)
}

func TestPoll_UnknownRequestIDReturnsNotFound(t *testing.T) {
	c := New(&fakeRecipeRepository{}, &fakeRatingRepository{}, &fakePlanRepository{}, nil, nil, newTestStore(t), testPlannerConfig())
	_, err := c.Poll(context.Background(), "never-submitted")
	assert.Error(t, err)
}
