package backstop

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dared22/mealplanner/internal/config"
	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAIAPIRepository struct {
	repository.AIAPIRepository
	defaultAPI *model.AIAPI
	err        error
}

func (f *fakeAIAPIRepository) GetDefaultByUser(ctx context.Context, userID int64) (*model.AIAPI, error) {
	return f.defaultAPI, f.err
}

type testEncryptor struct{}

func (testEncryptor) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (testEncryptor) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

func openAIStub(t *testing.T, bodies ...string) *httptest.Server {
	t.Helper()
	var calls int
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := bodies[calls%len(bodies)]
		calls++
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func dayWithUnfilledSlot() model.PlannerDayPlan {
	return model.PlannerDayPlan{
		DayIndex: 0,
		Meals: []model.PlanRecipeAssignment{
			{RecipeID: 1, MealType: "breakfast", Source: "db", Nutrition: model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15}},
			{RecipeID: 0, MealType: "lunch"},
		},
		Totals: model.MacroTargets{Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15},
	}
}

func TestFillUnfilled_LeavesAlreadyFilledSlotsUntouched(t *testing.T) {
	server := openAIStub(t, `{"name": "Synth Bowl", "calories": 700, "protein_g": 40, "carbs_g": 80, "fat_g": 20}`)
	defer server.Close()

	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: server.URL, APIKey: "key"}
	b := NewBackstop(&fakeAIAPIRepository{err: assert.AnError}, testEncryptor{}, fallback)

	days := []model.PlannerDayPlan{dayWithUnfilledSlot()}
	targets := model.MacroTargets{Calories: 1900, ProteinG: 130, CarbsG: 200, FatG: 55}

	out, err := b.FillUnfilled(context.Background(), days, targets, model.UserProfile{UserID: 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Meals, 2)

	untouched := out[0].Meals[0]
	assert.Equal(t, int64(1), untouched.RecipeID)
	assert.Equal(t, "db", untouched.Source)

	filled := out[0].Meals[1]
	assert.Equal(t, int64(0), filled.RecipeID)
	assert.Equal(t, "generated", filled.Source)
	assert.Equal(t, "Synth Bowl", filled.RecipeName)
	assert.Equal(t, 700.0, filled.Nutrition.Calories)
}

func TestFillUnfilled_AccumulatesTotalsFromGeneratedMeals(t *testing.T) {
	server := openAIStub(t, `{"name": "Synth Bowl", "calories": 700, "protein_g": 40, "carbs_g": 80, "fat_g": 20}`)
	defer server.Close()

	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: server.URL, APIKey: "key"}
	b := NewBackstop(&fakeAIAPIRepository{err: assert.AnError}, testEncryptor{}, fallback)

	days := []model.PlannerDayPlan{dayWithUnfilledSlot()}
	out, err := b.FillUnfilled(context.Background(), days, model.MacroTargets{Calories: 1900}, model.UserProfile{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, out[0].Totals.Calories)
	assert.Equal(t, 70.0, out[0].Totals.ProteinG)
}

func TestFillUnfilled_DoesNotMutateInputSlice(t *testing.T) {
	server := openAIStub(t, `{"name": "Synth Bowl", "calories": 700, "protein_g": 40, "carbs_g": 80, "fat_g": 20}`)
	defer server.Close()

	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: server.URL, APIKey: "key"}
	b := NewBackstop(&fakeAIAPIRepository{err: assert.AnError}, testEncryptor{}, fallback)

	days := []model.PlannerDayPlan{dayWithUnfilledSlot()}
	_, err := b.FillUnfilled(context.Background(), days, model.MacroTargets{Calories: 1900}, model.UserProfile{UserID: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(0), days[0].Meals[1].RecipeID)
	assert.Empty(t, days[0].Meals[1].Source)
}

func TestFillUnfilled_PropagatesErrorWhenAdapterUnreachable(t *testing.T) {
	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: "http://127.0.0.1:0", APIKey: "key"}
	b := NewBackstop(&fakeAIAPIRepository{err: assert.AnError}, testEncryptor{}, fallback)

	days := []model.PlannerDayPlan{dayWithUnfilledSlot()}
	_, err := b.FillUnfilled(context.Background(), days, model.MacroTargets{Calories: 1900}, model.UserProfile{UserID: 1})
	require.Error(t, err)
}

func TestFillUnfilled_UnsupportedProviderFailsFast(t *testing.T) {
	fallback := config.MacroLLMConfig{Provider: "not-a-real-provider", APIKey: "key"}
	b := NewBackstop(&fakeAIAPIRepository{err: assert.AnError}, testEncryptor{}, fallback)

	_, err := b.FillUnfilled(context.Background(), []model.PlannerDayPlan{dayWithUnfilledSlot()}, model.MacroTargets{Calories: 1900}, model.UserProfile{UserID: 1})
	require.Error(t, err)
}
