package macro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dared22/mealplanner/internal/config"
	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAIAPIRepository lets tests steer credential resolution without a
// database, implementing only the lookups Oracle actually calls.
type fakeAIAPIRepository struct {
	repository.AIAPIRepository
	defaultAPI *model.AIAPI
	err        error
}

func (f *fakeAIAPIRepository) GetDefaultByUser(ctx context.Context, userID int64) (*model.AIAPI, error) {
	return f.defaultAPI, f.err
}

func newTestEncryptor(t *testing.T) (*testEncryptor, string) {
	t.Helper()
	return &testEncryptor{}, "plaintext-test-key"
}

// testEncryptor is a no-op Encryptor so tests don't depend on the real
// AES/PBKDF2 implementation to exercise an unrelated code path.
type testEncryptor struct{}

func (testEncryptor) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (testEncryptor) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

func openAIStub(t *testing.T, body string) *httptest.Server {
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

func TestDeriveTargets_UsesFallbackWhenNoUserDefaultConfigured(t *testing.T) {
	server := openAIStub(t, `{"calories": 2200, "protein_g": 160, "carbs_g": 220, "fat_g": 70}`)
	defer server.Close()

	encryptor, key := newTestEncryptor(t)
	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: server.URL, APIKey: key}
	apiRepo := &fakeAIAPIRepository{err: assert.AnError}

	oracle := NewOracle(apiRepo, encryptor, fallback)
	targets, err := oracle.DeriveTargets(context.Background(), model.UserProfile{UserID: 1, MealsPerDay: 3})
	require.NoError(t, err)
	assert.Equal(t, 2200.0, targets.Calories)
	assert.Equal(t, 160.0, targets.ProteinG)
}

func TestDeriveTargets_PrefersUsersConfiguredProviderOverFallback(t *testing.T) {
	userServer := openAIStub(t, `{"calories": 1800, "protein_g": 130, "carbs_g": 150, "fat_g": 55}`)
	defer userServer.Close()
	fallbackServer := openAIStub(t, `{"calories": 9999, "protein_g": 1, "carbs_g": 1, "fat_g": 1}`)
	defer fallbackServer.Close()

	encryptor, key := newTestEncryptor(t)
	fallback := config.MacroLLMConfig{Provider: "openai", APIEndpoint: fallbackServer.URL, APIKey: key}
	apiRepo := &fakeAIAPIRepository{defaultAPI: &model.AIAPI{
		Provider:        "openai",
		APIEndpoint:     userServer.URL,
		APIKeyEncrypted: key,
	}}

	oracle := NewOracle(apiRepo, encryptor, fallback)
	targets, err := oracle.DeriveTargets(context.Background(), model.UserProfile{UserID: 7, MealsPerDay: 3})
	require.NoError(t, err)
	assert.Equal(t, 1800.0, targets.Calories)
}

func TestDeriveTargets_RetriesOnUnparseableResponseThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		var content string
		if calls == 1 {
			content = "not json at all"
		} else {
			content = `{"calories": 2000, "protein_g": 140, "carbs_g": 200, "fat_g": 60}`
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	encryptor, key := newTestEncryptor(t)
	fallback := config.MacroLLMConfig{
		Provider:      "openai",
		APIEndpoint:   server.URL,
		APIKey:        key,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	}
	apiRepo := &fakeAIAPIRepository{err: assert.AnError}

	oracle := NewOracle(apiRepo, encryptor, fallback)
	targets, err := oracle.DeriveTargets(context.Background(), model.UserProfile{UserID: 1, MealsPerDay: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2000.0, targets.Calories)
}

func TestDeriveTargets_FailsAfterExhaustingRetriesOnNonPositiveCalories(t *testing.T) {
	server := openAIStub(t, `{"calories": 0, "protein_g": 1, "carbs_g": 1, "fat_g": 1}`)
	defer server.Close()

	encryptor, key := newTestEncryptor(t)
	fallback := config.MacroLLMConfig{
		Provider:      "openai",
		APIEndpoint:   server.URL,
		APIKey:        key,
		RetryAttempts: 0,
		RetryDelay:    time.Millisecond,
	}
	apiRepo := &fakeAIAPIRepository{err: assert.AnError}

	oracle := NewOracle(apiRepo, encryptor, fallback)
	_, err := oracle.DeriveTargets(context.Background(), model.UserProfile{UserID: 1, MealsPerDay: 3})
	require.Error(t, err)
}

func TestDeriveTargets_UnsupportedProviderFailsFast(t *testing.T) {
	encryptor, key := newTestEncryptor(t)
	fallback := config.MacroLLMConfig{Provider: "not-a-real-provider", APIKey: key}
	apiRepo := &fakeAIAPIRepository{err: assert.AnError}

	oracle := NewOracle(apiRepo, encryptor, fallback)
	_, err := oracle.DeriveTargets(context.Background(), model.UserProfile{UserID: 1, MealsPerDay: 3})
	require.Error(t, err)
}
