// Package macro implements the Macro Target Oracle (MTO, spec §4.1): it
// derives per-day calorie/macro targets from a UserProfile by delegating
// the nutritional judgment to an external language-model adapter.
package macro

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dared22/mealplanner/internal/config"
	"github.com/dared22/mealplanner/internal/errors"
	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/pkg/crypto"
	"github.com/dared22/mealplanner/internal/pkg/logger"
	"github.com/dared22/mealplanner/internal/repository"
	"github.com/dared22/mealplanner/internal/service"
)

// Oracle derives MacroTargets for a profile, delegating the computation to
// an external LLM adapter (§4.1). It is the core's only non-deterministic
// external dependency.
//
// Credentials are resolved per call: a user's own configured AI API
// (added via the ai-apis management endpoints, the teacher's
// AIAPIService) takes priority; a caller without one configured falls
// back to the operator-wide macro_llm default.
type Oracle struct {
	apiRepo   repository.AIAPIRepository
	encryptor crypto.Encryptor
	fallback  config.MacroLLMConfig
}

// NewOracle builds an Oracle, reusing the teacher's AIAPIRepository/
// crypto.Encryptor so a stored provider API key is never handled in
// plaintext outside that package (§4.1, grounded on the teacher's
// AIService/AIAPIService).
func NewOracle(apiRepo repository.AIAPIRepository, encryptor crypto.Encryptor, fallback config.MacroLLMConfig) *Oracle {
	return &Oracle{apiRepo: apiRepo, encryptor: encryptor, fallback: fallback}
}

// targetsResponse is the shape the adapter is prompted to return: a
// calorie figure plus macro split in grams (§4.1).
type targetsResponse struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// DeriveTargets implements derive_targets(UserProfile) → MacroTargets
// (§4.1). Its own failure surfaces as MacroDerivationFailed; this function
// never falls back internally — the coordinator owns fallback policy.
func (o *Oracle) DeriveTargets(ctx context.Context, profile model.UserProfile) (model.MacroTargets, error) {
	client, clientCfg, maxRetries, retryDelay, err := o.resolveClient(ctx, profile.UserID)
	if err != nil {
		return model.MacroTargets{}, errors.Wrap(err, errors.ErrMacroDerivationFailed, "macro target oracle could not resolve a provider")
	}

	prompt := buildPrompt(profile)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * retryDelay
			select {
			case <-ctx.Done():
				return model.MacroTargets{}, errors.Wrap(ctx.Err(), errors.ErrMacroDerivationFailed, "macro target oracle canceled")
			case <-time.After(backoff):
			}
		}

		response, err := client.Call(ctx, prompt, clientCfg)
		if err != nil {
			lastErr = err
			logger.Warn("macro target oracle call failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		targets, err := parseResponse(response)
		if err != nil {
			lastErr = err
			logger.Warn("macro target oracle returned unparseable response", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		return targets, nil
	}

	return model.MacroTargets{}, errors.Wrap(lastErr, errors.ErrMacroDerivationFailed, "macro target oracle could not return valid numbers")
}

// resolveClient picks the caller's default configured AI API if one
// exists, otherwise the operator-wide fallback, and decrypts its key.
func (o *Oracle) resolveClient(ctx context.Context, userID int64) (service.AIClient, *service.AIClientConfig, int, time.Duration, error) {
	provider := o.fallback.Provider
	endpoint := o.fallback.APIEndpoint
	modelName := o.fallback.Model
	encryptedKey := o.fallback.APIKey
	maxRetries := o.fallback.RetryAttempts
	retryDelay := o.fallback.RetryDelay

	if o.apiRepo != nil {
		userAPI, err := o.apiRepo.GetDefaultByUser(ctx, userID)
		if err == nil && userAPI != nil {
			provider = userAPI.Provider
			endpoint = userAPI.APIEndpoint
			encryptedKey = userAPI.APIKeyEncrypted
			if userAPI.Model != nil {
				modelName = *userAPI.Model
			}
		}
	}

	client, err := service.GetAIClient(provider)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("unsupported macro LLM provider %q: %w", provider, err)
	}

	apiKey, err := o.encryptor.Decrypt(encryptedKey)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("failed to decrypt macro LLM API key: %w", err)
	}

	return client, &service.AIClientConfig{
		APIEndpoint: endpoint,
		Model:       modelName,
		APIKey:      apiKey,
	}, maxRetries, retryDelay, nil
}

func buildPrompt(p model.UserProfile) string {
	var b strings.Builder
	b.WriteString("You are a nutrition target calculator. Given this person's profile, respond with ONLY a JSON object of the shape ")
	b.WriteString(`{"calories": number, "protein_g": number, "carbs_g": number, "fat_g": number}`)
	b.WriteString(" representing their daily nutrition target. No prose, no markdown fences.\n\n")
	fmt.Fprintf(&b, "Age: %d\n", p.Age)
	fmt.Fprintf(&b, "Sex: %s\n", p.Sex)
	fmt.Fprintf(&b, "Height: %.0f cm\n", p.HeightCM)
	fmt.Fprintf(&b, "Weight: %.1f kg\n", p.WeightKG)
	fmt.Fprintf(&b, "Activity level: %s\n", p.ActivityLevel)
	fmt.Fprintf(&b, "Goal: %s\n", p.NutritionGoal)
	fmt.Fprintf(&b, "Meals per day: %d\n", p.EffectiveMealsPerDay())
	if len(p.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "Dietary restrictions: %s\n", strings.Join(p.DietaryRestrictions, ", "))
	}
	return b.String()
}

func parseResponse(response string) (model.MacroTargets, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var parsed targetsResponse
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		return model.MacroTargets{}, fmt.Errorf("failed to unmarshal macro target response: %w", err)
	}
	if parsed.Calories <= 0 {
		return model.MacroTargets{}, fmt.Errorf("macro target response had non-positive calories: %.2f", parsed.Calories)
	}

	return model.MacroTargets{
		Calories: parsed.Calories,
		ProteinG: parsed.ProteinG,
		CarbsG:   parsed.CarbsG,
		FatG:     parsed.FatG,
	}, nil
}
