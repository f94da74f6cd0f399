// Package backstop implements the generative backstop (spec §4.7 step 5,
// §4.8): an external meal-synthesis service invoked only when no planning
// tier can produce an acceptable plan. It reuses the same AIClient
// provider abstraction as the macro target oracle, prompted to synthesize
// whole meals instead of macro numbers.
package backstop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dared22/mealplanner/internal/config"
	"github.com/dared22/mealplanner/internal/errors"
	"github.com/dared22/mealplanner/internal/model"
	"github.com/dared22/mealplanner/internal/pkg/crypto"
	"github.com/dared22/mealplanner/internal/repository"
	"github.com/dared22/mealplanner/internal/service"
)

// Backstop synthesizes meals from scratch for unfilled slots. Like the
// macro target oracle, it prefers the caller's own configured AI API
// (ai-apis endpoints) and falls back to the operator-wide default.
type Backstop struct {
	apiRepo   repository.AIAPIRepository
	encryptor crypto.Encryptor
	fallback  config.MacroLLMConfig
}

func NewBackstop(apiRepo repository.AIAPIRepository, encryptor crypto.Encryptor, fallback config.MacroLLMConfig) *Backstop {
	return &Backstop{apiRepo: apiRepo, encryptor: encryptor, fallback: fallback}
}

type generatedMeal struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// FillUnfilled synthesizes a recipe for every unfilled slot in days,
// leaving already-filled slots untouched — the "fill only unfilled slots"
// option preferred by §9(b).
func (b *Backstop) FillUnfilled(ctx context.Context, days []model.PlannerDayPlan, targets model.MacroTargets, profile model.UserProfile) ([]model.PlannerDayPlan, error) {
	client, cfg, err := b.resolveClient(ctx, profile.UserID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrGenerationUnavailable, "generative backstop could not resolve a provider")
	}

	out := make([]model.PlannerDayPlan, len(days))
	copy(out, days)

	for i := range out {
		for j := range out[i].Meals {
			m := &out[i].Meals[j]
			if m.RecipeID != 0 {
				continue
			}

			prompt := buildMealPrompt(m.MealType, targets, profile)
			response, err := client.Call(ctx, prompt, cfg)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrGenerationUnavailable, "generative backstop unreachable")
			}

			meal, err := parseMeal(response)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrGenerationUnavailable, "generative backstop returned unparseable meal")
			}

			m.RecipeName = meal.Name
			m.Nutrition = model.MacroTargets{
				Calories: meal.Calories,
				ProteinG: meal.ProteinG,
				CarbsG:   meal.CarbsG,
				FatG:     meal.FatG,
			}
			m.Source = "generated"

			out[i].Totals.Calories += meal.Calories
			out[i].Totals.ProteinG += meal.ProteinG
			out[i].Totals.CarbsG += meal.CarbsG
			out[i].Totals.FatG += meal.FatG
		}
	}

	return out, nil
}

// resolveClient mirrors macro.Oracle's credential resolution: the
// caller's own configured AI API first, the operator-wide default
// otherwise.
func (b *Backstop) resolveClient(ctx context.Context, userID int64) (service.AIClient, *service.AIClientConfig, error) {
	provider := b.fallback.Provider
	endpoint := b.fallback.APIEndpoint
	modelName := b.fallback.Model
	encryptedKey := b.fallback.APIKey

	if b.apiRepo != nil {
		userAPI, err := b.apiRepo.GetDefaultByUser(ctx, userID)
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
		return nil, nil, fmt.Errorf("unsupported generative backstop provider %q: %w", provider, err)
	}

	apiKey, err := b.encryptor.Decrypt(encryptedKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt generative backstop API key: %w", err)
	}

	return client, &service.AIClientConfig{APIEndpoint: endpoint, Model: modelName, APIKey: apiKey}, nil
}

func buildMealPrompt(mealType string, targets model.MacroTargets, profile model.UserProfile) string {
	var b strings.Builder
	b.WriteString("Invent a single meal suitable for the ")
	b.WriteString(mealType)
	b.WriteString(" slot of a daily meal plan. Respond with ONLY a JSON object of the shape ")
	b.WriteString(`{"name": string, "calories": number, "protein_g": number, "carbs_g": number, "fat_g": number}`)
	b.WriteString(". No prose, no markdown fences.\n\n")
	fmt.Fprintf(&b, "Daily target: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat.\n", targets.Calories, targets.ProteinG, targets.CarbsG, targets.FatG)
	if len(profile.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "Dietary restrictions: %s\n", strings.Join(profile.DietaryRestrictions, ", "))
	}
	return b.String()
}

func parseMeal(response string) (generatedMeal, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var meal generatedMeal
	if err := json.Unmarshal([]byte(response), &meal); err != nil {
		return generatedMeal{}, fmt.Errorf("failed to unmarshal generated meal: %w", err)
	}
	if meal.Name == "" {
		return generatedMeal{}, fmt.Errorf("generated meal had no name")
	}
	return meal, nil
}
