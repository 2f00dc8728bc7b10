package api

import (
	"github.com/google/uuid"

	"github.com/platewise/backend/internal/model"
)

// IngredientInput is one ingredient of a save request. Values may have been
// edited by the caller after analysis; the id is optional and assigned when
// absent.
type IngredientInput struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
	Carbs    float64   `json:"carbs"`
	Protein  float64   `json:"protein"`
	Fats     float64   `json:"fats"`
}

// SaveLogRequest is a confirmed analysis draft submitted for persistence.
// The entry date is set server-side at save time, not from the request.
type SaveLogRequest struct {
	ImagePath   string            `json:"imagePath"`
	DishName    string            `json:"dishName" binding:"required"`
	Ingredients []IngredientInput `json:"ingredients"`
	HealthScore int               `json:"healthScore"`
}

// SaveLogResponse returns the persisted entry including its assigned id.
type SaveLogResponse struct {
	Log model.FoodLog `json:"log"`
}

// GetLogsResponse lists the entries for one calendar day.
type GetLogsResponse struct {
	Date string          `json:"date"`
	Logs []model.FoodLog `json:"logs"`
}

// AnalyzeResponse carries the terminal outcome of one analysis attempt plus
// the stored image reference when image persistence is configured.
type AnalyzeResponse struct {
	Result    *model.AnalysisResponse `json:"result"`
	ImagePath string                  `json:"imagePath,omitempty"`
}

func (r SaveLogRequest) toFoodLog() model.FoodLog {
	ingredients := make([]model.Ingredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		id := ing.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		ingredients = append(ingredients, model.Ingredient{
			ID:       id,
			Name:     ing.Name,
			Calories: ing.Calories,
			Carbs:    ing.Carbs,
			Protein:  ing.Protein,
			Fats:     ing.Fats,
		})
	}
	return model.FoodLog{
		ImagePath:   r.ImagePath,
		DishName:    r.DishName,
		Ingredients: ingredients,
		HealthScore: r.HealthScore,
	}
}
