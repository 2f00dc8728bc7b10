package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ingredient is a single analyzed component of a dish. Values are immutable
// once decoded; edits before saving produce a new value.
type Ingredient struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
	Carbs    float64   `json:"carbs"`
	Protein  float64   `json:"protein"`
	Fats     float64   `json:"fats"`
}

// Validate checks the ingredient invariants: non-empty name, macros >= 0.
func (i Ingredient) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("ingredient name must not be empty")
	}
	if i.Calories < 0 || i.Carbs < 0 || i.Protein < 0 || i.Fats < 0 {
		return fmt.Errorf("ingredient %q has negative macro values", i.Name)
	}
	return nil
}

// NutritionTotal is the dish-level nutrition summary. HealthScore is supplied
// by the model, never derived from the ingredient list.
type NutritionTotal struct {
	Calories    float64 `json:"calories"`
	Carbs       float64 `json:"carbs"`
	Protein     float64 `json:"protein"`
	Fats        float64 `json:"fats"`
	HealthScore int     `json:"healthScore"`
}

// Validate checks macros >= 0 and healthScore within [1,10].
func (t NutritionTotal) Validate() error {
	if t.Calories < 0 || t.Carbs < 0 || t.Protein < 0 || t.Fats < 0 {
		return fmt.Errorf("nutrition total has negative macro values")
	}
	if t.HealthScore < 1 || t.HealthScore > 10 {
		return fmt.Errorf("health score %d outside range 1-10", t.HealthScore)
	}
	return nil
}

// SumIngredients sums the macro fields of an ingredient collection. The
// returned total carries the given healthScore since the score is not
// derivable from ingredients.
func SumIngredients(ingredients []Ingredient, healthScore int) NutritionTotal {
	total := NutritionTotal{HealthScore: healthScore}
	for _, ing := range ingredients {
		total.Calories += ing.Calories
		total.Carbs += ing.Carbs
		total.Protein += ing.Protein
		total.Fats += ing.Fats
	}
	return total
}

// AnalysisResponse is the validated output of one analysis attempt. It is
// transient: held by the session and its caller until saved or discarded.
type AnalysisResponse struct {
	DishName    string         `json:"dishName"`
	Ingredients []Ingredient   `json:"ingredients"`
	Total       NutritionTotal `json:"total"`
}

// Validate checks the full response shape invariants.
func (r AnalysisResponse) Validate() error {
	if r.DishName == "" {
		return fmt.Errorf("dish name must not be empty")
	}
	for _, ing := range r.Ingredients {
		if err := ing.Validate(); err != nil {
			return err
		}
	}
	return r.Total.Validate()
}

// FoodLog is one persisted, user-confirmed analysis record. Created only by a
// save action and never mutated afterwards.
type FoodLog struct {
	ID          uuid.UUID    `json:"id"`
	ImagePath   string       `json:"imagePath"`
	DishName    string       `json:"dishName"`
	Date        time.Time    `json:"date"`
	Ingredients []Ingredient `json:"ingredients"`
	HealthScore int          `json:"healthScore"`
}

// Validate checks the log entry invariants before it enters the store.
func (l FoodLog) Validate() error {
	if l.DishName == "" {
		return fmt.Errorf("dish name must not be empty")
	}
	if l.HealthScore < 1 || l.HealthScore > 10 {
		return fmt.Errorf("health score %d outside range 1-10", l.HealthScore)
	}
	for _, ing := range l.Ingredients {
		if err := ing.Validate(); err != nil {
			return err
		}
	}
	return nil
}
