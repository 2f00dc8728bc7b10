package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/google/uuid"

	"github.com/platewise/backend/internal/model"
)

// Fixed instruction set for the vision model. The contract is "return only the
// JSON object, no prose"; the codec does not strip surrounding text, so the
// system message must keep the model honest.
const (
	analysisSystemPrompt = "You are a helpful assistant that analyzes food images and returns nutritional information in a specific JSON format. You must return ONLY the JSON object with no additional text or explanation. Use decimal numbers for precise nutritional values."

	analysisUserPrompt = "Analyze this food image and provide detailed nutritional information. Include: 1) Dish name, 2) List of ingredients with calories, carbs, protein, and fats for each, 3) Total nutritional values, 4) Health score (1-10). Format the response as JSON matching this structure: { dishName: string, ingredients: [{ name: string, calories: number, carbs: number, protein: number, fats: number }], total: { calories: number, carbs: number, protein: number, fats: number, healthScore: number } }"
)

// DefaultJPEGQuality is materially lossy on purpose: uploads are tuned for
// size, not fidelity.
const DefaultJPEGQuality = 80

// Model-provider parameters, fixed and not exposed to callers.
const (
	analysisMaxTokens   = 4000
	analysisTemperature = 0.7
)

// ChatRequest is the provider request document for one analysis call.
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// ChatMessage holds either a plain string content (system role) or a slice of
// ContentPart (user role with an embedded image).
type ChatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// ContentPart is one element of a multimodal user message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageRef `json:"image_url,omitempty"`
}

// ImageRef carries a data URL reference to the uploaded image.
type ImageRef struct {
	URL string `json:"url"`
}

// NutritionCodec converts captured images into provider request documents and
// raw model replies into validated domain values. It owns all format and
// shape validation for the pipeline.
type NutritionCodec struct {
	quality int
}

// NewNutritionCodec creates a codec with the given JPEG quality factor.
// Quality values outside (0,100] fall back to DefaultJPEGQuality.
func NewNutritionCodec(quality int) *NutritionCodec {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &NutritionCodec{quality: quality}
}

// EncodeImage compresses the input image to JPEG at the codec's fixed quality.
// Returns an EncodingError for nil or zero-dimension images, or when the
// encoder rejects the input.
func (c *NutritionCodec) EncodeImage(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, &EncodingError{Err: fmt.Errorf("nil image")}
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, &EncodingError{Err: fmt.Errorf("zero-dimension image %dx%d", bounds.Dx(), bounds.Dy())}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, &EncodingError{Err: err}
	}
	return buf.Bytes(), nil
}

// BuildAnalysisRequest embeds the JPEG payload as a base64 data URL in the
// provider request document, alongside the fixed instruction prompts.
func (c *NutritionCodec) BuildAnalysisRequest(jpegData []byte) ChatRequest {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)

	return ChatRequest{
		Messages: []ChatMessage{
			{
				Role:    "system",
				Content: analysisSystemPrompt,
			},
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: analysisUserPrompt},
					{Type: "image_url", ImageURL: &ImageRef{URL: dataURL}},
				},
			},
		},
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
	}
}

// Strict decode DTOs. Pointer fields distinguish absent from zero so that a
// missing required field fails decoding instead of defaulting.
type ingredientDTO struct {
	Name     *string  `json:"name"`
	Calories *float64 `json:"calories"`
	Carbs    *float64 `json:"carbs"`
	Protein  *float64 `json:"protein"`
	Fats     *float64 `json:"fats"`
}

type totalDTO struct {
	Calories    *float64 `json:"calories"`
	Carbs       *float64 `json:"carbs"`
	Protein     *float64 `json:"protein"`
	Fats        *float64 `json:"fats"`
	HealthScore *int     `json:"healthScore"`
}

type analysisDTO struct {
	DishName    *string         `json:"dishName"`
	Ingredients []ingredientDTO `json:"ingredients"`
	Total       *totalDTO       `json:"total"`
}

// DecodeAnalysis parses the model's raw reply as a single JSON analysis
// document. Decoding is all-or-nothing: invalid JSON, missing fields, type
// mismatches or invariant violations all yield a DecodeError and no partial
// result. Ingredient order is preserved as reported by the model.
func (c *NutritionCodec) DecodeAnalysis(raw string) (*model.AnalysisResponse, error) {
	var dto analysisDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Err: err}
	}

	if dto.DishName == nil || *dto.DishName == "" {
		return nil, &DecodeError{Reason: "missing or empty dishName"}
	}
	if dto.Ingredients == nil {
		return nil, &DecodeError{Reason: "missing ingredients"}
	}
	if dto.Total == nil {
		return nil, &DecodeError{Reason: "missing total"}
	}

	ingredients := make([]model.Ingredient, 0, len(dto.Ingredients))
	for i, ing := range dto.Ingredients {
		if ing.Name == nil || ing.Calories == nil || ing.Carbs == nil || ing.Protein == nil || ing.Fats == nil {
			return nil, &DecodeError{Reason: fmt.Sprintf("ingredient %d has missing fields", i)}
		}
		ingredients = append(ingredients, model.Ingredient{
			ID:       uuid.New(),
			Name:     *ing.Name,
			Calories: *ing.Calories,
			Carbs:    *ing.Carbs,
			Protein:  *ing.Protein,
			Fats:     *ing.Fats,
		})
	}

	if dto.Total.Calories == nil || dto.Total.Carbs == nil || dto.Total.Protein == nil ||
		dto.Total.Fats == nil || dto.Total.HealthScore == nil {
		return nil, &DecodeError{Reason: "total has missing fields"}
	}

	resp := &model.AnalysisResponse{
		DishName:    *dto.DishName,
		Ingredients: ingredients,
		Total: model.NutritionTotal{
			Calories:    *dto.Total.Calories,
			Carbs:       *dto.Total.Carbs,
			Protein:     *dto.Total.Protein,
			Fats:        *dto.Total.Fats,
			HealthScore: *dto.Total.HealthScore,
		},
	}

	if err := resp.Validate(); err != nil {
		return nil, &DecodeError{Reason: "invariant violation", Err: err}
	}
	return resp, nil
}
