package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 120, A: 255})
		}
	}
	return img
}

const validAnalysisJSON = `{
	"dishName": "Grilled Chicken Salad",
	"ingredients": [
		{"name": "Chicken Breast", "calories": 165.5, "carbs": 0, "protein": 31.2, "fats": 3.6},
		{"name": "Mixed Greens", "calories": 15, "carbs": 2.5, "protein": 1.2, "fats": 0.2}
	],
	"total": {"calories": 180.5, "carbs": 2.5, "protein": 32.4, "fats": 3.8, "healthScore": 9}
}`

func TestEncodeImage(t *testing.T) {
	codec := NewNutritionCodec(DefaultJPEGQuality)

	t.Run("produces decodable JPEG of same dimensions", func(t *testing.T) {
		data, err := codec.EncodeImage(testImage(12, 8))
		require.NoError(t, err)
		require.NotEmpty(t, data)

		decoded, err := jpeg.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 12, decoded.Bounds().Dx())
		assert.Equal(t, 8, decoded.Bounds().Dy())
	})

	t.Run("nil image fails with EncodingError", func(t *testing.T) {
		_, err := codec.EncodeImage(nil)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
	})

	t.Run("zero-dimension image fails with EncodingError", func(t *testing.T) {
		_, err := codec.EncodeImage(image.NewRGBA(image.Rect(0, 0, 0, 0)))
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
	})

	t.Run("out-of-range quality falls back to default", func(t *testing.T) {
		data, err := NewNutritionCodec(0).EncodeImage(testImage(4, 4))
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	})
}

func TestBuildAnalysisRequest(t *testing.T) {
	codec := NewNutritionCodec(DefaultJPEGQuality)
	jpegData := []byte{0xff, 0xd8, 0xff, 0xe0}

	req := codec.BuildAnalysisRequest(jpegData)

	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, 4000, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)

	parts, ok := req.Messages[1].Content.([]ContentPart)
	require.True(t, ok)
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	require.NotNil(t, parts[1].ImageURL)
	wantPrefix := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
	assert.Equal(t, wantPrefix, parts[1].ImageURL.URL)

	t.Run("marshals to the provider wire shape", func(t *testing.T) {
		data, err := json.Marshal(req)
		require.NoError(t, err)
		body := string(data)
		assert.Contains(t, body, `"max_tokens":4000`)
		assert.Contains(t, body, `"temperature":0.7`)
		assert.Contains(t, body, `"image_url"`)
		assert.NotContains(t, body, `"text":""`)
	})
}

func TestDecodeAnalysis(t *testing.T) {
	codec := NewNutritionCodec(DefaultJPEGQuality)

	t.Run("valid document decodes with exact values", func(t *testing.T) {
		resp, err := codec.DecodeAnalysis(validAnalysisJSON)
		require.NoError(t, err)

		assert.Equal(t, "Grilled Chicken Salad", resp.DishName)
		require.Len(t, resp.Ingredients, 2)

		// Order and values preserved exactly, no rounding.
		assert.Equal(t, "Chicken Breast", resp.Ingredients[0].Name)
		assert.Equal(t, 165.5, resp.Ingredients[0].Calories)
		assert.Equal(t, 31.2, resp.Ingredients[0].Protein)
		assert.Equal(t, "Mixed Greens", resp.Ingredients[1].Name)
		assert.Equal(t, 0.2, resp.Ingredients[1].Fats)

		assert.Equal(t, 180.5, resp.Total.Calories)
		assert.Equal(t, 9, resp.Total.HealthScore)

		for _, ing := range resp.Ingredients {
			assert.NotEqual(t, uuid.Nil, ing.ID)
		}
	})

	t.Run("unknown extra fields are tolerated", func(t *testing.T) {
		raw := strings.Replace(validAnalysisJSON, `"dishName"`, `"note": "tasty", "dishName"`, 1)
		_, err := codec.DecodeAnalysis(raw)
		assert.NoError(t, err)
	})

	malformed := map[string]string{
		"not JSON at all":           "not json",
		"prose around JSON":         "Here is your analysis: " + validAnalysisJSON,
		"missing dishName":          `{"ingredients": [], "total": {"calories": 1, "carbs": 1, "protein": 1, "fats": 1, "healthScore": 5}}`,
		"empty dishName":            `{"dishName": "", "ingredients": [], "total": {"calories": 1, "carbs": 1, "protein": 1, "fats": 1, "healthScore": 5}}`,
		"missing ingredients":       `{"dishName": "Soup", "total": {"calories": 1, "carbs": 1, "protein": 1, "fats": 1, "healthScore": 5}}`,
		"missing total":             `{"dishName": "Soup", "ingredients": []}`,
		"ingredient missing field":  `{"dishName": "Soup", "ingredients": [{"name": "Broth", "calories": 20, "carbs": 1, "protein": 1}], "total": {"calories": 20, "carbs": 1, "protein": 1, "fats": 0, "healthScore": 5}}`,
		"string where number":       `{"dishName": "Soup", "ingredients": [{"name": "Broth", "calories": "twenty", "carbs": 1, "protein": 1, "fats": 0}], "total": {"calories": 20, "carbs": 1, "protein": 1, "fats": 0, "healthScore": 5}}`,
		"missing healthScore":       `{"dishName": "Soup", "ingredients": [], "total": {"calories": 1, "carbs": 1, "protein": 1, "fats": 1}}`,
		"healthScore out of range":  `{"dishName": "Soup", "ingredients": [], "total": {"calories": 1, "carbs": 1, "protein": 1, "fats": 1, "healthScore": 11}}`,
		"negative macro":            `{"dishName": "Soup", "ingredients": [{"name": "Broth", "calories": -5, "carbs": 1, "protein": 1, "fats": 0}], "total": {"calories": 1, "carbs": 1, "protein": 1, "fats": 1, "healthScore": 5}}`,
		"fractional healthScore":    `{"dishName": "Soup", "ingredients": [], "total": {"calories": 1, "carbs": 1, "protein": 1, "fats": 1, "healthScore": 7.5}}`,
	}

	for name, raw := range malformed {
		t.Run("rejects "+name, func(t *testing.T) {
			resp, err := codec.DecodeAnalysis(raw)
			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr), "expected DecodeError, got %v", err)
			assert.Nil(t, resp, "no partial result on decode failure")
		})
	}
}
