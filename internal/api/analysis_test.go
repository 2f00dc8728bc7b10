package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/backend/internal/model"
	"github.com/platewise/backend/internal/service"
)

type stubAnalyzer struct {
	result *model.AnalysisResponse
	err    error
}

func (s *stubAnalyzer) Analyze(context.Context, image.Image) (*model.AnalysisResponse, error) {
	return s.result, s.err
}

func setupAnalysisRouter(analyzer service.Analyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	v1 := router.Group("/api/v1")
	NewAnalysisHandler(analyzer, nil).RegisterRoutes(v1, nil)
	return router
}

// imageUploadRequest builds a multipart POST with a small PNG under the
// "image" field.
func imageUploadRequest(t *testing.T) *http.Request {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 6, 6))
	for x := 0; x < 6; x++ {
		for y := 0; y < 6; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "meal.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Run("returns the decoded result", func(t *testing.T) {
		want := &model.AnalysisResponse{
			DishName: "Avocado Toast",
			Ingredients: []model.Ingredient{
				{Name: "Avocado", Calories: 160, Carbs: 9, Protein: 2, Fats: 15},
			},
			Total: model.NutritionTotal{Calories: 160, Carbs: 9, Protein: 2, Fats: 15, HealthScore: 8},
		}
		router := setupAnalysisRouter(&stubAnalyzer{result: want})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, imageUploadRequest(t))

		require.Equal(t, http.StatusOK, w.Code)
		var resp AnalyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Result)
		assert.Equal(t, "Avocado Toast", resp.Result.DishName)
		assert.Equal(t, 8, resp.Result.Total.HealthScore)
		assert.Empty(t, resp.ImagePath, "no image store configured")
	})

	t.Run("missing image field", func(t *testing.T) {
		router := setupAnalysisRouter(&stubAnalyzer{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-image upload", func(t *testing.T) {
		router := setupAnalysisRouter(&stubAnalyzer{})

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("image", "notes.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("this is not an image"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("remote failure maps to bad gateway", func(t *testing.T) {
		router := setupAnalysisRouter(&stubAnalyzer{
			err: &service.InferenceError{Kind: service.InferenceRemote, StatusCode: 429},
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, imageUploadRequest(t))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("transport failure maps to gateway timeout", func(t *testing.T) {
		router := setupAnalysisRouter(&stubAnalyzer{
			err: &service.InferenceError{Kind: service.InferenceTransport},
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, imageUploadRequest(t))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})

	t.Run("malformed model output maps to bad gateway", func(t *testing.T) {
		router := setupAnalysisRouter(&stubAnalyzer{
			err: &service.InferenceError{Kind: service.InferenceMalformedResult},
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, imageUploadRequest(t))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
