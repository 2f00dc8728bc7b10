package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/model"
)

// requestTimeout bounds the single network round trip. A timeout surfaces as
// an InferenceTransport error.
const requestTimeout = 60 * time.Second

// InferenceClient sends food images to the remote vision model and returns
// validated analysis results. It holds only static configuration and a shared
// HTTP client, so concurrent Analyze calls for independent images are safe.
type InferenceClient struct {
	endpoint   string
	deployment string
	apiVersion string
	apiKey     string
	codec      *NutritionCodec
	client     *http.Client
}

// NewInferenceClient creates a client from explicit configuration. No ambient
// singletons: the credential and endpoint travel with the client.
func NewInferenceClient(cfg *config.Config, codec *NutritionCodec) *InferenceClient {
	return &InferenceClient{
		endpoint:   cfg.OpenAIEndpoint,
		deployment: cfg.OpenAIDeployment,
		apiVersion: cfg.OpenAIAPIVersion,
		apiKey:     cfg.OpenAIKey,
		codec:      codec,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// chatEnvelope is the outer provider response. Only the first choice's
// message content is consumed.
type chatEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze performs exactly one analysis round trip: encode the image, POST it
// to the model endpoint, extract the generated text and decode it into a
// validated AnalysisResponse. Every failure is classified as an
// *InferenceError; nothing is retried.
func (c *InferenceClient) Analyze(ctx context.Context, img image.Image) (*model.AnalysisResponse, error) {
	jpegData, err := c.codec.EncodeImage(img)
	if err != nil {
		return nil, &InferenceError{Kind: InferenceInvalidInput, Err: err}
	}

	reqBody := c.codec.BuildAnalysisRequest(jpegData)
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &InferenceError{Kind: InferenceInvalidInput, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &InferenceError{Kind: InferenceTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &InferenceError{Kind: InferenceTransport, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &InferenceError{Kind: InferenceTransport, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[InferenceClient] remote error status=%d body=%s", resp.StatusCode, string(body))
		return nil, &InferenceError{
			Kind:       InferenceRemote,
			StatusCode: resp.StatusCode,
			Diagnostic: string(body),
		}
	}

	var envelope chatEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &InferenceError{Kind: InferenceEmptyResponse, Err: fmt.Errorf("failed to decode envelope: %w", err)}
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return nil, &InferenceError{Kind: InferenceEmptyResponse}
	}

	result, err := c.codec.DecodeAnalysis(envelope.Choices[0].Message.Content)
	if err != nil {
		log.Printf("[InferenceClient] malformed result: %v", err)
		return nil, &InferenceError{Kind: InferenceMalformedResult, Err: err}
	}

	log.Printf("[InferenceClient] analysis completed for dish %q with %d ingredients",
		result.DishName, len(result.Ingredients))
	return result, nil
}
