package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saadjs/tally/internal/service"
)

const estimatePath = "/v1/estimate"

// Client asks a remote food-recognition endpoint to estimate a meal photo.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

var _ service.Estimator = (*Client)(nil)

func (c *Client) Estimate(ctx context.Context, imageRef string) (service.Estimate, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return service.Estimate{}, fmt.Errorf("estimator base url is not configured")
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	payload, err := json.Marshal(request{ImageRef: imageRef})
	if err != nil {
		return service.Estimate{}, fmt.Errorf("encode estimate request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+estimatePath, bytes.NewReader(payload))
	if err != nil {
		return service.Estimate{}, fmt.Errorf("create estimate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if key := strings.TrimSpace(c.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return service.Estimate{}, fmt.Errorf("execute estimate request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return service.Estimate{}, fmt.Errorf("read estimate response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return service.Estimate{}, fmt.Errorf("estimate request failed with status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return service.Estimate{}, fmt.Errorf("decode estimate response: %w", err)
	}
	name := strings.TrimSpace(parsed.FoodName)
	if name == "" {
		return service.Estimate{}, fmt.Errorf("no food recognized in %q", imageRef)
	}
	if parsed.Calories < 0 || parsed.Confidence < 0 || parsed.Confidence > 1 {
		return service.Estimate{}, fmt.Errorf("estimate out of range: calories=%v confidence=%v", parsed.Calories, parsed.Confidence)
	}
	return service.Estimate{
		FoodName:   name,
		Calories:   int(parsed.Calories + 0.5),
		Confidence: parsed.Confidence,
	}, nil
}

type request struct {
	ImageRef string `json:"image_ref"`
}

type response struct {
	FoodName   string  `json:"food_name"`
	Calories   float64 `json:"calories"`
	Confidence float64 `json:"confidence"`
}
