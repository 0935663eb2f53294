package stability

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.stability.ai"
	enginePath     = "/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image"
)

// TextPrompt is a weighted prompt term.
type TextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// TextToImageRequest is the JSON body of a generation call. Height, width and
// style preset are omitted when unset so the provider applies its defaults.
type TextToImageRequest struct {
	Samples     int          `json:"samples"`
	Steps       int          `json:"steps"`
	CfgScale    float64      `json:"cfg_scale"`
	TextPrompts []TextPrompt `json:"text_prompts"`
	Height      int          `json:"height,omitempty"`
	Width       int          `json:"width,omitempty"`
	StylePreset string       `json:"style_preset,omitempty"`
}

// GenerationResult holds the decoded payload of a successful call.
type GenerationResult struct {
	Seed  int64
	Image []byte
}

// Client represents the Stability AI API client
type Client struct {
	httpClient *http.Client
	apiKey     string

	// BaseURL may be overridden in tests.
	BaseURL string
}

// NewClient creates a new Stability AI API client
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:  apiKey,
		BaseURL: defaultBaseURL,
	}
}

// TextToImage performs one synchronous generation request and returns the
// first artifact of the response.
func (c *Client) TextToImage(ctx context.Context, req TextToImageRequest) (*GenerationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+enginePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Artifacts []struct {
			Seed   int64  `json:"seed"`
			Base64 string `json:"base64"`
		} `json:"artifacts"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Artifacts) == 0 {
		return nil, fmt.Errorf("no artifacts in response")
	}

	image, err := base64.StdEncoding.DecodeString(result.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact payload: %w", err)
	}

	return &GenerationResult{
		Seed:  result.Artifacts[0].Seed,
		Image: image,
	}, nil
}
