// Package compress wraps the remote log compression service and its local
// fallback. Compression output is display data only; detection never reads it.
package compress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config configures the compression client.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	Rate    string
}

// APIError represents a non-2xx response from the compression service.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("compression service HTTP %d: %s", e.StatusCode, e.Body)
}

// Response is the decoded service reply. Pointer fields are nil when absent.
type Response struct {
	CompressedPrompt       *string `json:"compressed_prompt"`
	OriginalPromptTokens   *int    `json:"original_prompt_tokens"`
	CompressedPromptTokens *int    `json:"compressed_prompt_tokens"`
}

type request struct {
	Context   string          `json:"context"`
	Prompt    string          `json:"prompt"`
	ScaleDown scaleDownParams `json:"scaledown"`
}

type scaleDownParams struct {
	Rate string `json:"rate"`
}

// Client posts text to the compression service.
type Client struct {
	url    string
	apiKey string
	rate   string
	client *http.Client
}

// NewClient creates a compression client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("compression URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	rate := cfg.Rate
	if rate == "" {
		rate = "auto"
	}
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		rate:   rate,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c != nil && c.apiKey != ""
}

// Compress sends one compression request.
func (c *Client) Compress(ctx context.Context, contextText, prompt string) (*Response, error) {
	body, err := json.Marshal(request{
		Context:   contextText,
		Prompt:    prompt,
		ScaleDown: scaleDownParams{Rate: c.rate},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compression request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compression request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read compression response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(respBody)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(snippet)}
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode compression response: %w", err)
	}
	return &out, nil
}
