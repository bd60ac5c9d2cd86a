package llm

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

const (
	// DefaultAPIURL is the Ollama-style generate endpoint of a locally hosted model
	DefaultAPIURL = "http://localhost:11434/api/generate"
	// DefaultModel is the default model name
	DefaultModel = "gpt-oss:20b"
	// DefaultTimeout is generous because local models can take minutes per answer
	DefaultTimeout = 180 * time.Second
	// ProbeTimeout bounds the connectivity test
	ProbeTimeout = 60 * time.Second
)

// Client calls a local text-generation service over its Ollama-compatible
// HTTP API. One request per user message, no streaming, no retries.
type Client struct {
	apiURL     string
	model      string
	httpClient *http.Client
}

// Config holds configuration for the generation client
type Config struct {
	APIURL  string
	Model   string
	Timeout time.Duration
}

// NewClient creates a new generation service client
func NewClient(config Config) *Client {
	if config.APIURL == "" {
		config.APIURL = DefaultAPIURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		apiURL: config.APIURL,
		model:  config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// APIURL returns the configured endpoint
func (c *Client) APIURL() string {
	return c.apiURL
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// generateRequest is the wire format of the generate endpoint
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the non-streaming response body
type generateResponse struct {
	Response *string `json:"response"`
}

// Generate sends one prompt and returns the model's answer. Every failure
// mode gets its own message so a 500 tells the operator exactly which part
// of the local setup is broken.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot reach llm server at %s (is the model runtime up?): %w", c.apiURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read llm response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm api error: http %d - %s", resp.StatusCode, string(raw))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode llm response as json: %s", string(raw))
	}

	if parsed.Response == nil {
		return "", fmt.Errorf("llm response is missing the response field: %s", string(raw))
	}

	answer := strings.TrimSpace(*parsed.Response)
	if answer == "" {
		return "", fmt.Errorf("llm returned an empty answer")
	}

	return answer, nil
}

// ProbeResult carries raw diagnostics from a connectivity test
type ProbeResult struct {
	APIURL         string                 `json:"llm_url"`
	Model          string                 `json:"llm_model"`
	HTTPStatus     int                    `json:"http_code"`
	TransportError string                 `json:"transport_error,omitempty"`
	Response       map[string]interface{} `json:"response,omitempty"`
	RawResponse    string                 `json:"raw_response,omitempty"`
}

// TestConnection sends a minimal fixed prompt with a short timeout and
// reports everything it saw, parsed or not. Meant for operational diagnosis,
// so nothing is sanitized or interpreted.
func (c *Client) TestConnection(ctx context.Context) *ProbeResult {
	result := &ProbeResult{
		APIURL: c.apiURL,
		Model:  c.model,
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: "Hello. Please introduce yourself briefly.",
		Stream: false,
	})
	if err != nil {
		result.TransportError = err.Error()
		return result
	}

	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		result.TransportError = err.Error()
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.TransportError = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.HTTPStatus = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		result.TransportError = err.Error()
		return result
	}
	result.RawResponse = string(raw)

	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		result.Response = parsed
	}

	return result
}
