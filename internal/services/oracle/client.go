// Package oracle talks to the extraction oracle — the LLM that turns
// filtered billing-table lines into structured rows.
//
// OpenRouter provides a unified API for multiple LLM providers (OpenAI,
// Anthropic, Google, etc.) using a single API key. The request format
// follows the OpenAI chat completions standard. The model's reply is an
// unversioned free-text contract, so everything it returns is validated
// field by field before it reaches a job result.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Shimizu-Technology/billing-extract-api/internal/models"
)

// Version identifies the oracle client implementation. Surfaced on the
// debug endpoint so a deploy can confirm which client build it runs.
const Version = "openrouter/chat-completions-v1"

// Client is the HTTP client for the extraction oracle.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates an oracle client. baseURL is overridable for tests and
// self-hosted gateways; empty means the public OpenRouter endpoint.
func New(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		// Go Pattern: Always configure timeouts on HTTP clients.
		// The default http.Client has NO timeout — requests can hang forever!
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // LLMs can be slow
		},
	}
}

// Model reports the model this client is configured to use.
func (c *Client) Model() string {
	return c.model
}

// --- OpenRouter API types ---
// These match the OpenAI chat completions format used by OpenRouter.

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responseFormat asks the provider for a bare JSON object instead of
// prose. Not every model honors it, which is why parsing still salvages
// fenced output and validation stays strict.
type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ExtractRows sends the candidate lines to the oracle and returns the
// validated billing rows.
//
// Failure surface: transport errors, non-200 statuses, in-body API
// errors, and unparseable reply shapes all come back as errors — the
// caller records them verbatim on the job. Row-level validation
// failures are absorbed here: a bad row is blanked, and blank rows are
// dropped from the result.
func (c *Client) ExtractRows(ctx context.Context, lines []string) ([]models.UnifiedRow, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key not configured; set OPENROUTER_API_KEY")
	}

	prompt := buildPrompt(lines)

	log.Printf("🤖 Normalizing %d lines using %s", len(lines), c.model)

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: systemPrompt,
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "https://github.com/Shimizu-Technology/billing-extract-api")
	req.Header.Set("X-Title", "Billing Extract API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenRouter request failed: %w", err)
	}
	defer resp.Body.Close() // Go Pattern: ALWAYS close response bodies!

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("OpenRouter error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	rawRows, err := parseRows(chatResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	rows := normalizeRows(rawRows)
	log.Printf("✅ Oracle returned %d rows, %d kept after validation", len(rawRows), len(rows))

	return rows, nil
}
