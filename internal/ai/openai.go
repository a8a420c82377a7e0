// Copyright Tadafuq Labs, 2026. All rights reserved.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tadafuq/workflow-builder/internal/httputil"
	"github.com/tadafuq/workflow-builder/pkg/types"
)

// openaiAPIBase is the chat-completions endpoint. Declared as a var so
// tests can substitute an httptest server.
var openaiAPIBase = "https://api.openai.com/v1/chat/completions"

// OpenAIBackend calls the OpenAI chat-completions API.
type OpenAIBackend struct {
	Client      *http.Client
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	UserAgent   string
	MaxRetries  int
}

// NewOpenAIBackend builds the production backend from configuration.
func NewOpenAIBackend(cfg types.AIConfig, httpCfg types.HTTPConfig) *OpenAIBackend {
	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIBackend{
		Client:      &http.Client{Timeout: timeout},
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		UserAgent:   httpCfg.UserAgent,
		MaxRetries:  cfg.MaxRetries,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one chat-completion request and returns the first choice's
// message content.
func (b *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	if b.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key is required")
	}

	model := b.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = b.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	body := chatRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: b.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiAPIBase, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.APIKey)
	if b.UserAgent != "" {
		httpReq.Header.Set("User-Agent", b.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, httpReq, b.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("OpenAI API request: %w", err)
	}
	defer resp.Body.Close()

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if cr.Error != nil {
			return "", fmt.Errorf("OpenAI API returned HTTP %d: %s", resp.StatusCode, cr.Error.Message)
		}
		return "", fmt.Errorf("OpenAI API returned HTTP %d", resp.StatusCode)
	}

	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("OpenAI response contained no choices")
	}
	return cr.Choices[0].Message.Content, nil
}
