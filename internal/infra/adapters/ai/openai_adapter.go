package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/ports/adapter"
	"company-research-agent/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.AIServiceAdapter using the Chat
// Completions API. Kept as the alternate provider behind Gemini.
type OpenAIAdapter struct {
	apiKey string
	base   string // e.g., https://api.openai.com/v1
	model  string
	client *http.Client
}

func NewOpenAIAdapter(apiKey, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIAdapter{
		apiKey: apiKey,
		base:   "https://api.openai.com/v1",
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (o *OpenAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	if model == "" {
		model = o.model
	}
	return adapter.ModelInfo{
		Name:        model,
		Description: "OpenAI Chat Completions model",
	}, nil
}

func (o *OpenAIAdapter) Generate(ctx context.Context, model, prompt string) (string, error) {
	return o.chat(ctx, model, prompt, false)
}

func (o *OpenAIAdapter) GenerateJSON(ctx context.Context, model, prompt string, out any) error {
	text, err := o.chat(ctx, model, prompt, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFences(text)), out); err != nil {
		return fmt.Errorf("%w: openai json decode: %v", domain.ErrUpstream, err)
	}
	return nil
}

func (o *OpenAIAdapter) chat(ctx context.Context, model, prompt string, jsonMode bool) (string, error) {
	if model == "" {
		model = o.model
	}

	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	reqBody := map[string]any{
		"model":    model,
		"messages": []message{{Role: "user", Content: prompt}},
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		metrics.IncCollectorCall("openai", "error")
		return "", fmt.Errorf("%w: openai: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.IncCollectorCall("openai", "rate_limited")
		return "", fmt.Errorf("%w: openai http 429", domain.ErrRateLimited)
	}
	if resp.StatusCode >= 300 {
		metrics.IncCollectorCall("openai", "error")
		return "", fmt.Errorf("%w: openai http %d", domain.ErrUpstream, resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.IncCollectorCall("openai", "error")
		return "", fmt.Errorf("%w: openai decode: %v", domain.ErrUpstream, err)
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			metrics.IncCollectorCall("openai", "ok")
			return c.Message.Content, nil
		}
	}
	metrics.IncCollectorCall("openai", "error")
	return "", fmt.Errorf("%w: openai: no choice content", domain.ErrUpstream)
}
