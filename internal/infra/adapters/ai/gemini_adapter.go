// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/ports/adapter"
	"company-research-agent/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	ctx := context.Background()
	m, err := g.client.Models.Get(ctx, modelOrDefault(model, g.defaultModel), nil)
	if err != nil {
		// Return minimal info on error so callers aren't blocked.
		return adapter.ModelInfo{Name: model}, nil
	}
	return adapter.ModelInfo{
		Name:        m.Name,
		Description: m.Description,
		MaxTokens:   int(m.InputTokenLimit),
	}, nil
}

func (g *GeminiAdapter) Generate(ctx context.Context, model, prompt string) (string, error) {
	return g.generate(ctx, model, prompt, "")
}

func (g *GeminiAdapter) GenerateJSON(ctx context.Context, model, prompt string, out any) error {
	text, err := g.generate(ctx, model, prompt, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFences(text)), out); err != nil {
		return fmt.Errorf("%w: gemini json decode: %v", domain.ErrUpstream, err)
	}
	return nil
}

func (g *GeminiAdapter) generate(ctx context.Context, model, prompt, mime string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.ErrInvalidArgument
	}
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxOut),
	}
	if mime != "" {
		cfg.ResponseMIMEType = mime
	}

	resp, err := g.client.Models.GenerateContent(
		ctx,
		modelOrDefault(model, g.defaultModel),
		genai.Text(prompt),
		cfg,
	)
	if err != nil {
		metrics.IncCollectorCall("gemini", "error")
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrUpstream, err)
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
			text = t
		}
	}
	if text == "" {
		metrics.IncCollectorCall("gemini", "error")
		return "", fmt.Errorf("%w: gemini: empty candidate", domain.ErrUpstream)
	}
	metrics.IncCollectorCall("gemini", "ok")
	return text, nil
}

// stripFences tolerates models that wrap JSON in a markdown code block
// despite the JSON response MIME type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
