package ai

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"company-research-agent/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev testing.
// It logs prompts instead of sending real AI requests.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{
		Name:        "noop-ai-model",
		Description: "Noop AI model for testing",
		MaxTokens:   1024,
	}, nil
}

func (a *NoopAIAdapter) Generate(ctx context.Context, model, prompt string) (string, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	log.Printf("[noop-ai] prompt (%d chars) for model %s\n", len(prompt), model)
	return "This is a noop AI response.", nil
}

func (a *NoopAIAdapter) GenerateJSON(ctx context.Context, model, prompt string, out any) error {
	if _, err := a.Generate(ctx, model, prompt); err != nil {
		return err
	}
	return json.Unmarshal([]byte("{}"), out)
}
