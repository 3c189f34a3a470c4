package adapter

import "context"

// ModelInfo describes a model.
type ModelInfo struct {
	Name        string
	Description string
	MaxTokens   int
}

// AIServiceAdapter is the port for LLM text generation. Collectors use
// Generate for small extraction prompts; the synthesis step uses
// GenerateJSON to force a structured document.
type AIServiceAdapter interface {
	GetModelInfo(model string) (ModelInfo, error)

	// Generate returns plain assistant text for a single prompt.
	Generate(ctx context.Context, model, prompt string) (string, error)

	// GenerateJSON asks the provider for a JSON-only response and
	// unmarshals it into out.
	GenerateJSON(ctx context.Context, model, prompt string, out any) error
}
