package usecase

import (
	"context"
	"fmt"
	"time"

	"company-research-agent/internal/domain/ports/adapter"
)

// NewsCollector searches recent coverage and condenses it with the LLM.
// Missing news is not a job failure; the pipeline treats this step as
// optional.
type NewsCollector struct {
	search adapter.SearchAdapter
	ai     adapter.AIServiceAdapter
	model  string
}

func NewNewsCollector(search adapter.SearchAdapter, ai adapter.AIServiceAdapter, model string) *NewsCollector {
	return &NewsCollector{search: search, ai: ai, model: model}
}

func (n *NewsCollector) Summary(ctx context.Context, companyName string) (string, error) {
	year := time.Now().Year()
	query := fmt.Sprintf("recent news %d %d for %s -site:linkedin.com", year-1, year, companyName)
	results, err := n.search.Search(ctx, query, 5)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"Summarize the most important recent developments for %s based on these search results. "+
			"Focus on funding, product launches, major hires, or expansions. "+
			"Keep it to a concise 5-10 line paragraph.\n\nSEARCH RESULTS:\n%s",
		companyName, formatResults(results),
	)
	summary, err := n.ai.Generate(ctx, n.model, prompt)
	if err != nil {
		return "", err
	}
	return summary, nil
}
