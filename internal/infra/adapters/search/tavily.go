package search

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
var _ adapter.SearchAdapter = (*TavilyAdapter)(nil)

// TavilyAdapter implements adapter.SearchAdapter against the Tavily
// search API.
type TavilyAdapter struct {
	apiKey string
	base   string
	client *http.Client
}

func NewTavilyAdapter(apiKey string, timeout time.Duration) (*TavilyAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("tavily api key empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TavilyAdapter{
		apiKey: apiKey,
		base:   "https://api.tavily.com",
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (t *TavilyAdapter) Search(ctx context.Context, query string, maxResults int) ([]adapter.SearchResult, error) {
	if query == "" {
		return nil, domain.ErrInvalidArgument
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	reqBody := struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}{Query: query, MaxResults: maxResults}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, t.base+"/search", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		metrics.IncCollectorCall("tavily", "error")
		return nil, fmt.Errorf("%w: tavily: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.IncCollectorCall("tavily", "rate_limited")
		return nil, fmt.Errorf("%w: tavily http 429", domain.ErrRateLimited)
	}
	if resp.StatusCode == http.StatusNotFound {
		metrics.IncCollectorCall("tavily", "not_found")
		return nil, fmt.Errorf("%w: tavily http 404", domain.ErrNotFound)
	}
	if resp.StatusCode >= 500 {
		metrics.IncCollectorCall("tavily", "error")
		return nil, fmt.Errorf("%w: tavily http %d", domain.ErrUpstream, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		metrics.IncCollectorCall("tavily", "error")
		return nil, fmt.Errorf("%w: tavily http %d", domain.ErrInvalidArgument, resp.StatusCode)
	}

	var payload struct {
		Results []adapter.SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.IncCollectorCall("tavily", "error")
		return nil, fmt.Errorf("%w: tavily decode: %v", domain.ErrUpstream, err)
	}
	metrics.IncCollectorCall("tavily", "ok")
	return payload.Results, nil
}
