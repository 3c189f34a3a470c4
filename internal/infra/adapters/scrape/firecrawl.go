package scrape

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

var _ adapter.WebScraper = (*FirecrawlAdapter)(nil)

// FirecrawlAdapter covers two Firecrawl endpoints: /v2/scrape for the
// website markdown fallback and /v2/extract for structured job listings.
type FirecrawlAdapter struct {
	apiKey string
	base   string
	client *http.Client
}

func NewFirecrawlAdapter(apiKey string, timeout time.Duration) (*FirecrawlAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("firecrawl api key empty")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &FirecrawlAdapter{
		apiKey: apiKey,
		base:   "https://api.firecrawl.dev/v2",
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (f *FirecrawlAdapter) do(ctx context.Context, path string, body any, out any) error {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, f.base+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.IncCollectorCall("firecrawl", "error")
		return fmt.Errorf("%w: firecrawl: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.IncCollectorCall("firecrawl", "rate_limited")
		return fmt.Errorf("%w: firecrawl http 429", domain.ErrRateLimited)
	case resp.StatusCode >= 500:
		metrics.IncCollectorCall("firecrawl", "error")
		return fmt.Errorf("%w: firecrawl http %d", domain.ErrUpstream, resp.StatusCode)
	case resp.StatusCode >= 400:
		metrics.IncCollectorCall("firecrawl", "error")
		return fmt.Errorf("%w: firecrawl http %d", domain.ErrInvalidArgument, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.IncCollectorCall("firecrawl", "error")
		return fmt.Errorf("%w: firecrawl decode: %v", domain.ErrUpstream, err)
	}
	metrics.IncCollectorCall("firecrawl", "ok")
	return nil
}

func (f *FirecrawlAdapter) ScrapeMarkdown(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", domain.ErrInvalidArgument
	}
	body := map[string]any{
		"url":             url,
		"onlyMainContent": true,
		"formats":         []string{"markdown"},
	}
	var payload struct {
		Data struct {
			Markdown string `json:"markdown"`
		} `json:"data"`
	}
	if err := f.do(ctx, "/scrape", body, &payload); err != nil {
		return "", err
	}
	return payload.Data.Markdown, nil
}

// jobsSchema is the JSON schema handed to Firecrawl extract. Titles are
// required so location strings never masquerade as roles.
var jobsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"jobs": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":    map[string]any{"type": "string"},
					"location": map[string]any{"type": "string"},
					"url":      map[string]any{"type": "string"},
				},
				"required": []string{"title"},
			},
		},
	},
	"required": []string{"jobs"},
}

func (f *FirecrawlAdapter) ExtractJobs(ctx context.Context, careersURL string) ([]adapter.ExtractedJob, error) {
	if careersURL == "" {
		return nil, domain.ErrInvalidArgument
	}
	body := map[string]any{
		"urls":   []string{careersURL},
		"schema": jobsSchema,
		"prompt": "Extract all individual job postings. 'title' must be the specific role name, " +
			"never a location. Include 'location' and 'url' (direct link to apply) when present. " +
			"Ignore general page text.",
	}

	// Extract responses come back as either a single object or a batch list.
	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	if err := f.do(ctx, "/extract", body, &payload); err != nil {
		return nil, err
	}

	type jobsDoc struct {
		Jobs []adapter.ExtractedJob `json:"jobs"`
	}
	var doc jobsDoc
	if err := json.Unmarshal(payload.Data, &doc); err != nil {
		var batch []jobsDoc
		if err := json.Unmarshal(payload.Data, &batch); err != nil || len(batch) == 0 {
			return nil, nil
		}
		doc = batch[0]
	}

	out := make([]adapter.ExtractedJob, 0, len(doc.Jobs))
	for _, j := range doc.Jobs {
		if j.Title == "" {
			continue
		}
		if j.URL == "" {
			j.URL = careersURL
		}
		out = append(out, j)
	}
	return out, nil
}
