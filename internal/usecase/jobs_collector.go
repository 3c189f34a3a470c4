package usecase

import (
	"context"
	"fmt"
	"strings"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
	"company-research-agent/internal/domain/ports/adapter"
)

// JobsCollector discovers the careers page via search, picks the best
// candidate with the LLM, then extracts structured postings. Like news,
// missing results never fail the job.
type JobsCollector struct {
	search adapter.SearchAdapter
	web    adapter.WebScraper
	ai     adapter.AIServiceAdapter
	model  string
}

func NewJobsCollector(search adapter.SearchAdapter, web adapter.WebScraper, ai adapter.AIServiceAdapter, model string) *JobsCollector {
	return &JobsCollector{search: search, web: web, ai: ai, model: model}
}

func (j *JobsCollector) Discover(ctx context.Context, companyName, websiteURL string) ([]model.JobOpening, error) {
	careersURL, err := j.findCareersPage(ctx, companyName, websiteURL)
	if err != nil {
		return nil, err
	}
	if careersURL == "" {
		return nil, nil
	}

	extracted, err := j.web.ExtractJobs(ctx, careersURL)
	if err != nil {
		return nil, err
	}

	openings := make([]model.JobOpening, 0, len(extracted))
	for _, e := range extracted {
		openings = append(openings, model.JobOpening{
			Title:    e.Title,
			Location: e.Location,
			Link:     e.URL,
		})
	}
	return openings, nil
}

func (j *JobsCollector) findCareersPage(ctx context.Context, companyName, websiteURL string) (string, error) {
	query := fmt.Sprintf("official careers page for %s", companyName)
	if websiteURL != "" {
		query += fmt.Sprintf(" site:%s", websiteURL)
	}
	results, err := j.search.Search(ctx, query, 5)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"Find the official page (URL) listing open careers/jobs for %s from these results. Return ONLY the URL.\nResults: %s",
		companyName, formatResults(results),
	)
	url, err := j.ai.Generate(ctx, j.model, prompt)
	if err != nil {
		return "", err
	}
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http") {
		return "", fmt.Errorf("%w: no careers page for %q", domain.ErrNotFound, companyName)
	}
	return url, nil
}
