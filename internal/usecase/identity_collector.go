package usecase

import (
	"context"
	"fmt"
	"strings"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
	"company-research-agent/internal/domain/ports/adapter"
)

// Identity is the resolved canonical handle for a company: at least one
// of LinkedInURL / WebsiteURL is set on success.
type Identity struct {
	CompanyName string
	LinkedInURL string
	WebsiteURL  string
}

// IdentityResolver turns free-text input plus an optional URL into an
// Identity. Downstream steps depend on it, so resolution failure is
// fatal to the job.
type IdentityResolver struct {
	search adapter.SearchAdapter
	ai     adapter.AIServiceAdapter
	model  string
}

func NewIdentityResolver(search adapter.SearchAdapter, ai adapter.AIServiceAdapter, model string) *IdentityResolver {
	return &IdentityResolver{search: search, ai: ai, model: model}
}

func (r *IdentityResolver) Resolve(ctx context.Context, req model.ResearchRequest) (*Identity, error) {
	id := &Identity{CompanyName: strings.TrimSpace(req.Input)}
	if id.CompanyName == "" {
		return nil, domain.ErrInvalidArgument
	}

	// An explicit URL short-circuits the search.
	if u := strings.TrimSpace(req.URL); u != "" {
		if strings.Contains(u, "linkedin.com/company") {
			id.LinkedInURL = u
		} else {
			id.WebsiteURL = u
		}
	}
	if id.LinkedInURL != "" {
		return id, nil
	}

	url, err := r.findLinkedInURL(ctx, id.CompanyName)
	if err != nil {
		if id.WebsiteURL != "" {
			// The profile step can still work from the website.
			return id, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrResolution, err)
	}
	id.LinkedInURL = url
	return id, nil
}

func (r *IdentityResolver) findLinkedInURL(ctx context.Context, companyName string) (string, error) {
	query := fmt.Sprintf("official LinkedIn company profile for %s", companyName)
	results, err := r.search.Search(ctx, query, 3)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", domain.ErrNotFound
	}

	prompt := fmt.Sprintf(
		"Find the single best LinkedIn company URL from these search results. Return ONLY the URL.\nResults: %s",
		formatResults(results),
	)
	url, err := r.ai.Generate(ctx, r.model, prompt)
	if err != nil {
		return "", err
	}
	url = strings.TrimSpace(url)
	if !strings.Contains(url, "linkedin.com/company") {
		return "", fmt.Errorf("no linkedin company url in search results")
	}
	return url, nil
}

// FindWebsiteURL locates the official homepage when only a name is
// known and the LinkedIn path has been exhausted.
func (r *IdentityResolver) FindWebsiteURL(ctx context.Context, companyName string) (string, error) {
	results, err := r.search.Search(ctx, fmt.Sprintf("official website for %s", companyName), 3)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", domain.ErrNotFound
	}
	prompt := fmt.Sprintf(
		"Extract the official homepage URL from these results. Return ONLY the URL.\n%s",
		formatResults(results),
	)
	url, err := r.ai.Generate(ctx, r.model, prompt)
	if err != nil {
		return "", err
	}
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http") {
		return "", fmt.Errorf("no homepage url in search results")
	}
	return url, nil
}

func formatResults(results []adapter.SearchResult) string {
	var b strings.Builder
	for i, res := range results {
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n", i+1, res.Title, res.URL, res.Content)
	}
	return b.String()
}
