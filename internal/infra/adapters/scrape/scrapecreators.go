package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
	"company-research-agent/internal/domain/ports/adapter"
	"company-research-agent/internal/infra/metrics"
)

var _ adapter.ProfileScraper = (*ScrapeCreatorsAdapter)(nil)

// ScrapeCreatorsAdapter fetches structured LinkedIn company data from
// the ScrapeCreators API.
type ScrapeCreatorsAdapter struct {
	apiKey string
	base   string
	client *http.Client
}

func NewScrapeCreatorsAdapter(apiKey string, timeout time.Duration) (*ScrapeCreatorsAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("scrapecreators api key empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ScrapeCreatorsAdapter{
		apiKey: apiKey,
		base:   "https://api.scrapecreators.com",
		client: &http.Client{Timeout: timeout},
	}, nil
}

// scrapedCompany mirrors the provider payload. similarPages and posts
// arrive in provider-specific shapes and are normalized below.
type scrapedCompany struct {
	Success       *bool    `json:"success,omitempty"`
	Name          string   `json:"name"`
	Website       string   `json:"website"`
	URL           string   `json:"url"`
	Description   string   `json:"description"`
	Industry      string   `json:"industry"`
	Followers     int      `json:"followers"`
	EmployeeCount int      `json:"employeeCount"`
	CompanySize   string   `json:"companySize"`
	Founded       int      `json:"founded"`
	Headquarters  string   `json:"headquarters"`
	Specialties   []string `json:"specialties"`
	Funding       *struct {
		Type   string `json:"type"`
		Date   string `json:"date"`
		Amount string `json:"amount"`
	} `json:"lastFundingRound"`
	Employees []struct {
		Name  string `json:"name"`
		Title string `json:"title"`
		Link  string `json:"link"`
		Image string `json:"image"`
	} `json:"employees"`
	SimilarPages []struct {
		Name  string `json:"name"`
		Link  string `json:"link"`
		Image string `json:"image"`
	} `json:"similarPages"`
}

func (s *ScrapeCreatorsAdapter) ScrapeCompany(ctx context.Context, linkedinURL string) (*adapter.CompanyProfile, error) {
	if linkedinURL == "" {
		return nil, domain.ErrInvalidArgument
	}

	endpoint := s.base + "/v1/linkedin/company?url=" + url.QueryEscape(linkedinURL)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.IncCollectorCall("scrapecreators", "error")
		return nil, fmt.Errorf("%w: scrapecreators: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.IncCollectorCall("scrapecreators", "not_found")
		return nil, fmt.Errorf("%w: linkedin profile %s", domain.ErrNotFound, linkedinURL)
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.IncCollectorCall("scrapecreators", "rate_limited")
		return nil, fmt.Errorf("%w: scrapecreators http 429", domain.ErrRateLimited)
	case resp.StatusCode >= 500:
		metrics.IncCollectorCall("scrapecreators", "error")
		return nil, fmt.Errorf("%w: scrapecreators http %d", domain.ErrUpstream, resp.StatusCode)
	case resp.StatusCode >= 400:
		metrics.IncCollectorCall("scrapecreators", "error")
		return nil, fmt.Errorf("%w: scrapecreators http %d", domain.ErrInvalidArgument, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncCollectorCall("scrapecreators", "error")
		return nil, fmt.Errorf("%w: scrapecreators read: %v", domain.ErrUpstream, err)
	}

	var sc scrapedCompany
	if err := json.Unmarshal(raw, &sc); err != nil {
		metrics.IncCollectorCall("scrapecreators", "error")
		return nil, fmt.Errorf("%w: scrapecreators decode: %v", domain.ErrUpstream, err)
	}
	if sc.Success != nil && !*sc.Success {
		metrics.IncCollectorCall("scrapecreators", "not_found")
		return nil, fmt.Errorf("%w: linkedin profile %s", domain.ErrNotFound, linkedinURL)
	}

	profile := &adapter.CompanyProfile{
		Name:          sc.Name,
		Website:       sc.Website,
		LinkedInURL:   firstNonEmpty(sc.URL, linkedinURL),
		Description:   sc.Description,
		Industry:      sc.Industry,
		Followers:     sc.Followers,
		EmployeeCount: sc.EmployeeCount,
		SizeBracket:   sc.CompanySize,
		FoundedYear:   sc.Founded,
		Headquarters:  sc.Headquarters,
		Specialties:   sc.Specialties,
		Raw:           string(raw),
	}
	if sc.Funding != nil {
		profile.Funding = &model.FundingRound{Type: sc.Funding.Type, Date: sc.Funding.Date, Amount: sc.Funding.Amount}
	}
	for _, e := range sc.Employees {
		profile.KeyPersonnel = append(profile.KeyPersonnel, model.Employee{
			Name: e.Name, Title: e.Title, Link: e.Link, Image: e.Image,
		})
	}
	for _, p := range sc.SimilarPages {
		profile.SimilarPages = append(profile.SimilarPages, model.Competitor{
			Name: p.Name, Link: p.Link, Image: p.Image,
		})
	}
	metrics.IncCollectorCall("scrapecreators", "ok")
	return profile, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
