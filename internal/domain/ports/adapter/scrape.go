package adapter

import (
	"context"

	"company-research-agent/internal/domain/model"
)

// CompanyProfile is the structured payload from the LinkedIn scraper.
// Raw is kept verbatim for the synthesis prompt; the typed fields feed
// the collector-side report.
type CompanyProfile struct {
	Name          string              `json:"name"`
	Website       string              `json:"website"`
	LinkedInURL   string              `json:"linkedin_url"`
	Description   string              `json:"description"`
	Industry      string              `json:"industry"`
	Followers     int                 `json:"followers"`
	EmployeeCount int                 `json:"employee_count"`
	SizeBracket   string              `json:"company_size"`
	FoundedYear   int                 `json:"founded"`
	Headquarters  string              `json:"headquarters"`
	Specialties   []string            `json:"specialties"`
	Funding       *model.FundingRound `json:"funding,omitempty"`
	KeyPersonnel  []model.Employee    `json:"employees,omitempty"`
	SimilarPages  []model.Competitor  `json:"similar_pages,omitempty"`
	Raw           string              `json:"-"`
}

// ProfileScraper is the port for the structured LinkedIn company
// scraper (ScrapeCreators).
type ProfileScraper interface {
	ScrapeCompany(ctx context.Context, linkedinURL string) (*CompanyProfile, error)
}

// ExtractedJob is one job posting pulled off a careers page.
type ExtractedJob struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

// WebScraper is the port for generic page scraping and structured
// extraction (Firecrawl).
type WebScraper interface {
	// ScrapeMarkdown fetches a page's main content as markdown. Used as
	// the profile fallback when LinkedIn is unusable.
	ScrapeMarkdown(ctx context.Context, url string) (string, error)

	// ExtractJobs pulls individual job postings from a careers page.
	ExtractJobs(ctx context.Context, careersURL string) ([]ExtractedJob, error)
}
