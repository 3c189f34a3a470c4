package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/ports/adapter"
)

// ProfileCollector fetches structured company data. LinkedIn is the
// primary source; the website markdown fallback keeps the job alive
// when the scrape fails or the company has no usable LinkedIn page.
type ProfileCollector struct {
	scraper  adapter.ProfileScraper
	web      adapter.WebScraper
	resolver *IdentityResolver
	ai       adapter.AIServiceAdapter
	model    string
	log      *zerolog.Logger
}

func NewProfileCollector(
	scraper adapter.ProfileScraper,
	web adapter.WebScraper,
	resolver *IdentityResolver,
	ai adapter.AIServiceAdapter,
	model string,
	log *zerolog.Logger,
) *ProfileCollector {
	return &ProfileCollector{
		scraper:  scraper,
		web:      web,
		resolver: resolver,
		ai:       ai,
		model:    model,
		log:      log,
	}
}

// CollectedProfile carries the structured profile plus where it came
// from, so synthesis can weight sources.
type CollectedProfile struct {
	Profile    *adapter.CompanyProfile
	DataSource string // "linkedin" | "website"
	// WebsiteMarkdown is set on the fallback path and fed to synthesis.
	WebsiteMarkdown string
}

func (c *ProfileCollector) Collect(ctx context.Context, id *Identity) (*CollectedProfile, error) {
	if id.LinkedInURL != "" {
		profile, err := c.scraper.ScrapeCompany(ctx, id.LinkedInURL)
		if err == nil {
			return &CollectedProfile{Profile: profile, DataSource: "linkedin"}, nil
		}
		c.log.Warn().Err(err).Str("linkedin_url", id.LinkedInURL).Msg("linkedin scrape failed, trying website fallback")
	}

	websiteURL := id.WebsiteURL
	if websiteURL == "" {
		found, err := c.resolver.FindWebsiteURL(ctx, id.CompanyName)
		if err != nil {
			return nil, fmt.Errorf("%w: no linkedin data and no website for %q", domain.ErrResolution, id.CompanyName)
		}
		websiteURL = found
	}
	return c.collectFromWebsite(ctx, id.CompanyName, websiteURL)
}

// collectFromWebsite scrapes the homepage and asks the LLM to shape the
// markdown into the basic profile fields LinkedIn would have given us.
func (c *ProfileCollector) collectFromWebsite(ctx context.Context, companyName, websiteURL string) (*CollectedProfile, error) {
	markdown, err := c.web.ScrapeMarkdown(ctx, websiteURL)
	if err != nil {
		return nil, err
	}

	excerpt := markdown
	if len(excerpt) > 4000 {
		excerpt = excerpt[:4000]
	}
	prompt := fmt.Sprintf(
		"Extract description, industry, headquarters and founded year for %s from this text. "+
			"Respond with a JSON object with keys: description, industry, headquarters, founded (number).\nText: %s",
		companyName, excerpt,
	)

	var extracted struct {
		Description  string `json:"description"`
		Industry     string `json:"industry"`
		Headquarters string `json:"headquarters"`
		Founded      int    `json:"founded"`
	}
	if err := c.ai.GenerateJSON(ctx, c.model, prompt, &extracted); err != nil {
		c.log.Warn().Err(err).Str("website", websiteURL).Msg("website profile extraction failed, keeping raw markdown only")
	}

	profile := &adapter.CompanyProfile{
		Name:         companyName,
		Website:      websiteURL,
		Description:  extracted.Description,
		Industry:     extracted.Industry,
		Headquarters: extracted.Headquarters,
		FoundedYear:  extracted.Founded,
	}
	return &CollectedProfile{
		Profile:         profile,
		DataSource:      "website",
		WebsiteMarkdown: markdown,
	}, nil
}
