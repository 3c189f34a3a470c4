package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"company-research-agent/internal/domain/model"
)

// promptTokenBudget caps the context handed to the synthesis prompt.
// Counting uses cl100k_base as a best-effort proxy across providers.
const promptTokenBudget = 24000

// Synthesizer merges everything the collectors gathered into the final
// CompanyReport, exactly once, server-side. Synthesis fields override
// collector fields on collision.
type Synthesizer struct {
	ai    aiGenerator
	model string
	log   *zerolog.Logger
	enc   *tiktoken.Tiktoken
}

// aiGenerator is the slice of the AI port synthesis needs; tests plug a
// fake in without faking the whole adapter.
type aiGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
	GenerateJSON(ctx context.Context, model, prompt string, out any) error
}

func NewSynthesizer(ai aiGenerator, model string, log *zerolog.Logger) *Synthesizer {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &Synthesizer{ai: ai, model: model, log: log, enc: enc}
}

// Gathered is the pipeline's accumulated state at synthesis time.
type Gathered struct {
	Identity    *Identity
	Profile     *CollectedProfile
	NewsSummary string
	JobOpenings []model.JobOpening
}

func (s *Synthesizer) Synthesize(ctx context.Context, g *Gathered) (*model.CompanyReport, error) {
	collected := collectedReport(g)

	var synthesized model.CompanyReport
	if err := s.ai.GenerateJSON(ctx, s.model, s.buildPrompt(g), &synthesized); err != nil {
		return nil, err
	}

	report := model.MergeReports(collected, &synthesized)
	report.SalesBrief = s.salesBrief(ctx, g, report)
	return report, nil
}

// collectedReport maps collector output into report shape before the
// LLM sees anything, so the union property holds even when synthesis
// returns sparse fields.
func collectedReport(g *Gathered) *model.CompanyReport {
	r := &model.CompanyReport{
		CompanyName: g.Identity.CompanyName,
		LinkedInURL: g.Identity.LinkedInURL,
		Website:     g.Identity.WebsiteURL,
		RecentNews:  g.NewsSummary,
		JobOpenings: g.JobOpenings,
	}
	if g.Profile != nil && g.Profile.Profile != nil {
		p := g.Profile.Profile
		r.DataSource = g.Profile.DataSource
		if p.Name != "" {
			r.CompanyName = p.Name
		}
		if p.Website != "" {
			r.Website = p.Website
		}
		if p.LinkedInURL != "" {
			r.LinkedInURL = p.LinkedInURL
		}
		r.Description = p.Description
		r.Industry = p.Industry
		r.Followers = p.Followers
		r.EmployeeCount = p.EmployeeCount
		r.SizeBracket = p.SizeBracket
		r.FoundedYear = p.FoundedYear
		r.Headquarters = p.Headquarters
		r.Specialties = p.Specialties
		r.Funding = p.Funding
		r.KeyPersonnel = p.KeyPersonnel
		r.Competitors = p.SimilarPages
	}
	return r
}

func (s *Synthesizer) buildPrompt(g *Gathered) string {
	raw := "N/A"
	website := "N/A"
	if g.Profile != nil {
		if g.Profile.Profile != nil && g.Profile.Profile.Raw != "" {
			raw = g.Profile.Profile.Raw
		}
		if g.Profile.WebsiteMarkdown != "" {
			website = g.Profile.WebsiteMarkdown
		}
	}

	jobsText := "None found"
	if len(g.JobOpenings) > 0 {
		var b strings.Builder
		for _, j := range g.JobOpenings {
			fmt.Fprintf(&b, "- %s (%s) %s\n", j.Title, j.Location, j.Link)
		}
		jobsText = b.String()
	}

	// Raw profile data dominates the budget; trim it first.
	budget := promptTokenBudget - s.countTokens(jobsText) - s.countTokens(g.NewsSummary)
	raw = s.truncate(raw, budget*2/3)
	website = s.truncate(website, budget/3)

	return fmt.Sprintf(`You are a world-class recruitment research analyst.
Synthesize all the information below into a single JSON object with these keys:
company_name, linkedin_url, website, description, industry, followers (number),
employee_count (number), company_size_bracket, founded_year (number), headquarters,
specialties (list of strings), funding ({type, date, amount}),
key_personnel (list of {name, title, link}), competitors (list of {name, link}),
job_openings (list of {title, location, link}), recent_news_summary.

RULES:
1. Parse the profile data's posts for job openings and combine them with the listed jobs.
2. Extract similarPages as the competitors list.
3. Summarize the news into 2-3 sentences for recent_news_summary.
4. Fill in all other fields directly from the profile data. Use ONLY the provided data.

DATA:
---
Profile Data (JSON):
%s
---
Website Content (Markdown):
%s
---
Job Listings:
%s
---
Recent News Summary:
%s
---

Now, generate the final JSON object.`, raw, website, jobsText, g.NewsSummary)
}

// salesBrief generates the recruiter-facing brief. LLM failure here
// degrades to a deterministic fallback instead of failing the job.
func (s *Synthesizer) salesBrief(ctx context.Context, g *Gathered, report *model.CompanyReport) *model.SalesBrief {
	prompt := s.buildBriefPrompt(g, report)

	var brief model.SalesBrief
	if err := s.ai.GenerateJSON(ctx, s.model, prompt, &brief); err != nil {
		s.log.Warn().Err(err).Str("company", report.CompanyName).Msg("sales brief generation failed, using fallback")
		return fallbackBrief(report)
	}
	clampBrief(&brief)
	return &brief
}

func (s *Synthesizer) buildBriefPrompt(g *Gathered, report *model.CompanyReport) string {
	var profile strings.Builder
	if report.Description != "" {
		fmt.Fprintf(&profile, "About: %s\n", s.truncate(report.Description, 500))
	}
	if report.Industry != "" {
		fmt.Fprintf(&profile, "Industry: %s\n", report.Industry)
	}
	if report.Headquarters != "" {
		fmt.Fprintf(&profile, "HQ: %s\n", report.Headquarters)
	}
	if report.SizeBracket != "" {
		fmt.Fprintf(&profile, "Size: %s\n", report.SizeBracket)
	}
	if report.FoundedYear != 0 {
		fmt.Fprintf(&profile, "Founded: %d\n", report.FoundedYear)
	}

	website := "N/A"
	if g.Profile != nil && g.Profile.WebsiteMarkdown != "" {
		website = s.truncate(g.Profile.WebsiteMarkdown, 3000)
	}

	titles := make([]string, 0, 3)
	for i, j := range report.JobOpenings {
		if i == 3 {
			break
		}
		titles = append(titles, j.Title)
	}

	return fmt.Sprintf(`You create factual, concise company briefs for recruiters meeting prospective clients.
Use ONLY the provided data. Prefer website > LinkedIn > news for positioning.
No invented claims. Clear, plain English. Avoid hype unless quoted.

COMPANY_NAME: %s

WEBSITE_EXCERPT:
%s

PROFILE_DATA:
%s

NEWS_SUMMARY:
%s

JOBS_BRIEF:
- openings_count: %d
- sample_titles: %s

Respond with a JSON object:
- summary: 2-3 sentences about what they do, for whom, and where
- positioning: 1-2 sentences on focus/differentiation or products
- hiring_context: 1-2 sentences on recruiting-relevant signals
- talking_points: 3-5 bullet points tailored for a recruiter meeting
- tone: 1-3 words describing their communication style
- sources_used: tags like 'website#about', 'linkedin#description', 'news#1', 'jobs#count'`,
		report.CompanyName, website, profile.String(), orNA(report.RecentNews),
		len(report.JobOpenings), strings.Join(titles, ", "))
}

// clampBrief enforces the length limits the UI renders against.
func clampBrief(b *model.SalesBrief) {
	b.Summary = clip(b.Summary, 420)
	b.Positioning = clip(b.Positioning, 240)
	b.HiringContext = clip(b.HiringContext, 240)
	if len(b.TalkingPoints) > 5 {
		b.TalkingPoints = b.TalkingPoints[:5]
	}
	points := b.TalkingPoints[:0]
	for _, p := range b.TalkingPoints {
		if strings.TrimSpace(p) == "" {
			continue
		}
		points = append(points, clip(p, 140))
	}
	b.TalkingPoints = points
}

func fallbackBrief(report *model.CompanyReport) *model.SalesBrief {
	summary := fmt.Sprintf("%s is a company", report.CompanyName)
	if report.Industry != "" {
		summary += fmt.Sprintf(" in the %s industry", report.Industry)
	}
	if report.Headquarters != "" {
		summary += fmt.Sprintf(", headquartered in %s", report.Headquarters)
	}
	summary += "."

	sources := []string{}
	if report.Description != "" || report.Industry != "" {
		sources = append(sources, "linkedin#basic")
	}
	return &model.SalesBrief{
		Summary:       summary,
		Positioning:   "Information unavailable",
		HiringContext: "No current hiring signals available",
		TalkingPoints: []string{"Company profile available for review"},
		Tone:          "neutral",
		SourcesUsed:   sources,
	}
}

func (s *Synthesizer) countTokens(text string) int {
	if s.enc == nil {
		return len(text) / 4
	}
	return len(s.enc.Encode(text, nil, nil))
}

// truncate keeps the first maxTokens worth of text.
func (s *Synthesizer) truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if s.enc == nil {
		return clip(text, maxTokens*4)
	}
	ids := s.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return s.enc.Decode(ids[:maxTokens])
}

// clip cuts s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
