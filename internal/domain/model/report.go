package model

// FundingRound describes the most recent disclosed funding round.
type FundingRound struct {
	Type   string `json:"type,omitempty"`
	Date   string `json:"date,omitempty"`
	Amount string `json:"amount,omitempty"`
}

type Employee struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Link  string `json:"link,omitempty"`
	Image string `json:"image,omitempty"`
}

type Competitor struct {
	Name  string `json:"name"`
	Link  string `json:"link,omitempty"`
	Image string `json:"image,omitempty"`
}

type JobOpening struct {
	Title    string `json:"title"`
	Location string `json:"location,omitempty"`
	Link     string `json:"link,omitempty"`
}

// SalesBrief is the recruiter-facing narrative layered on top of the
// factual report.
type SalesBrief struct {
	Summary       string   `json:"summary,omitempty"`
	Positioning   string   `json:"positioning,omitempty"`
	HiringContext string   `json:"hiring_context,omitempty"`
	TalkingPoints []string `json:"talking_points,omitempty"`
	Tone          string   `json:"tone,omitempty"`
	SourcesUsed   []string `json:"sources_used,omitempty"`
}

// CompanyReport is the merged document persisted on job completion.
// It is the union of collector outputs and synthesis output, merged
// once server-side; synthesis fields win collisions.
type CompanyReport struct {
	CompanyName   string        `json:"company_name,omitempty"`
	LinkedInURL   string        `json:"linkedin_url,omitempty"`
	Website       string        `json:"website,omitempty"`
	Description   string        `json:"description,omitempty"`
	Industry      string        `json:"industry,omitempty"`
	Followers     int           `json:"followers,omitempty"`
	EmployeeCount int           `json:"employee_count,omitempty"`
	SizeBracket   string        `json:"company_size_bracket,omitempty"`
	FoundedYear   int           `json:"founded_year,omitempty"`
	Headquarters  string        `json:"headquarters,omitempty"`
	Specialties   []string      `json:"specialties,omitempty"`
	Funding       *FundingRound `json:"funding,omitempty"`
	KeyPersonnel  []Employee    `json:"key_personnel,omitempty"`
	Competitors   []Competitor  `json:"competitors,omitempty"`
	JobOpenings   []JobOpening  `json:"job_openings,omitempty"`
	RecentNews    string        `json:"recent_news_summary,omitempty"`
	SalesBrief    *SalesBrief   `json:"sales_brief,omitempty"`
	DataSource    string        `json:"data_source,omitempty"` // "linkedin" | "website"
}

// MergeReports overlays the synthesis report on top of the collector
// report: every non-zero synthesis field replaces the collector value,
// every collector field without a synthesis counterpart survives.
func MergeReports(collected, synthesized *CompanyReport) *CompanyReport {
	if collected == nil && synthesized == nil {
		return &CompanyReport{}
	}
	if collected == nil {
		cp := *synthesized
		return &cp
	}
	out := *collected
	if synthesized == nil {
		return &out
	}

	if synthesized.CompanyName != "" {
		out.CompanyName = synthesized.CompanyName
	}
	if synthesized.LinkedInURL != "" {
		out.LinkedInURL = synthesized.LinkedInURL
	}
	if synthesized.Website != "" {
		out.Website = synthesized.Website
	}
	if synthesized.Description != "" {
		out.Description = synthesized.Description
	}
	if synthesized.Industry != "" {
		out.Industry = synthesized.Industry
	}
	if synthesized.Followers != 0 {
		out.Followers = synthesized.Followers
	}
	if synthesized.EmployeeCount != 0 {
		out.EmployeeCount = synthesized.EmployeeCount
	}
	if synthesized.SizeBracket != "" {
		out.SizeBracket = synthesized.SizeBracket
	}
	if synthesized.FoundedYear != 0 {
		out.FoundedYear = synthesized.FoundedYear
	}
	if synthesized.Headquarters != "" {
		out.Headquarters = synthesized.Headquarters
	}
	if len(synthesized.Specialties) > 0 {
		out.Specialties = synthesized.Specialties
	}
	if synthesized.Funding != nil {
		out.Funding = synthesized.Funding
	}
	if len(synthesized.KeyPersonnel) > 0 {
		out.KeyPersonnel = synthesized.KeyPersonnel
	}
	if len(synthesized.Competitors) > 0 {
		out.Competitors = synthesized.Competitors
	}
	if len(synthesized.JobOpenings) > 0 {
		out.JobOpenings = synthesized.JobOpenings
	}
	if synthesized.RecentNews != "" {
		out.RecentNews = synthesized.RecentNews
	}
	if synthesized.SalesBrief != nil {
		out.SalesBrief = synthesized.SalesBrief
	}
	if synthesized.DataSource != "" {
		out.DataSource = synthesized.DataSource
	}
	return &out
}
