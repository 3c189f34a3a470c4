package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
	"company-research-agent/internal/domain/ports/adapter"
)

type pipelineFixture struct {
	repo     *memJobRepo
	search   *fakeSearch
	ai       *fakeAI
	scraper  *fakeScraper
	web      *fakeWeb
	notifier *fakeNotifier
	pipeline *Pipeline
}

func newPipelineFixture() *pipelineFixture {
	log := zerolog.Nop()

	repo := newMemJobRepo()
	search := &fakeSearch{}
	ai := &fakeAI{
		generate: map[string]string{
			"LinkedIn company URL":       "https://linkedin.com/company/acme",
			"listing open careers/jobs":  "https://acme.example/careers",
			"most important recent deve": "Acme raised a Series B and opened a Sydney office.",
		},
		jsonDoc: `{"description":"Acme builds widgets.","summary":"Acme is a widget maker."}`,
	}
	scraper := &fakeScraper{profile: &adapter.CompanyProfile{
		Name:        "Acme Corp",
		Website:     "https://acme.example",
		LinkedInURL: "https://linkedin.com/company/acme",
		Industry:    "Software",
		Raw:         `{"name":"Acme Corp"}`,
	}}
	web := &fakeWeb{jobs: []adapter.ExtractedJob{{Title: "Engineer", Location: "Melbourne"}}}
	notifier := &fakeNotifier{}

	resolver := NewIdentityResolver(search, ai, "test-model")
	profile := NewProfileCollector(scraper, web, resolver, ai, "test-model", &log)
	news := NewNewsCollector(search, ai, "test-model")
	openings := NewJobsCollector(search, web, ai, "test-model")
	synth := NewSynthesizer(ai, "test-model", &log)

	return &pipelineFixture{
		repo:     repo,
		search:   search,
		ai:       ai,
		scraper:  scraper,
		web:      web,
		notifier: notifier,
		pipeline: NewPipeline(repo, resolver, profile, news, openings, synth, notifier, 30*time.Second, &log),
	}
}

func (f *pipelineFixture) submit(t *testing.T, req model.ResearchRequest) *model.ResearchJob {
	t.Helper()
	job := model.NewResearchJob("01JTEST000000000000000000", req)
	if err := f.repo.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestPipelineSuccess(t *testing.T) {
	f := newPipelineFixture()
	job := f.submit(t, model.ResearchRequest{Input: "Acme"})

	if err := f.pipeline.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := f.repo.Find(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != model.JobStatusComplete {
		t.Fatalf("status = %s (%s), want complete", got.Status, got.Error)
	}
	if len(got.StepsComplete) != len(model.StepCatalog()) {
		t.Fatalf("steps_complete = %v, want full catalog", got.StepsComplete)
	}
	for i, step := range model.StepCatalog() {
		if got.StepsComplete[i] != step {
			t.Fatalf("steps_complete[%d] = %s, want %s", i, got.StepsComplete[i], step)
		}
	}

	report := got.FinalReport
	if report == nil {
		t.Fatal("complete job has no final report")
	}
	// Union: collector fields plus synthesis fields.
	if report.CompanyName != "Acme Corp" {
		t.Errorf("company name = %q", report.CompanyName)
	}
	if report.Industry != "Software" {
		t.Errorf("industry = %q, collector field missing", report.Industry)
	}
	if report.Description != "Acme builds widgets." {
		t.Errorf("description = %q, synthesis field missing", report.Description)
	}
	if report.RecentNews == "" {
		t.Error("news summary missing from report")
	}
	if len(report.JobOpenings) != 1 || report.JobOpenings[0].Title != "Engineer" {
		t.Errorf("job openings = %v", report.JobOpenings)
	}
	if report.SalesBrief == nil {
		t.Error("sales brief missing from report")
	}

	if len(f.notifier.calls) != 1 || f.notifier.calls[0] != job.ID+":complete" {
		t.Errorf("notifier calls = %v", f.notifier.calls)
	}
}

func TestPipelineSnapshotsAreCatalogPrefixes(t *testing.T) {
	f := newPipelineFixture()
	job := f.submit(t, model.ResearchRequest{Input: "Acme"})

	if err := f.pipeline.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	catalog := model.StepCatalog()
	var lastStatus model.JobStatus
	for _, snap := range f.repo.snapshots(job.ID) {
		for i, step := range snap.StepsComplete {
			if step != catalog[i] {
				t.Fatalf("snapshot steps %v not a catalog prefix", snap.StepsComplete)
			}
		}
		// Status is monotonic: pending -> running -> terminal.
		switch lastStatus {
		case model.JobStatusComplete, model.JobStatusError:
			t.Fatalf("snapshot after terminal state: %s -> %s", lastStatus, snap.Status)
		case model.JobStatusRunning:
			if snap.Status == model.JobStatusPending {
				t.Fatal("status went backwards from running to pending")
			}
		}
		lastStatus = snap.Status
	}
}

func TestPipelineResolutionFailureIsFatal(t *testing.T) {
	f := newPipelineFixture()
	f.search.err = fmt.Errorf("%w: tavily http 500", domain.ErrUpstream)
	job := f.submit(t, model.ResearchRequest{Input: "Unknown Co"})

	if err := f.pipeline.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := f.repo.Find(context.Background(), job.ID)
	if got.Status != model.JobStatusError {
		t.Fatalf("status = %s, want error", got.Status)
	}
	if got.FinalReport != nil {
		t.Fatal("failed job has a final report")
	}
	if len(got.StepsComplete) != 0 {
		t.Fatalf("steps after failed resolve_identity: %v", got.StepsComplete)
	}
	if got.Error == "" {
		t.Fatal("no error string recorded")
	}
}

func TestPipelineProfileFailureAfterFallbackIsFatal(t *testing.T) {
	f := newPipelineFixture()
	f.scraper.err = fmt.Errorf("%w: scrapecreators http 500", domain.ErrUpstream)
	f.web.markdownErr = fmt.Errorf("%w: firecrawl http 500", domain.ErrUpstream)
	job := f.submit(t, model.ResearchRequest{Input: "Acme", URL: "https://acme.example"})

	if err := f.pipeline.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := f.repo.Find(context.Background(), job.ID)
	if got.Status != model.JobStatusError {
		t.Fatalf("status = %s, want error", got.Status)
	}
	if len(got.StepsComplete) != 1 || got.StepsComplete[0] != model.StepResolveIdentity {
		t.Fatalf("steps_complete = %v, want only resolve_identity", got.StepsComplete)
	}
}

func TestPipelineWebsiteFallbackProfile(t *testing.T) {
	f := newPipelineFixture()
	f.scraper.err = fmt.Errorf("%w: linkedin profile", domain.ErrNotFound)
	f.web.markdown = "# Acme\nWe build widgets in Melbourne."
	job := f.submit(t, model.ResearchRequest{Input: "Acme", URL: "https://acme.example"})

	if err := f.pipeline.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := f.repo.Find(context.Background(), job.ID)
	if got.Status != model.JobStatusComplete {
		t.Fatalf("status = %s (%s), want complete via website fallback", got.Status, got.Error)
	}
	if got.FinalReport.DataSource != "website" {
		t.Errorf("data source = %q, want website", got.FinalReport.DataSource)
	}
}

func TestPipelineOptionalStepsAreNonFatal(t *testing.T) {
	f := newPipelineFixture()
	f.search.errFor = map[string]error{
		"recent news":  fmt.Errorf("%w: tavily http 500", domain.ErrUpstream),
		"careers page": fmt.Errorf("%w: tavily http 429", domain.ErrRateLimited),
	}
	job := f.submit(t, model.ResearchRequest{Input: "Acme"})

	if err := f.pipeline.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := f.repo.Find(context.Background(), job.ID)
	if got.Status != model.JobStatusComplete {
		t.Fatalf("status = %s (%s), optional step failures must not fail the job", got.Status, got.Error)
	}
	// Skipped-by-failure steps are still recorded so observers relying
	// on catalog order never hang.
	if len(got.StepsComplete) != len(model.StepCatalog()) {
		t.Fatalf("steps_complete = %v, want full catalog", got.StepsComplete)
	}
	if got.FinalReport.RecentNews != "" {
		t.Errorf("news = %q, want empty after news failure", got.FinalReport.RecentNews)
	}
	if len(got.FinalReport.JobOpenings) != 0 {
		t.Errorf("openings = %v, want none after jobs failure", got.FinalReport.JobOpenings)
	}
}

func TestPipelineRedeliveredTerminalJobIsNoop(t *testing.T) {
	f := newPipelineFixture()
	job := f.submit(t, model.ResearchRequest{Input: "Acme"})
	if err := f.pipeline.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := len(f.repo.snapshots(job.ID))

	if err := f.pipeline.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if after := len(f.repo.snapshots(job.ID)); after != before {
		t.Fatalf("redelivery mutated a terminal job: %d -> %d snapshots", before, after)
	}
}

func TestPipelineUnknownJob(t *testing.T) {
	f := newPipelineFixture()
	if err := f.pipeline.Run(context.Background(), "missing"); err == nil {
		t.Fatal("Run on unknown job id returned nil")
	}
}
