package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
	"company-research-agent/internal/domain/ports/adapter"
	"company-research-agent/internal/domain/ports/repository"
	"company-research-agent/internal/infra/logging"
	"company-research-agent/internal/infra/metrics"
)

// Pipeline executes the fixed research step sequence for one job at a
// time. It is the only writer of a job once it picks the job up: every
// step completion is committed to the store before the next step runs,
// and the job reaches a terminal state exactly once.
type Pipeline struct {
	jobs        repository.JobRepository
	identity    *IdentityResolver
	profile     *ProfileCollector
	news        *NewsCollector
	openings    *JobsCollector
	synth       *Synthesizer
	notifier    adapter.Notifier
	stepTimeout time.Duration
	log         *zerolog.Logger
}

func NewPipeline(
	jobs repository.JobRepository,
	identity *IdentityResolver,
	profile *ProfileCollector,
	news *NewsCollector,
	openings *JobsCollector,
	synth *Synthesizer,
	notifier adapter.Notifier,
	stepTimeout time.Duration,
	log *zerolog.Logger,
) *Pipeline {
	if stepTimeout <= 0 {
		stepTimeout = 2 * time.Minute
	}
	return &Pipeline{
		jobs:        jobs,
		identity:    identity,
		profile:     profile,
		news:        news,
		openings:    openings,
		synth:       synth,
		notifier:    notifier,
		stepTimeout: stepTimeout,
		log:         log,
	}
}

// Run drives one job from pending to a terminal state. Errors from
// fatal steps are captured on the job record, never returned to the
// dispatcher: after submission the job boundary absorbs all failures.
func (p *Pipeline) Run(ctx context.Context, jobID string) error {
	ctx = logging.WithJobID(ctx, jobID)
	log := logging.With(ctx, p.log)
	defer logging.TraceDuration(log, "Pipeline.Run")()

	job, err := p.jobs.Find(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.Terminal() {
		// Redelivered id; the earlier run already finished it.
		return nil
	}

	metrics.JobStarted()
	defer metrics.JobFinished()

	job.MarkRunning()
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}
	log.Info().Str("input", job.Request.Input).Msg("pipeline started")

	gathered := &Gathered{}

	// resolve_identity (fatal)
	err = p.step(ctx, job, model.StepResolveIdentity, func(ctx context.Context) error {
		id, err := p.identity.Resolve(ctx, job.Request)
		if err != nil {
			return err
		}
		gathered.Identity = id
		return nil
	})
	if err != nil {
		return p.fail(ctx, job, model.StepResolveIdentity, err)
	}

	// fetch_profile (fatal)
	err = p.step(ctx, job, model.StepFetchProfile, func(ctx context.Context) error {
		collected, err := p.profile.Collect(ctx, gathered.Identity)
		if err != nil {
			return err
		}
		gathered.Profile = collected
		// The scrape may correct the name and website we started with.
		if collected.Profile.Name != "" {
			gathered.Identity.CompanyName = collected.Profile.Name
		}
		if collected.Profile.Website != "" {
			gathered.Identity.WebsiteURL = collected.Profile.Website
		}
		return nil
	})
	if err != nil {
		return p.fail(ctx, job, model.StepFetchProfile, err)
	}

	// search_news and search_jobs are independent, so they run
	// concurrently; completion is recorded in catalog order below.
	// Both are optional: a miss degrades the report, not the job.
	var wg sync.WaitGroup
	var newsErr, jobsErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout)
		defer cancel()
		start := time.Now()
		gathered.NewsSummary, newsErr = p.news.Summary(stepCtx, gathered.Identity.CompanyName)
		metrics.ObserveStep(model.StepSearchNews, float64(time.Since(start).Milliseconds()), newsErr == nil)
	}()
	go func() {
		defer wg.Done()
		stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout)
		defer cancel()
		start := time.Now()
		gathered.JobOpenings, jobsErr = p.openings.Discover(stepCtx, gathered.Identity.CompanyName, gathered.Identity.WebsiteURL)
		metrics.ObserveStep(model.StepSearchJobs, float64(time.Since(start).Milliseconds()), jobsErr == nil)
	}()
	wg.Wait()

	if newsErr != nil {
		log.Warn().Err(newsErr).Msg("news search failed, continuing without news")
		gathered.NewsSummary = ""
	}
	if jobsErr != nil {
		log.Warn().Err(jobsErr).Msg("jobs search failed, continuing without openings")
		gathered.JobOpenings = nil
	}

	// Optional steps are still recorded complete so observers relying
	// on catalog order never wait forever.
	job.MarkStepComplete(model.StepSearchNews)
	job.MarkStepComplete(model.StepSearchJobs)
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("record context steps: %w", err)
	}

	// synthesize (fatal)
	var report *model.CompanyReport
	err = p.step(ctx, job, model.StepSynthesize, func(ctx context.Context) error {
		var err error
		report, err = p.synth.Synthesize(ctx, gathered)
		return err
	})
	if err != nil {
		return p.fail(ctx, job, model.StepSynthesize, err)
	}

	if !job.Complete(report) {
		return fmt.Errorf("%w: %s", domain.ErrJobTerminal, job.ID)
	}
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	metrics.IncJob(string(model.JobStatusComplete))
	log.Info().Str("company", report.CompanyName).Msg("pipeline complete")
	p.notify(job, "company: "+report.CompanyName)
	return nil
}

// step runs one fatal step under the per-step timeout and commits its
// completion before returning.
func (p *Pipeline) step(ctx context.Context, job *model.ResearchJob, stepID string, fn func(ctx context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(logging.WithStep(ctx, stepID), p.stepTimeout)
	defer cancel()

	start := time.Now()
	err := fn(stepCtx)
	latency := time.Since(start)
	metrics.ObserveStep(stepID, float64(latency.Milliseconds()), err == nil)

	if err != nil {
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: step %s timed out after %s", domain.ErrUpstream, stepID, p.stepTimeout)
		}
		return err
	}

	job.MarkStepComplete(stepID)
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("record step %s: %w", stepID, err)
	}
	logging.With(ctx, p.log).Debug().Str("step", stepID).Dur("duration", latency).Msg("step complete")
	return nil
}

// fail seals the job with the literal error string; observers render it
// verbatim.
func (p *Pipeline) fail(ctx context.Context, job *model.ResearchJob, stepID string, cause error) error {
	if !job.Fail(cause.Error()) {
		return fmt.Errorf("%w: %s", domain.ErrJobTerminal, job.ID)
	}
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("record failure of %s: %w", stepID, err)
	}
	metrics.IncJob(string(model.JobStatusError))
	logging.With(ctx, p.log).Error().Err(cause).Str("step", stepID).Msg("pipeline failed")
	p.notify(job, cause.Error())
	return nil
}

func (p *Pipeline) notify(job *model.ResearchJob, summary string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.notifier.NotifyJobFinished(ctx, job.ID, string(job.Status), summary); err != nil {
		p.log.Warn().Err(err).Str("job_id", job.ID).Msg("terminal notification failed")
	}
}
