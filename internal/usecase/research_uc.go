// File: internal/usecase/research_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
	"company-research-agent/internal/domain/ports/repository"
)

// Compile-time check
var _ ResearchUseCase = (*researchUC)(nil)

type ResearchUseCase interface {
	// Submit validates the request, creates a pending job and enqueues
	// it for the pipeline workers. It returns immediately with the job
	// id and never blocks on external calls.
	Submit(ctx context.Context, req model.ResearchRequest) (string, error)

	Find(ctx context.Context, jobID string) (*model.ResearchJob, error)

	Watch(ctx context.Context, jobID string) (<-chan *model.ResearchJob, error)
}

type researchUC struct {
	jobs  repository.JobRepository
	queue repository.JobQueue
	log   *zerolog.Logger
}

func NewResearchUseCase(jobs repository.JobRepository, queue repository.JobQueue, log *zerolog.Logger) *researchUC {
	return &researchUC{jobs: jobs, queue: queue, log: log}
}

func (r *researchUC) Submit(ctx context.Context, req model.ResearchRequest) (string, error) {
	req.Input = strings.TrimSpace(req.Input)
	if req.Input == "" {
		// Rejected before any job record exists.
		return "", fmt.Errorf("%w: input is required", domain.ErrInvalidArgument)
	}

	job := model.NewResearchJob(ulid.Make().String(), req)
	if err := r.jobs.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	if err := r.queue.Enqueue(ctx, job.ID); err != nil {
		// The record exists but nothing will run it; seal it so
		// observers are not left waiting on a pending ghost.
		job.Fail("could not enqueue research job")
		if uerr := r.jobs.Update(ctx, job); uerr != nil {
			r.log.Error().Err(uerr).Str("job_id", job.ID).Msg("failed to seal unqueued job")
		}
		return "", fmt.Errorf("enqueue job: %w", err)
	}

	r.log.Info().Str("job_id", job.ID).Str("input", req.Input).Msg("research job submitted")
	return job.ID, nil
}

func (r *researchUC) Find(ctx context.Context, jobID string) (*model.ResearchJob, error) {
	if jobID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return r.jobs.Find(ctx, jobID)
}

func (r *researchUC) Watch(ctx context.Context, jobID string) (<-chan *model.ResearchJob, error) {
	if jobID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return r.jobs.Watch(ctx, jobID)
}
