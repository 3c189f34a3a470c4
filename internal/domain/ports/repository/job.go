package repository

import (
	"context"

	"company-research-agent/internal/domain/model"
)

// JobRepository is the port for the research job store. One pipeline
// instance owns one job, so last-write-wins is sufficient.
type JobRepository interface {
	// Create persists a new job record. Fails with ErrInvalidArgument
	// when the id is empty.
	Create(ctx context.Context, job *model.ResearchJob) error

	// Update replaces the stored record and notifies watchers.
	Update(ctx context.Context, job *model.ResearchJob) error

	// Find returns the current snapshot or domain.ErrNotFound.
	Find(ctx context.Context, jobID string) (*model.ResearchJob, error)

	// Watch returns a channel of job snapshots: the current state first,
	// then one per committed update. The channel closes after a terminal
	// snapshot is delivered, or when ctx is done. Unknown ids fail with
	// domain.ErrNotFound instead of hanging.
	Watch(ctx context.Context, jobID string) (<-chan *model.ResearchJob, error)
}

// JobQueue is the fire-and-forget handoff between the submission API
// and the pipeline workers. Enqueued ids survive a submitter restart.
type JobQueue interface {
	Enqueue(ctx context.Context, jobID string) error

	// Dequeue blocks until a job id is available or ctx is done.
	Dequeue(ctx context.Context) (string, error)
}
