package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/ports/repository"
	"company-research-agent/internal/infra/logging"
)

// PipelineRunner is implemented by the orchestrator.
type PipelineRunner interface {
	Run(ctx context.Context, jobID string) error
}

// Dispatcher pops job ids off the queue and hands each one to the
// worker pool. The queue is the durable boundary: a popped id whose
// submit fails is logged and the job fails via the pipeline's own
// bookkeeping on the next delivery attempt, never silently dropped.
type Dispatcher struct {
	queue  repository.JobQueue
	pool   *Pool
	runner PipelineRunner
	log    *zerolog.Logger
}

func NewDispatcher(queue repository.JobQueue, pool *Pool, runner PipelineRunner, log *zerolog.Logger) *Dispatcher {
	return &Dispatcher{queue: queue, pool: pool, runner: runner, log: log}
}

// Start blocks until ctx is done. Run it in its own goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.log.Info().Msg("job dispatcher started")
	for {
		jobID, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				d.log.Info().Msg("job dispatcher stopping")
				return
			}
			d.log.Error().Err(err).Msg("dequeue failed")
			time.Sleep(time.Second)
			continue
		}

		id := jobID
		traceID := uuid.NewString()
		err = d.pool.Submit(func(taskCtx context.Context) error {
			return d.runner.Run(logging.WithTraceID(taskCtx, traceID), id)
		})
		if err != nil {
			if errors.Is(err, domain.ErrQueueFull) {
				// Push back and let a less loaded moment pick it up.
				if reqErr := d.queue.Enqueue(ctx, id); reqErr != nil {
					d.log.Error().Err(reqErr).Str("job_id", id).Msg("re-enqueue failed; job lost")
				}
				time.Sleep(500 * time.Millisecond)
				continue
			}
			d.log.Error().Err(err).Str("job_id", id).Msg("submit failed")
		}
	}
}
