package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"company-research-agent/internal/domain"
	"company-research-agent/internal/domain/model"
	"company-research-agent/internal/domain/ports/repository"
	"company-research-agent/internal/infra/metrics"

	"github.com/go-redis/redis/v8"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo persists research job records in Redis and pushes every
// committed write to watchers over pub/sub, so observers never poll.
type JobRepo struct {
	client *redClient
	ttl    time.Duration
}

func NewJobRepo(client *redClient, ttl time.Duration) *JobRepo {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobRepo{client: client, ttl: ttl}
}

func (r *JobRepo) jobKey(id string) string    { return fmt.Sprintf("research:job:%s", id) }
func (r *JobRepo) eventsKey(id string) string { return fmt.Sprintf("research:job:%s:events", id) }

func (r *JobRepo) Create(ctx context.Context, job *model.ResearchJob) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidArgument
	}
	return r.write(ctx, job)
}

func (r *JobRepo) Update(ctx context.Context, job *model.ResearchJob) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidArgument
	}
	return r.write(ctx, job)
}

// write commits the snapshot and then publishes it. Publish happens
// after Set so a subscriber that re-reads on notify sees the new state.
func (r *JobRepo) write(ctx context.Context, job *model.ResearchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.jobKey(job.ID), data, r.ttl); err != nil {
		return err
	}
	return r.client.Publish(ctx, r.eventsKey(job.ID), data)
}

func (r *JobRepo) Find(ctx context.Context, jobID string) (*model.ResearchJob, error) {
	data, err := r.client.Get(ctx, r.jobKey(jobID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var job model.ResearchJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepo) Watch(ctx context.Context, jobID string) (<-chan *model.ResearchJob, error) {
	// Subscribe before the initial read so no update slips between them.
	sub := r.client.Subscribe(ctx, r.eventsKey(jobID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	current, err := r.Find(ctx, jobID)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan *model.ResearchJob, 8)
	metrics.WatcherAttached()
	go func() {
		defer func() {
			_ = sub.Close()
			close(out)
			metrics.WatcherDetached()
		}()

		out <- current
		if current.Terminal() {
			return
		}

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var job model.ResearchJob
				if err := json.Unmarshal([]byte(msg.Payload), &job); err != nil {
					continue
				}
				select {
				case out <- &job:
				case <-ctx.Done():
					return
				}
				if job.Terminal() {
					return
				}
			}
		}
	}()
	return out, nil
}
