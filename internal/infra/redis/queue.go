package redis

import (
	"context"
	"errors"
	"time"

	"company-research-agent/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

const queueKey = "research:queue"

var _ repository.JobQueue = (*Queue)(nil)

// Queue is the Redis-backed handoff between the submission API and the
// pipeline dispatcher. Pending ids survive a process restart.
type Queue struct {
	client *redClient
}

func NewQueue(client *redClient) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Enqueue(ctx context.Context, jobID string) error {
	return q.client.LPush(ctx, queueKey, jobID)
}

// Dequeue blocks until a job id arrives. The short BRPOP timeout keeps
// the loop responsive to ctx cancellation, since go-redis v8 BRPOP is
// not interrupted by context while blocked server-side.
func (q *Queue) Dequeue(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		vals, err := q.client.BRPop(ctx, 2*time.Second, queueKey)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return "", err
		}
		// BRPOP returns [key, value].
		if len(vals) == 2 {
			return vals[1], nil
		}
	}
}
