// Package recompute retries the course rating aggregations that failed after a review mutation.
package recompute

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

var ErrQueueFull = errors.New("recompute queue is full")

// Queue holds the ids of the courses whose aggregate must be recomputed.
type Queue interface {
	Enqueue(ctx context.Context, courseID string) error
	// Dequeue blocks until a course id is available or ctx is done.
	Dequeue(ctx context.Context) (string, error)
}

type memoryQueue struct {
	ch chan string
}

// NewMemoryQueue returns an in-process Queue holding at most size ids.
func NewMemoryQueue(size int) Queue {
	if size <= 0 {
		size = 1
	}
	return &memoryQueue{ch: make(chan string, size)}
}

func (q *memoryQueue) Enqueue(_ context.Context, courseID string) error {
	select {
	case q.ch <- courseID:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *memoryQueue) Dequeue(ctx context.Context) (string, error) {
	select {
	case id := <-q.ch:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// redisPollTimeout bounds each BRPOP so that a cancelled ctx is noticed.
const redisPollTimeout = 5 * time.Second

type redisQueue struct {
	rdb *goredis.Client
	key string
}

// NewRedisQueue returns a Queue shared by every API instance, stored in the redis list `key`.
func NewRedisQueue(rdb *goredis.Client, key string) Queue {
	return &redisQueue{rdb: rdb, key: key}
}

func (q *redisQueue) Enqueue(ctx context.Context, courseID string) error {
	if err := q.rdb.LPush(ctx, q.key, courseID).Err(); err != nil {
		return errors.Wrap(err, "redis LPUSH")
	}
	return nil
}

func (q *redisQueue) Dequeue(ctx context.Context) (string, error) {
	for {
		res, err := q.rdb.BRPop(ctx, redisPollTimeout, q.key).Result()
		switch {
		case err == nil:
			if len(res) == 2 {
				return res[1], nil
			}
		case errors.Is(err, goredis.Nil):
			// poll timeout
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", errors.Wrap(err, "redis BRPOP")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
	}
}

// NewRedisClient connects to addr and checks that it answers.
func NewRedisClient(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return rdb, nil
}
