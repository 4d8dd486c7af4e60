package recompute

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/review"
)

type Recomputer interface {
	RecomputeAggregate(ctx context.Context, courseID string) (review.Aggregate, error)
}

// Worker drains a Queue, recomputing each course aggregate with exponential back-off.
type Worker struct {
	queue   Queue
	svc     Recomputer
	logger  core.Logger
	metrics core.Metrics

	maxAttempts     uint
	initialInterval time.Duration
	maxInterval     time.Duration
}

func NewWorker(queue Queue, svc Recomputer, conf *core.Config, logger core.Logger, metrics core.Metrics) *Worker {
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	w := &Worker{
		queue:           queue,
		svc:             svc,
		logger:          logger,
		metrics:         metrics,
		maxAttempts:     conf.Recompute.MaxAttempts,
		initialInterval: conf.Recompute.InitialInterval,
		maxInterval:     conf.Recompute.MaxInterval,
	}
	if w.maxAttempts == 0 {
		w.maxAttempts = 5
	}
	if w.initialInterval <= 0 {
		w.initialInterval = backoff.DefaultInitialInterval
	}
	if w.maxInterval <= 0 {
		w.maxInterval = backoff.DefaultMaxInterval
	}
	return w
}

// Run processes the queue until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		courseID, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("dequeueing aggregate recompute", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.initialInterval):
			}
			continue
		}
		// failures are logged and counted by Process
		_ = w.Process(ctx, courseID)
	}
}

// Process recomputes one course aggregate, retrying transient failures.
func (w *Worker) Process(ctx context.Context, courseID string) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = w.initialInterval
	eb.MaxInterval = w.maxInterval

	agg, err := backoff.Retry(ctx, func() (review.Aggregate, error) {
		agg, err := w.svc.RecomputeAggregate(ctx, courseID)
		if err != nil && core.IsKind(err, core.KindCourseNotFound) {
			return agg, backoff.Permanent(err)
		}
		return agg, err
	}, backoff.WithBackOff(eb), backoff.WithMaxTries(w.maxAttempts))

	w.metrics.RecomputeRetried(err == nil)
	if err != nil {
		err = errors.Wrapf(err, "recomputing aggregate of course %s", courseID)
		w.logger.Error("aggregate recompute retry failed", err, map[string]interface{}{"courseId": courseID})
		return err
	}
	w.logger.Info("aggregate recomputed", map[string]interface{}{
		"courseId":      courseID,
		"averageRating": agg.AverageRating,
		"reviewsCount":  agg.ReviewsCount,
	})
	return nil
}
