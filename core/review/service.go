package review

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/enrollment"
)

var (
	// errors
	ErrNotFound      = core.NewError(core.KindReviewNotFound, "review not found")
	ErrInvalidRating = core.NewError(core.KindInvalidRating, ratingText)
	ErrNotEligible   = core.NewError(core.KindNotEligible, "complete the course before reviewing it")

	defaultPageSize         = 200
	defaultRecomputeTimeout = 5 * time.Second
)

// Review mutations, as reported to metrics.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

type (
	Repository interface {
		CreateReview(ctx context.Context, rv Review) (Review, error)
		// GetReview fails with ErrNotFound.
		GetReview(ctx context.Context, id string) (Review, error)
		UpdateReview(ctx context.Context, rv Review) (Review, error)
		DeleteReview(ctx context.Context, id string) error
		// QueryReviews returns the newest reviews of a course first.
		QueryReviews(ctx context.Context, courseID string, limit int) ([]Review, error)
		// AggregateRatings returns the count and mean rating of the course's current reviews.
		AggregateRatings(ctx context.Context, courseID string) (Aggregate, error)
		// SetCourseRating overwrites the denormalized rating fields of the course.
		SetCourseRating(ctx context.Context, agg Aggregate) error
	}

	Catalog interface {
		Get(ctx context.Context, id string) (course.Course, error)
	}

	EligibilityChecker interface {
		CanReview(ctx context.Context, learner auth.Identity, courseID string) (enrollment.Eligibility, error)
	}

	// RetryQueue receives the courses whose aggregate could not be recomputed.
	RetryQueue interface {
		Enqueue(ctx context.Context, courseID string) error
	}

	ServiceDeps struct {
		Repo        Repository
		Catalog     Catalog
		Eligibility EligibilityChecker // required when Conf.Reviews.RequireCompletion
		Queue       RetryQueue         // optional
		Logger      core.Logger
		Metrics     core.Metrics // optional
		Validate    *validator.Validate
		Conf        *core.Config
	}

	Service struct {
		repo              Repository
		catalog           Catalog
		eligibility       EligibilityChecker
		queue             RetryQueue
		logger            core.Logger
		metrics           core.Metrics
		validate          *validator.Validate
		pageSize          int
		requireCompletion bool
		recomputeTimeout  time.Duration
	}
)

func NewService(deps ServiceDeps) *Service {
	svc := &Service{
		repo:             deps.Repo,
		catalog:          deps.Catalog,
		eligibility:      deps.Eligibility,
		queue:            deps.Queue,
		logger:           deps.Logger,
		metrics:          deps.Metrics,
		validate:         deps.Validate,
		pageSize:         defaultPageSize,
		recomputeTimeout: defaultRecomputeTimeout,
	}
	if svc.metrics == nil {
		svc.metrics = core.NopMetrics{}
	}
	if deps.Conf != nil {
		if deps.Conf.Reviews.PageSize > 0 {
			svc.pageSize = deps.Conf.Reviews.PageSize
		}
		svc.requireCompletion = deps.Conf.Reviews.RequireCompletion && deps.Eligibility != nil
		if deps.Conf.Reviews.RecomputeTimeout > 0 {
			svc.recomputeTimeout = deps.Conf.Reviews.RecomputeTimeout
		}
	}
	return svc
}

// List returns the newest reviews of a course first. limit is capped at the page size.
func (svc *Service) List(ctx context.Context, courseID string, limit int) ([]Review, error) {
	if _, err := svc.catalog.Get(ctx, courseID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > svc.pageSize {
		limit = svc.pageSize
	}
	reviews, err := svc.repo.QueryReviews(ctx, courseID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	if reviews == nil {
		reviews = []Review{}
	}
	return reviews, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Review, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Review{}, ErrNotFound
	}
	return svc.repo.GetReview(ctx, id)
}

func (svc *Service) Create(ctx context.Context, author auth.Identity, courseID string, nr NewReview) (Review, error) {
	if author == "" {
		return Review{}, auth.ErrUnauthenticated
	}
	if err := nr.Validate(svc.validate); err != nil {
		return Review{}, err
	}
	if _, err := svc.catalog.Get(ctx, courseID); err != nil {
		return Review{}, err
	}
	if svc.requireCompletion {
		elig, err := svc.eligibility.CanReview(ctx, author, courseID)
		if err != nil {
			return Review{}, errors.Wrap(err, "checking review eligibility")
		}
		if !elig.Eligible {
			return Review{}, core.NewError(core.KindNotEligible, elig.Reason)
		}
	}

	now := time.Now().UTC()
	rv, err := svc.repo.CreateReview(ctx, Review{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		AuthorID:  author,
		Name:      nr.Name,
		Rating:    nr.Rating,
		Title:     nr.Title,
		Body:      nr.Body,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Review{}, errors.Wrap(err, "creating review")
	}
	svc.metrics.ReviewMutated(OpCreate)
	svc.refreshAggregate(ctx, rv.CourseID)
	return rv, nil
}

// Update applies the present members of ur to the review, provided actor authored it.
func (svc *Service) Update(ctx context.Context, actor auth.Identity, id string, ur UpdateReview) (Review, error) {
	rv, err := svc.Get(ctx, id)
	if err != nil {
		return Review{}, err
	}
	if err = auth.Authorize(actor, rv.AuthorID); err != nil {
		return Review{}, err
	}
	if err = ur.Validate(svc.validate); err != nil {
		return Review{}, err
	}

	rv = ur.Apply(rv)
	rv.UpdatedAt = time.Now().UTC()
	rv, err = svc.repo.UpdateReview(ctx, rv)
	if err != nil {
		return Review{}, errors.Wrap(err, "updating review")
	}
	svc.metrics.ReviewMutated(OpUpdate)
	svc.refreshAggregate(ctx, rv.CourseID)
	return rv, nil
}

func (svc *Service) Delete(ctx context.Context, actor auth.Identity, id string) error {
	rv, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = auth.Authorize(actor, rv.AuthorID); err != nil {
		return err
	}
	if err = svc.repo.DeleteReview(ctx, rv.ID); err != nil {
		return errors.Wrap(err, "deleting review")
	}
	svc.metrics.ReviewMutated(OpDelete)
	svc.refreshAggregate(ctx, rv.CourseID)
	return nil
}

// RecomputeAggregate re-derives the course rating from its current reviews and stores it.
// It is the only writer of Course.AverageRating and Course.ReviewsCount.
func (svc *Service) RecomputeAggregate(ctx context.Context, courseID string) (Aggregate, error) {
	agg, err := svc.repo.AggregateRatings(ctx, courseID)
	if err != nil {
		svc.metrics.AggregateRecomputed(false)
		return Aggregate{}, errors.Wrap(err, "aggregating ratings")
	}
	agg.CourseID = courseID
	if err = svc.repo.SetCourseRating(ctx, agg); err != nil {
		svc.metrics.AggregateRecomputed(false)
		return Aggregate{}, errors.Wrap(err, "setting course rating")
	}
	svc.metrics.AggregateRecomputed(true)
	return agg, nil
}

// refreshAggregate recomputes the course rating after a successful mutation.
// Failures never fail the mutation: they are logged and handed to the retry queue.
// The recompute outlives a cancelled request but is bounded by recomputeTimeout.
func (svc *Service) refreshAggregate(ctx context.Context, courseID string) {
	ctx = context.WithoutCancel(ctx)
	rctx, cancel := context.WithTimeout(ctx, svc.recomputeTimeout)
	defer cancel()
	if _, err := svc.RecomputeAggregate(rctx, courseID); err != nil {
		svc.logger.Error("aggregate recompute failed", err, map[string]interface{}{"courseId": courseID})
		if svc.queue == nil {
			return
		}
		if qErr := svc.queue.Enqueue(ctx, courseID); qErr != nil {
			svc.logger.Error("enqueueing aggregate recompute", qErr, map[string]interface{}{"courseId": courseID})
		}
	}
}
