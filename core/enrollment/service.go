package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
)

var (
	// errors
	ErrNotEnrolled      = core.NewError(core.KindNotEnrolled, "not enrolled in this course")
	ErrAlreadyEnrolled  = core.NewError(core.KindAlreadyEnrolled, "already enrolled in this course")
	ErrAlreadyCompleted = core.NewError(core.KindAlreadyCompleted, "lesson already completed")
	ErrNoLessons        = core.NewError(core.KindNoLessons, "course has no lessons")

	defaultMaxCompleteAttempts = 10
)

type (
	Repository interface {
		// CreateEnrollment fails with core.ErrConflict when the (learner, course) pair already exists.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		// GetEnrollment fails with ErrNotEnrolled when the pair does not exist.
		GetEnrollment(ctx context.Context, learner auth.Identity, courseID string) (Enrollment, error)
		// UpdateEnrollment stores enr only if the stored version still equals enr.Version,
		// and returns it with the next version. Fails with core.ErrConflict otherwise.
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
	}

	// Catalog resolves courses and their lessons.
	Catalog interface {
		Get(ctx context.Context, id string) (course.Course, error)
		HasLesson(ctx context.Context, courseID, lessonID string) (bool, error)
	}

	Service struct {
		repo        Repository
		catalog     Catalog
		metrics     core.Metrics
		maxAttempts int
	}
)

func NewService(repo Repository, catalog Catalog, conf *core.Config, metrics core.Metrics) *Service {
	maxAttempts := conf.Enrollment.MaxCompleteAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxCompleteAttempts
	}
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	return &Service{
		repo:        repo,
		catalog:     catalog,
		metrics:     metrics,
		maxAttempts: maxAttempts,
	}
}

func (svc *Service) Enroll(ctx context.Context, learner auth.Identity, courseID string) (Enrollment, error) {
	if learner == "" {
		return Enrollment{}, auth.ErrUnauthenticated
	}
	if _, err := svc.catalog.Get(ctx, courseID); err != nil {
		return Enrollment{}, err
	}

	now := time.Now().UTC()
	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		ID:               uuid.NewString(),
		LearnerID:        learner,
		CourseID:         courseID,
		Status:           StatusEnrolled,
		Progress:         0,
		CompletedLessons: []string{},
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		if core.IsKind(err, core.KindConflict) {
			return Enrollment{}, ErrAlreadyEnrolled
		}
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	svc.metrics.EnrollmentCreated()
	return enr, nil
}

func (svc *Service) GetEnrollment(ctx context.Context, learner auth.Identity, courseID string) (Enrollment, error) {
	if learner == "" {
		return Enrollment{}, auth.ErrUnauthenticated
	}
	return svc.repo.GetEnrollment(ctx, learner, courseID)
}

// CompleteLesson records lessonID as completed and recomputes progress & status.
// The write is a compare-and-swap on the enrollment version, re-applied on a lost race.
func (svc *Service) CompleteLesson(ctx context.Context, learner auth.Identity, courseID, lessonID string) (Enrollment, error) {
	if learner == "" {
		return Enrollment{}, auth.ErrUnauthenticated
	}

	var lastErr error
	for attempt := 1; attempt <= svc.maxAttempts; attempt++ {
		enr, err := svc.completeLesson(ctx, learner, courseID, lessonID)
		if err == nil {
			svc.metrics.LessonCompleted(string(enr.Status))
			return enr, nil
		}
		if !core.IsKind(err, core.KindConflict) {
			return Enrollment{}, err
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Enrollment{}, core.ErrStorageUnavailable.WithCause(ctxErr)
		}
	}
	return Enrollment{}, errors.Wrap(lastErr, fmt.Sprintf("completing lesson after %d attempts", svc.maxAttempts))
}

func (svc *Service) completeLesson(ctx context.Context, learner auth.Identity, courseID, lessonID string) (Enrollment, error) {
	crs, err := svc.catalog.Get(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	enr, err := svc.repo.GetEnrollment(ctx, learner, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if crs.LessonCount == 0 {
		return Enrollment{}, ErrNoLessons
	}
	if enr.HasCompleted(lessonID) {
		return Enrollment{}, ErrAlreadyCompleted
	}
	ok, err := svc.catalog.HasLesson(ctx, courseID, lessonID)
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "checking lesson")
	}
	if !ok {
		return Enrollment{}, course.ErrLessonNotFound
	}

	completed := make([]string, len(enr.CompletedLessons), len(enr.CompletedLessons)+1)
	copy(completed, enr.CompletedLessons)
	completed = append(completed, lessonID)

	progress, err := ComputeProgress(len(completed), crs.LessonCount)
	if err != nil {
		return Enrollment{}, err
	}
	enr.CompletedLessons = completed
	enr.Progress = progress
	enr.Status = enr.Status.Advance(len(completed), crs.LessonCount)
	enr.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateEnrollment(ctx, enr)
}

// CanReview reports whether learner completed every lesson of the course. It never writes.
func (svc *Service) CanReview(ctx context.Context, learner auth.Identity, courseID string) (Eligibility, error) {
	crs, err := svc.catalog.Get(ctx, courseID)
	if err != nil {
		return Eligibility{}, err
	}
	total := crs.LessonCount

	enr, err := svc.repo.GetEnrollment(ctx, learner, courseID)
	if err != nil {
		if core.IsKind(err, core.KindNotEnrolled) {
			return Eligibility{Reason: ReasonNotEnrolled, Total: total}, nil
		}
		return Eligibility{}, err
	}

	elig := Eligibility{
		Completed: len(enr.CompletedLessons),
		Total:     total,
		Progress:  enr.Progress,
	}
	switch {
	case total == 0:
		elig.Reason = ReasonNoLessons
	case elig.Completed >= total:
		elig.Eligible = true
		elig.Reason = ReasonEligible
	default:
		elig.Reason = fmt.Sprintf("Complete all %d lessons first", total)
	}
	return elig, nil
}
