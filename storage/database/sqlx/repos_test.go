package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/enrollment"
	"github.com/trezcool/elimu/core/review"
	"github.com/trezcool/elimu/storage/database/sqlx"
	"github.com/trezcool/elimu/testutil"
)

func TestCourseRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewCourseRepository(db)
	ctx := context.Background()
	now := time.Now()

	older, lessons := testutil.CreateCourse(t, repo, "go-basics", 2, now.Add(-time.Hour))
	newer, _ := testutil.CreateCourse(t, repo, "k8s-intro", 0, now)

	got, err := repo.GetCourse(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "go-basics", got.Slug)
	assert.Equal(t, 2, got.LessonCount)
	assert.Equal(t, []string{}, got.Tags)

	got, err = repo.GetCourseBySlug(ctx, "k8s-intro")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	_, err = repo.GetCourse(ctx, uuid.NewString())
	assert.ErrorIs(t, err, course.ErrNotFound)
	_, err = repo.GetCourseBySlug(ctx, "lol")
	assert.ErrorIs(t, err, course.ErrNotFound)

	// slugs are unique
	_, err = repo.CreateCourse(ctx, course.Course{ID: uuid.NewString(), Slug: "go-basics", Title: "Dup", Language: "en", CreatedAt: now, UpdatedAt: now})
	assert.True(t, core.IsKind(err, core.KindConflict), "err = %v", err)

	courses, err := repo.QueryCourses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, newer.ID, courses[0].ID)
	assert.Equal(t, older.ID, courses[1].ID)

	lsns, err := repo.QueryLessons(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, lsns, 2)
	assert.Equal(t, lessons[0].ID, lsns[0].ID)
	assert.Equal(t, 1, lsns[0].OrderIndex)

	lsn, err := repo.GetLesson(ctx, older.ID, lessons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Lesson 2", lsn.Title)
	_, err = repo.GetLesson(ctx, newer.ID, lessons[1].ID)
	assert.ErrorIs(t, err, course.ErrLessonNotFound)

	n, err := repo.CountCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEnrollmentRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	crs, lessons := testutil.CreateCourse(t, sqlxrepos.NewCourseRepository(db), "go-basics", 2)
	repo := sqlxrepos.NewEnrollmentRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	learner := auth.Identity("learner-1")

	_, err := repo.GetEnrollment(ctx, learner, crs.ID)
	assert.ErrorIs(t, err, enrollment.ErrNotEnrolled)

	enr, err := repo.CreateEnrollment(ctx, enrollment.Enrollment{
		ID:               uuid.NewString(),
		LearnerID:        learner,
		CourseID:         crs.ID,
		Status:           enrollment.StatusEnrolled,
		CompletedLessons: []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	require.NoError(t, err)

	// one enrollment per (learner, course)
	_, err = repo.CreateEnrollment(ctx, enrollment.Enrollment{
		ID: uuid.NewString(), LearnerID: learner, CourseID: crs.ID, Status: enrollment.StatusEnrolled, CreatedAt: now, UpdatedAt: now,
	})
	assert.True(t, core.IsKind(err, core.KindConflict), "err = %v", err)

	stale := enr
	enr.CompletedLessons = []string{lessons[0].ID}
	enr.Status = enrollment.StatusInProgress
	enr.Progress = 50
	updated, err := repo.UpdateEnrollment(ctx, enr)
	require.NoError(t, err)
	assert.Equal(t, enr.Version+1, updated.Version)
	assert.Equal(t, []string{lessons[0].ID}, updated.CompletedLessons)

	// the version moved on
	stale.CompletedLessons = []string{lessons[1].ID}
	_, err = repo.UpdateEnrollment(ctx, stale)
	assert.True(t, core.IsKind(err, core.KindConflict), "err = %v", err)

	got, err := repo.GetEnrollment(ctx, learner, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Version, got.Version)
	assert.Equal(t, 50, got.Progress)
	assert.Equal(t, enrollment.StatusInProgress, got.Status)
}

func TestReviewRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	courseRepo := sqlxrepos.NewCourseRepository(db)
	crs, _ := testutil.CreateCourse(t, courseRepo, "go-basics", 1)
	repo := sqlxrepos.NewReviewRepository(db)
	ctx := context.Background()
	now := time.Now()

	agg, err := repo.AggregateRatings(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, review.Aggregate{CourseID: crs.ID}, agg)

	rv1 := testutil.CreateReview(t, repo, crs.ID, "alice", 5, now.Add(-time.Minute))
	rv2 := testutil.CreateReview(t, repo, crs.ID, "bob", 4, now)

	reviews, err := repo.QueryReviews(ctx, crs.ID, 10)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, rv2.ID, reviews[0].ID)
	assert.Equal(t, rv1.ID, reviews[1].ID)

	rv2.Rating = 2
	_, err = repo.UpdateReview(ctx, rv2)
	require.NoError(t, err)

	agg, err = repo.AggregateRatings(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, agg.AverageRating)
	assert.Equal(t, 2, agg.ReviewsCount)

	require.NoError(t, repo.SetCourseRating(ctx, agg))
	got, err := courseRepo.GetCourse(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got.AverageRating)
	assert.Equal(t, 2, got.ReviewsCount)

	require.NoError(t, repo.DeleteReview(ctx, rv1.ID))
	assert.ErrorIs(t, repo.DeleteReview(ctx, rv1.ID), review.ErrNotFound)
	_, err = repo.GetReview(ctx, rv1.ID)
	assert.ErrorIs(t, err, review.ErrNotFound)

	// dangling course
	_, err = repo.CreateReview(ctx, review.Review{ID: uuid.NewString(), CourseID: uuid.NewString(), AuthorID: "alice", Rating: 5, CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, course.ErrNotFound)
	assert.ErrorIs(t, repo.SetCourseRating(ctx, review.Aggregate{CourseID: uuid.NewString()}), course.ErrNotFound)
}
