// Package testutil holds the fixtures shared by the test suites.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/review"
)

// Config returns the configuration used by the test suites.
func Config() *core.Config {
	return &core.Config{
		AppName:   "Elimu",
		Build:     "test",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			Address:            ":0",
			ShutdownTimeout:    time.Second,
			DisableReqLogs:     true,
			JWTIssuer:          "Elimu",
			JWTAudience:        "Learners",
			JWTExpirationDelta: time.Hour,
		},
		Database:   core.DatabaseConfig{Engine: "memory"},
		Enrollment: core.EnrollmentConfig{MaxCompleteAttempts: 10},
		Reviews:    core.ReviewsConfig{PageSize: 200, RecomputeTimeout: time.Second},
		Recompute: core.RecomputeConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			QueueSize:       16,
		},
	}
}

func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	review.InitValidators(validate, translator)
	return validate, translator
}

// CreateCourse stores a course with `lessons` article lessons, ordered from 1.
func CreateCourse(t *testing.T, repo course.Repository, slug string, lessons int, createdAt ...time.Time) (course.Course, []course.Lesson) {
	t.Helper()
	ctx := context.Background()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	crs, err := repo.CreateCourse(ctx, course.Course{
		ID:        uuid.NewString(),
		Slug:      slug,
		Title:     "Course " + slug,
		Language:  "en",
		Tags:      []string{},
		Published: true,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}

	lsns := make([]course.Lesson, 0, lessons)
	for i := 1; i <= lessons; i++ {
		lsn, err := repo.CreateLesson(ctx, course.Lesson{
			ID:           uuid.NewString(),
			CourseID:     crs.ID,
			Title:        fmt.Sprintf("Lesson %d", i),
			Type:         course.LessonArticle,
			OrderIndex:   i,
			ResourceURLs: []string{},
			CreatedAt:    tstamp,
		})
		if err != nil {
			t.Fatalf("CreateLesson() failed: %v", err)
		}
		lsns = append(lsns, lsn)
	}
	crs.LessonCount = lessons
	return crs, lsns
}

// CreateReview stores a review directly, bypassing the aggregate recompute.
func CreateReview(t *testing.T, repo review.Repository, courseID string, author auth.Identity, rating int, createdAt ...time.Time) review.Review {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	rv, err := repo.CreateReview(context.Background(), review.Review{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		AuthorID:  author,
		Rating:    rating,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateReview() failed: %v", err)
	}
	return rv
}
