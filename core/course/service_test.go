package course_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/storage/database/inmem"
	"github.com/trezcool/elimu/testutil"
)

func setup(t *testing.T) (course.Repository, *course.Service) {
	t.Helper()
	validate, _ := testutil.NewValidator()
	repo := inmemdb.NewCourseRepository(inmemdb.NewDB())
	return repo, course.NewService(repo, validate)
}

func TestService_Resolve(t *testing.T) {
	repo, svc := setup(t)
	ctx := context.Background()
	crs, _ := testutil.CreateCourse(t, repo, "devops-basics", 2)

	tests := []struct {
		name     string
		idOrSlug string
		wantErr  bool
	}{
		{name: "by id", idOrSlug: crs.ID},
		{name: "by slug", idOrSlug: "devops-basics"},
		{name: "by slug, any case", idOrSlug: " DevOps-Basics "},
		{name: "unknown id", idOrSlug: uuid.NewString(), wantErr: true},
		{name: "unknown slug", idOrSlug: "lol", wantErr: true},
		{name: "empty", idOrSlug: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(ctx, tt.idOrSlug)
			if tt.wantErr {
				assert.ErrorIs(t, err, course.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, crs.ID, got.ID)
			assert.Equal(t, 2, got.LessonCount)
		})
	}
}

func TestService_GetWithLessons(t *testing.T) {
	repo, svc := setup(t)
	ctx := context.Background()
	crs, lessons := testutil.CreateCourse(t, repo, "ordered", 3)

	got, err := svc.GetWithLessons(ctx, "ordered")
	require.NoError(t, err)
	assert.Equal(t, crs.ID, got.ID)
	assert.Equal(t, lessons, got.Lessons)

	_, err = svc.GetWithLessons(ctx, "missing")
	assert.Equal(t, core.KindCourseNotFound, core.KindOf(err))
}

func TestService_HasLesson(t *testing.T) {
	repo, svc := setup(t)
	ctx := context.Background()
	crs, lessons := testutil.CreateCourse(t, repo, "one", 1)
	other, _ := testutil.CreateCourse(t, repo, "two", 0)

	ok, err := svc.HasLesson(ctx, crs.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasLesson(ctx, other.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.HasLesson(ctx, crs.ID, "not-a-uuid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_List(t *testing.T) {
	repo, svc := setup(t)
	now := time.Now()
	old, _ := testutil.CreateCourse(t, repo, "old", 0, now.Add(-time.Hour))
	recent, _ := testutil.CreateCourse(t, repo, "recent", 1, now)

	got, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	if assert.Len(t, got, 2) {
		assert.Equal(t, recent.ID, got[0].ID)
		assert.Equal(t, old.ID, got[1].ID)
	}

	got, err = svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_Create(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	crs, err := svc.Create(ctx, course.NewCourse{Title: " Go ", Slug: "Go-Basics"})
	require.NoError(t, err)
	assert.Equal(t, "Go", crs.Title)
	assert.Equal(t, "go-basics", crs.Slug)
	assert.Equal(t, "en", crs.Language)
	assert.Zero(t, crs.AverageRating)
	assert.Zero(t, crs.ReviewsCount)

	_, err = svc.Create(ctx, course.NewCourse{Title: "Again", Slug: "go-basics"})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "slug", vErr.Fields[0].Field)

	_, err = svc.Create(ctx, course.NewCourse{Title: "  ", Slug: "bad slug"})
	var fErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fErrs)
	fields := make([]string, 0, len(fErrs))
	for _, fe := range fErrs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"title", "slug"}, fields)
}

func TestService_Seed(t *testing.T) {
	repo, svc := setup(t)
	ctx := context.Background()

	n, err := svc.Seed(ctx, course.Samples)
	require.NoError(t, err)
	assert.Equal(t, len(course.Samples), n)

	crs, err := svc.GetWithLessons(ctx, "devops-basics")
	require.NoError(t, err)
	assert.True(t, crs.Published)
	assert.Equal(t, 1, crs.LessonCount)
	if assert.Len(t, crs.Lessons, 1) {
		assert.Equal(t, course.LessonArticle, crs.Lessons[0].Type)
		assert.Equal(t, 1, crs.Lessons[0].OrderIndex)
	}

	// not seeded twice
	n, err = svc.Seed(ctx, course.Samples)
	require.NoError(t, err)
	assert.Zero(t, n)
	count, err := repo.CountCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(course.Samples), count)
}
