package course

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

var (
	// errors
	ErrNotFound       = core.NewError(core.KindCourseNotFound, "course not found")
	ErrLessonNotFound = core.NewError(core.KindLessonNotFound, "lesson not found")
	ErrSlugExists     = errors.New("a course with this slug already exists")
)

type (
	// Repository is the catalog storage. It never writes AverageRating nor ReviewsCount.
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		// GetCourse returns ErrNotFound when no course has this id; LessonCount is populated.
		GetCourse(ctx context.Context, id string) (Course, error)
		GetCourseBySlug(ctx context.Context, slug string) (Course, error)
		// QueryCourses returns the newest courses first.
		QueryCourses(ctx context.Context, limit int) ([]Course, error)
		// QueryLessons returns the lessons of a course ordered by OrderIndex.
		QueryLessons(ctx context.Context, courseID string) ([]Lesson, error)
		GetLesson(ctx context.Context, courseID, lessonID string) (Lesson, error)
		CountCourses(ctx context.Context) (int, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) List(ctx context.Context, limit int) ([]Course, error) {
	if limit <= 0 {
		limit = 100
	}
	courses, err := svc.repo.QueryCourses(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []Course{}
	}
	return courses, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Course{}, ErrNotFound
	}
	return svc.repo.GetCourse(ctx, id)
}

// Resolve finds a course by its id, then by its slug.
func (svc *Service) Resolve(ctx context.Context, idOrSlug string) (Course, error) {
	idOrSlug = core.CleanString(idOrSlug)
	if idOrSlug == "" {
		return Course{}, ErrNotFound
	}
	crs, err := svc.Get(ctx, idOrSlug)
	if err == nil || !core.IsKind(err, core.KindCourseNotFound) {
		return crs, err
	}
	return svc.repo.GetCourseBySlug(ctx, core.CleanString(idOrSlug, true /* lower */))
}

func (svc *Service) GetWithLessons(ctx context.Context, slug string) (WithLessons, error) {
	crs, err := svc.repo.GetCourseBySlug(ctx, core.CleanString(slug, true /* lower */))
	if err != nil {
		return WithLessons{}, err
	}
	lessons, err := svc.repo.QueryLessons(ctx, crs.ID)
	if err != nil {
		return WithLessons{}, errors.Wrap(err, "querying lessons")
	}
	if lessons == nil {
		lessons = []Lesson{}
	}
	return WithLessons{Course: crs, Lessons: lessons}, nil
}

// HasLesson reports whether lessonID belongs to the course.
func (svc *Service) HasLesson(ctx context.Context, courseID, lessonID string) (bool, error) {
	if _, err := uuid.Parse(lessonID); err != nil {
		return false, nil
	}
	if _, err := svc.repo.GetLesson(ctx, courseID, lessonID); err != nil {
		if core.IsKind(err, core.KindLessonNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	if _, err := svc.repo.GetCourseBySlug(ctx, nc.Slug); err == nil {
		return Course{}, core.NewValidationError(ErrSlugExists, core.FieldError{Field: "slug", Error: ErrSlugExists.Error()})
	} else if !core.IsKind(err, core.KindCourseNotFound) {
		return Course{}, errors.Wrap(err, "checking slug uniqueness")
	}

	now := time.Now().UTC()
	tags := nc.Tags
	if tags == nil {
		tags = []string{}
	}
	crs, err := svc.repo.CreateCourse(ctx, Course{
		ID:          uuid.NewString(),
		Slug:        nc.Slug,
		Title:       nc.Title,
		Description: nc.Description,
		Category:    nc.Category,
		Level:       nc.Level,
		Language:    nc.Language,
		Tags:        tags,
		Published:   nc.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil && core.IsKind(err, core.KindConflict) {
		return Course{}, core.NewValidationError(ErrSlugExists, core.FieldError{Field: "slug", Error: ErrSlugExists.Error()})
	}
	return crs, err
}

func (svc *Service) AddLesson(ctx context.Context, courseID string, nl NewLesson) (Lesson, error) {
	if err := nl.Validate(svc.validate); err != nil {
		return Lesson{}, err
	}
	if _, err := svc.Get(ctx, courseID); err != nil {
		return Lesson{}, err
	}
	urls := nl.ResourceURLs
	if urls == nil {
		urls = []string{}
	}
	return svc.repo.CreateLesson(ctx, Lesson{
		ID:           uuid.NewString(),
		CourseID:     courseID,
		Title:        nl.Title,
		Type:         nl.Type,
		Content:      nl.Content,
		OrderIndex:   nl.OrderIndex,
		ResourceURLs: urls,
		CreatedAt:    time.Now().UTC(),
	})
}

// Seed creates the given sample courses, each with an introduction article, when the catalog is empty.
// It returns the number of courses created.
func (svc *Service) Seed(ctx context.Context, samples []NewCourse) (int, error) {
	count, err := svc.repo.CountCourses(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "counting courses")
	}
	if count > 0 {
		return 0, nil
	}

	var created int
	for _, s := range samples {
		s.Published = true
		crs, err := svc.Create(ctx, s)
		if err != nil {
			return created, errors.Wrapf(err, "creating course %q", s.Slug)
		}
		_, err = svc.AddLesson(ctx, crs.ID, NewLesson{
			Title:      crs.Title + ": Introduction",
			Type:       LessonArticle,
			OrderIndex: 1,
			Content: Content{
				Text: fmt.Sprintf(
					"This is the introduction article for %s. It contains sample read-only material for testing the review flow.",
					crs.Title,
				),
			},
		})
		if err != nil {
			return created, errors.Wrapf(err, "creating introduction of %q", s.Slug)
		}
		created++
	}
	return created, nil
}
