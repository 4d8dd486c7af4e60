// Package sqlxrepos implements the repositories on PostgreSQL.
package sqlxrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/course"
)

const selectCourse = `
SELECT c.id, c.slug, c.title, c.description, c.category, c.level, c.language, c.tags, c.published,
       c.average_rating, c.reviews_count, c.created_at, c.updated_at,
       (SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS lesson_count
FROM courses c`

type courseRow struct {
	ID            string         `db:"id"`
	Slug          string         `db:"slug"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	Category      string         `db:"category"`
	Level         string         `db:"level"`
	Language      string         `db:"language"`
	Tags          pq.StringArray `db:"tags"`
	Published     bool           `db:"published"`
	AverageRating float64        `db:"average_rating"`
	ReviewsCount  int            `db:"reviews_count"`
	LessonCount   int            `db:"lesson_count"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r courseRow) toCourse() course.Course {
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return course.Course{
		ID:            r.ID,
		Slug:          r.Slug,
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		Level:         r.Level,
		Language:      r.Language,
		Tags:          tags,
		Published:     r.Published,
		AverageRating: r.AverageRating,
		ReviewsCount:  r.ReviewsCount,
		LessonCount:   r.LessonCount,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type lessonRow struct {
	ID           string         `db:"id"`
	CourseID     string         `db:"course_id"`
	Title        string         `db:"title"`
	Type         string         `db:"type"`
	Text         string         `db:"content_text"`
	VideoURL     string         `db:"video_url"`
	Duration     int            `db:"duration"`
	OrderIndex   int            `db:"order_index"`
	ResourceURLs pq.StringArray `db:"resource_urls"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r lessonRow) toLesson() course.Lesson {
	urls := []string(r.ResourceURLs)
	if urls == nil {
		urls = []string{}
	}
	return course.Lesson{
		ID:           r.ID,
		CourseID:     r.CourseID,
		Title:        r.Title,
		Type:         course.LessonType(r.Type),
		Content:      course.Content{Text: r.Text, VideoURL: r.VideoURL, Duration: r.Duration},
		OrderIndex:   r.OrderIndex,
		ResourceURLs: urls,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

// stringArray never stores NULL.
func stringArray(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(s)
}

type courseRepository struct {
	db core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db core.DBExecutor) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	const q = `
INSERT INTO courses (id, slug, title, description, category, level, language, tags, published, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.ExecContext(ctx, q,
		crs.ID, crs.Slug, crs.Title, crs.Description, crs.Category, crs.Level, crs.Language,
		stringArray(crs.Tags), crs.Published, crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(mapError(err, course.ErrNotFound), "inserting course")
	}
	crs.AverageRating = 0
	crs.ReviewsCount = 0
	crs.LessonCount = 0
	return crs, nil
}

func (repo *courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	const q = `
INSERT INTO lessons (id, course_id, title, type, content_text, video_url, duration, order_index, resource_urls, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		lsn.ID, lsn.CourseID, lsn.Title, string(lsn.Type), lsn.Content.Text, lsn.Content.VideoURL,
		lsn.Content.Duration, lsn.OrderIndex, stringArray(lsn.ResourceURLs), lsn.CreatedAt,
	)
	if err != nil {
		return course.Lesson{}, errors.Wrap(mapError(err, course.ErrNotFound), "inserting lesson")
	}
	return lsn, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, selectCourse+" WHERE c.id = $1", id); err != nil {
		return course.Course{}, mapError(err, course.ErrNotFound)
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) GetCourseBySlug(ctx context.Context, slug string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, selectCourse+" WHERE c.slug = $1", slug); err != nil {
		return course.Course{}, mapError(err, course.ErrNotFound)
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, limit int) ([]course.Course, error) {
	ordering := core.DBOrdering{Field: "c.created_at"}
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, selectCourse+" ORDER BY "+ordering.String()+" LIMIT $1", limit); err != nil {
		return nil, mapError(err, course.ErrNotFound)
	}
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) QueryLessons(ctx context.Context, courseID string) ([]course.Lesson, error) {
	const q = `SELECT * FROM lessons WHERE course_id = $1 ORDER BY order_index ASC, created_at ASC`
	var rows []lessonRow
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, mapError(err, course.ErrNotFound)
	}
	lessons := make([]course.Lesson, 0, len(rows))
	for _, r := range rows {
		lessons = append(lessons, r.toLesson())
	}
	return lessons, nil
}

func (repo *courseRepository) GetLesson(ctx context.Context, courseID, lessonID string) (course.Lesson, error) {
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM lessons WHERE id = $1 AND course_id = $2`, lessonID, courseID); err != nil {
		return course.Lesson{}, mapError(err, course.ErrLessonNotFound)
	}
	return row.toLesson(), nil
}

func (repo *courseRepository) CountCourses(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, mapError(err, course.ErrNotFound)
	}
	return count, nil
}
