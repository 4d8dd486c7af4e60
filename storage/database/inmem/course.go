package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// withLessonCount must be called with the lock held.
func (repo *courseRepository) withLessonCount(crs course.Course) course.Course {
	crs.Tags = copyStrings(crs.Tags)
	crs.LessonCount = 0
	for _, l := range repo.db.lessons {
		if l.CourseID == crs.ID {
			crs.LessonCount++
		}
	}
	return crs
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, c := range repo.db.courses {
		if c.Slug == crs.Slug {
			return course.Course{}, core.ErrConflict
		}
	}
	crs.Tags = copyStrings(crs.Tags)
	crs.AverageRating = 0
	crs.ReviewsCount = 0
	repo.db.courses[crs.ID] = &crs
	return repo.withLessonCount(crs), nil
}

func (repo *courseRepository) CreateLesson(_ context.Context, lsn course.Lesson) (course.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[lsn.CourseID]; !ok {
		return course.Lesson{}, course.ErrNotFound
	}
	lsn.ResourceURLs = copyStrings(lsn.ResourceURLs)
	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return repo.withLessonCount(*crs), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseBySlug(_ context.Context, slug string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.Slug == slug {
			return repo.withLessonCount(*crs), nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, limit int) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, repo.withLessonCount(*crs))
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].ID > courses[j].ID
		}
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
	if limit > 0 && len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

func (repo *courseRepository) QueryLessons(_ context.Context, courseID string) ([]course.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lessons := make([]course.Lesson, 0)
	for _, l := range repo.db.lessons {
		if l.CourseID == courseID {
			lsn := *l
			lsn.ResourceURLs = copyStrings(l.ResourceURLs)
			lessons = append(lessons, lsn)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].OrderIndex == lessons[j].OrderIndex {
			return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
		}
		return lessons[i].OrderIndex < lessons[j].OrderIndex
	})
	return lessons, nil
}

func (repo *courseRepository) GetLesson(_ context.Context, courseID, lessonID string) (course.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if l, ok := repo.db.lessons[lessonID]; ok && l.CourseID == courseID {
		lsn := *l
		lsn.ResourceURLs = copyStrings(l.ResourceURLs)
		return lsn, nil
	}
	return course.Lesson{}, course.ErrLessonNotFound
}

func (repo *courseRepository) CountCourses(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.courses), nil
}
