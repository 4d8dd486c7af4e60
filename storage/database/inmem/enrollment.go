package inmemdb

import (
	"context"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func cloneEnrollment(enr *enrollment.Enrollment) enrollment.Enrollment {
	c := *enr
	c.CompletedLessons = copyStrings(enr.CompletedLessons)
	return c
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := enrollmentKey{learner: string(enr.LearnerID), courseID: enr.CourseID}
	if _, exists := repo.db.enrIndex[key]; exists {
		return enrollment.Enrollment{}, core.ErrConflict
	}
	if enr.Version == 0 {
		enr.Version = 1
	}
	stored := cloneEnrollment(&enr)
	repo.db.enrollments[enr.ID] = &stored
	repo.db.enrIndex[key] = enr.ID
	return cloneEnrollment(&stored), nil
}

func (repo *enrollmentRepository) GetEnrollment(_ context.Context, learner auth.Identity, courseID string) (enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if id, ok := repo.db.enrIndex[enrollmentKey{learner: string(learner), courseID: courseID}]; ok {
		return cloneEnrollment(repo.db.enrollments[id]), nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotEnrolled
}

func (repo *enrollmentRepository) UpdateEnrollment(_ context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored, ok := repo.db.enrollments[enr.ID]
	if !ok {
		return enrollment.Enrollment{}, enrollment.ErrNotEnrolled
	}
	if stored.Version != enr.Version {
		return enrollment.Enrollment{}, core.ErrConflict
	}

	// only progress fields are mutable
	stored.Status = enr.Status
	stored.Progress = enr.Progress
	stored.CompletedLessons = copyStrings(enr.CompletedLessons)
	stored.UpdatedAt = enr.UpdatedAt
	stored.Version++
	return cloneEnrollment(stored), nil
}
