package sqlxrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/enrollment"
)

const enrollmentColumns = `id, learner_id, course_id, status, progress, completed_lessons, version, created_at, updated_at`

type enrollmentRow struct {
	ID               string         `db:"id"`
	LearnerID        string         `db:"learner_id"`
	CourseID         string         `db:"course_id"`
	Status           string         `db:"status"`
	Progress         int            `db:"progress"`
	CompletedLessons pq.StringArray `db:"completed_lessons"`
	Version          int            `db:"version"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r enrollmentRow) toEnrollment() enrollment.Enrollment {
	completed := []string(r.CompletedLessons)
	if completed == nil {
		completed = []string{}
	}
	return enrollment.Enrollment{
		ID:               r.ID,
		LearnerID:        auth.Identity(r.LearnerID),
		CourseID:         r.CourseID,
		Status:           enrollment.Status(r.Status),
		Progress:         r.Progress,
		CompletedLessons: completed,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

type enrollmentRepository struct {
	db core.DBExecutor
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db core.DBExecutor) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

// CreateEnrollment relies on the (learner_id, course_id) unique constraint: a concurrent
// duplicate surfaces as core.ErrConflict.
func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	if enr.Version == 0 {
		enr.Version = 1
	}
	q := `INSERT INTO enrollments (` + enrollmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		enr.ID, string(enr.LearnerID), enr.CourseID, string(enr.Status), enr.Progress,
		stringArray(enr.CompletedLessons), enr.Version, enr.CreatedAt, enr.UpdatedAt,
	)
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(mapError(err, course.ErrNotFound), "inserting enrollment")
	}
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, learner auth.Identity, courseID string) (enrollment.Enrollment, error) {
	var row enrollmentRow
	q := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE learner_id = $1 AND course_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, string(learner), courseID); err != nil {
		return enrollment.Enrollment{}, mapError(err, enrollment.ErrNotEnrolled)
	}
	return row.toEnrollment(), nil
}

// UpdateEnrollment is a compare-and-swap on the version column.
func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	q := `
UPDATE enrollments
SET status = $3, progress = $4, completed_lessons = $5, updated_at = $6, version = version + 1
WHERE id = $1 AND version = $2
RETURNING ` + enrollmentColumns
	var row enrollmentRow
	err := repo.db.GetContext(ctx, &row, q,
		enr.ID, enr.Version, string(enr.Status), enr.Progress, stringArray(enr.CompletedLessons), enr.UpdatedAt,
	)
	if err != nil {
		// no row: the version moved on since it was read
		return enrollment.Enrollment{}, mapError(err, core.ErrConflict)
	}
	return row.toEnrollment(), nil
}
