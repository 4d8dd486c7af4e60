package enrollment

import (
	"fmt"
	"time"

	"github.com/trezcool/elimu/core/auth"
)

// Statuses, in lifecycle order.
const (
	StatusEnrolled   Status = "enrolled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Eligibility reasons
const (
	ReasonEligible    = "Eligible"
	ReasonNotEnrolled = "Not enrolled"
	ReasonNoLessons   = "Course has no lessons"
)

type Status string

func (s Status) rank() int {
	switch s {
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 0
	}
}

// Advance returns the status reached after `completed` of `total` lessons are done.
// A status never moves backwards.
func (s Status) Advance(completed, total int) Status {
	next := StatusEnrolled
	switch {
	case total > 0 && completed >= total:
		next = StatusCompleted
	case completed > 0:
		next = StatusInProgress
	}
	if next.rank() < s.rank() {
		return s
	}
	return next
}

// ComputeProgress returns round(100 * completed / total), halves rounded up.
func ComputeProgress(completed, total int) (int, error) {
	if total <= 0 {
		return 0, ErrNoLessons
	}
	if completed < 0 || completed > total {
		return 0, fmt.Errorf("computing progress: %d completed lessons out of %d", completed, total)
	}
	return (200*completed + total) / (2 * total), nil
}

type Enrollment struct {
	ID               string        `json:"id"`
	LearnerID        auth.Identity `json:"learnerId"`
	CourseID         string        `json:"courseId"`
	Status           Status        `json:"status"`
	Progress         int           `json:"progress"`
	CompletedLessons []string      `json:"completedLessons"`
	Version          int           `json:"-"`
	CreatedAt        time.Time     `json:"createdAt"` // UTC
	UpdatedAt        time.Time     `json:"updatedAt"` // UTC
}

func (enr Enrollment) HasCompleted(lessonID string) bool {
	for _, id := range enr.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// Eligibility is the review eligibility of a learner on a course.
type Eligibility struct {
	Eligible  bool   `json:"canReview"`
	Reason    string `json:"reason"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Progress  int    `json:"progress"`
}
