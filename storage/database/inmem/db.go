// Package inmemdb is an in-process implementation of the repositories, used by tests and
// by the `memory` database engine.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/enrollment"
	"github.com/trezcool/elimu/core/review"
)

// DB holds every table behind a single lock, so that each repository call is atomic.
type DB struct {
	mutex sync.RWMutex

	courses     map[string]*course.Course
	lessons     map[string]*course.Lesson
	enrollments map[string]*enrollment.Enrollment
	enrIndex    map[enrollmentKey]string // (learner, course) -> enrollment ID
	reviews     map[string]*review.Review
}

type enrollmentKey struct {
	learner  string
	courseID string
}

func NewDB() *DB {
	return &DB{
		courses:     make(map[string]*course.Course),
		lessons:     make(map[string]*course.Lesson),
		enrollments: make(map[string]*enrollment.Enrollment),
		enrIndex:    make(map[enrollmentKey]string),
		reviews:     make(map[string]*review.Review),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.courses = make(map[string]*course.Course)
	db.lessons = make(map[string]*course.Lesson)
	db.enrollments = make(map[string]*enrollment.Enrollment)
	db.enrIndex = make(map[enrollmentKey]string)
	db.reviews = make(map[string]*review.Review)
}

func copyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

// PingContext always succeeds: the store lives in-process.
func (db *DB) PingContext(context.Context) error { return nil }
