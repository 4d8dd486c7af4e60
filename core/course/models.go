package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/elimu/core"
)

// Lesson types
const (
	LessonArticle LessonType = "article"
	LessonQuiz    LessonType = "quiz"
	LessonVideo   LessonType = "video"
)

type LessonType string

type Course struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Level         string    `json:"level"`
	Language      string    `json:"language"`
	Tags          []string  `json:"tags"`
	Published     bool      `json:"published"`
	AverageRating float64   `json:"averageRating"` // written by review aggregation only
	ReviewsCount  int       `json:"reviewsCount"`  // written by review aggregation only
	LessonCount   int       `json:"lessonCount"`   // derived
	CreatedAt     time.Time `json:"createdAt"`     // UTC
	UpdatedAt     time.Time `json:"updatedAt"`     // UTC
}

type Content struct {
	Text     string `json:"text,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Duration int    `json:"duration,omitempty"` // seconds
}

type Lesson struct {
	ID           string     `json:"id"`
	CourseID     string     `json:"courseId"`
	Title        string     `json:"title"`
	Type         LessonType `json:"type"`
	Content      Content    `json:"content"`
	OrderIndex   int        `json:"orderIndex"`
	ResourceURLs []string   `json:"resourceUrls"`
	CreatedAt    time.Time  `json:"createdAt"` // UTC
}

// WithLessons is a Course along with its ordered lessons.
type WithLessons struct {
	Course
	Lessons []Lesson `json:"lessons"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string   `json:"title" validate:"required,notblank,max=200"`
	Slug        string   `json:"slug" validate:"required,slug,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Category    string   `json:"category" validate:"max=100"`
	Level       string   `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Language    string   `json:"language" validate:"omitempty,len=2"`
	Tags        []string `json:"tags" validate:"omitempty,dive,notblank"`
	Published   bool     `json:"published"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Slug = core.CleanString(nc.Slug, true /* lower */)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category)
	nc.Language = core.CleanString(nc.Language, true /* lower */)
	if nc.Language == "" {
		nc.Language = "en"
	}
	return validate.Struct(nc)
}

// NewLesson contains information needed to add a Lesson to a Course.
type NewLesson struct {
	Title        string     `json:"title" validate:"required,notblank,max=200"`
	Type         LessonType `json:"type" validate:"omitempty,oneof=article quiz video"`
	Content      Content    `json:"content"`
	OrderIndex   int        `json:"orderIndex" validate:"min=0"`
	ResourceURLs []string   `json:"resourceUrls" validate:"omitempty,dive,url"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	if nl.Type == "" {
		nl.Type = LessonArticle
	}
	return validate.Struct(nl)
}
