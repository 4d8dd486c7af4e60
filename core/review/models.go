package review

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
)

type Review struct {
	ID        string        `json:"id"`
	CourseID  string        `json:"courseId"`
	AuthorID  auth.Identity `json:"userId"`
	Name      string        `json:"name"`
	Rating    int           `json:"rating"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"createdAt"` // UTC
	UpdatedAt time.Time     `json:"updatedAt"` // UTC
}

// Aggregate is the rating projection of a course over its current reviews.
type Aggregate struct {
	CourseID      string  `json:"courseId"`
	AverageRating float64 `json:"averageRating"`
	ReviewsCount  int     `json:"reviewsCount"`
}

// NewReview contains information needed to create a new Review.
type NewReview struct {
	Name   string `json:"name" validate:"max=100"`
	Rating int    `json:"rating" validate:"rating"`
	Title  string `json:"title" validate:"max=200"`
	Body   string `json:"body" validate:"max=5000"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.Title = core.CleanString(nr.Title)
	nr.Body = core.CleanString(nr.Body)
	return ratingError(validate.Struct(nr))
}

// UpdateReview defines what information may be provided to modify an existing Review.
// Nil members are left unchanged.
type UpdateReview struct {
	Rating *int    `json:"rating" validate:"omitempty,rating"`
	Title  *string `json:"title" validate:"omitempty,max=200"`
	Body   *string `json:"body" validate:"omitempty,max=5000"`
}

func (ur *UpdateReview) Validate(validate *validator.Validate) error {
	if ur.Title != nil {
		title := core.CleanString(*ur.Title)
		ur.Title = &title
	}
	if ur.Body != nil {
		body := core.CleanString(*ur.Body)
		ur.Body = &body
	}
	return ratingError(validate.Struct(ur))
}

// Apply returns rv with the present members of ur.
func (ur UpdateReview) Apply(rv Review) Review {
	if ur.Rating != nil {
		rv.Rating = *ur.Rating
	}
	if ur.Title != nil {
		rv.Title = *ur.Title
	}
	if ur.Body != nil {
		rv.Body = *ur.Body
	}
	return rv
}
