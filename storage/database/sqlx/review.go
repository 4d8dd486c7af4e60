package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/review"
)

const reviewColumns = `id, course_id, author_id, name, rating, title, body, created_at, updated_at`

type reviewRow struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	AuthorID  string    `db:"author_id"`
	Name      string    `db:"name"`
	Rating    int       `db:"rating"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r reviewRow) toReview() review.Review {
	return review.Review{
		ID:        r.ID,
		CourseID:  r.CourseID,
		AuthorID:  auth.Identity(r.AuthorID),
		Name:      r.Name,
		Rating:    r.Rating,
		Title:     r.Title,
		Body:      r.Body,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type reviewRepository struct {
	db core.DBExecutor
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db core.DBExecutor) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(ctx context.Context, rv review.Review) (review.Review, error) {
	q := `INSERT INTO reviews (` + reviewColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		rv.ID, rv.CourseID, string(rv.AuthorID), rv.Name, rv.Rating, rv.Title, rv.Body, rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		return review.Review{}, errors.Wrap(mapError(err, course.ErrNotFound), "inserting review")
	}
	return rv, nil
}

func (repo *reviewRepository) GetReview(ctx context.Context, id string) (review.Review, error) {
	var row reviewRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id); err != nil {
		return review.Review{}, mapError(err, review.ErrNotFound)
	}
	return row.toReview(), nil
}

func (repo *reviewRepository) UpdateReview(ctx context.Context, rv review.Review) (review.Review, error) {
	q := `
UPDATE reviews SET rating = $2, title = $3, body = $4, updated_at = $5
WHERE id = $1
RETURNING ` + reviewColumns
	var row reviewRow
	if err := repo.db.GetContext(ctx, &row, q, rv.ID, rv.Rating, rv.Title, rv.Body, rv.UpdatedAt); err != nil {
		return review.Review{}, mapError(err, review.ErrNotFound)
	}
	return row.toReview(), nil
}

func (repo *reviewRepository) DeleteReview(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return mapError(err, review.ErrNotFound)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return review.ErrNotFound
	}
	return nil
}

func (repo *reviewRepository) QueryReviews(ctx context.Context, courseID string, limit int) ([]review.Review, error) {
	ordering := core.DBOrdering{Field: "created_at"}
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE course_id = $1 ORDER BY ` + ordering.String() + `, id DESC LIMIT $2`
	var rows []reviewRow
	if err := repo.db.SelectContext(ctx, &rows, q, courseID, limit); err != nil {
		return nil, mapError(err, course.ErrNotFound)
	}
	reviews := make([]review.Review, 0, len(rows))
	for _, r := range rows {
		reviews = append(reviews, r.toReview())
	}
	return reviews, nil
}

func (repo *reviewRepository) AggregateRatings(ctx context.Context, courseID string) (review.Aggregate, error) {
	const q = `
SELECT COUNT(*) AS reviews_count, COALESCE(AVG(rating), 0)::float8 AS average_rating
FROM reviews WHERE course_id = $1`
	var row struct {
		ReviewsCount  int     `db:"reviews_count"`
		AverageRating float64 `db:"average_rating"`
	}
	if err := repo.db.GetContext(ctx, &row, q, courseID); err != nil {
		return review.Aggregate{}, mapError(err, course.ErrNotFound)
	}
	return review.Aggregate{CourseID: courseID, AverageRating: row.AverageRating, ReviewsCount: row.ReviewsCount}, nil
}

func (repo *reviewRepository) SetCourseRating(ctx context.Context, agg review.Aggregate) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE courses SET average_rating = $2, reviews_count = $3 WHERE id = $1`,
		agg.CourseID, agg.AverageRating, agg.ReviewsCount,
	)
	if err != nil {
		return mapError(err, course.ErrNotFound)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}
