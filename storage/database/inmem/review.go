package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/review"
)

type reviewRepository struct {
	db *DB
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(_ context.Context, rv review.Review) (review.Review, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[rv.CourseID]; !ok {
		return review.Review{}, course.ErrNotFound
	}
	repo.db.reviews[rv.ID] = &rv
	return rv, nil
}

func (repo *reviewRepository) GetReview(_ context.Context, id string) (review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rv, ok := repo.db.reviews[id]; ok {
		return *rv, nil
	}
	return review.Review{}, review.ErrNotFound
}

func (repo *reviewRepository) UpdateReview(_ context.Context, rv review.Review) (review.Review, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored, ok := repo.db.reviews[rv.ID]
	if !ok {
		return review.Review{}, review.ErrNotFound
	}
	stored.Rating = rv.Rating
	stored.Title = rv.Title
	stored.Body = rv.Body
	stored.UpdatedAt = rv.UpdatedAt
	return *stored, nil
}

func (repo *reviewRepository) DeleteReview(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.reviews[id]; !ok {
		return review.ErrNotFound
	}
	delete(repo.db.reviews, id)
	return nil
}

func (repo *reviewRepository) QueryReviews(_ context.Context, courseID string, limit int) ([]review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reviews := make([]review.Review, 0)
	for _, rv := range repo.db.reviews {
		if rv.CourseID == courseID {
			reviews = append(reviews, *rv)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID > reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews, nil
}

func (repo *reviewRepository) AggregateRatings(_ context.Context, courseID string) (review.Aggregate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	agg := review.Aggregate{CourseID: courseID}
	var sum int
	for _, rv := range repo.db.reviews {
		if rv.CourseID == courseID {
			agg.ReviewsCount++
			sum += rv.Rating
		}
	}
	if agg.ReviewsCount > 0 {
		agg.AverageRating = float64(sum) / float64(agg.ReviewsCount)
	}
	return agg, nil
}

func (repo *reviewRepository) SetCourseRating(_ context.Context, agg review.Aggregate) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs, ok := repo.db.courses[agg.CourseID]
	if !ok {
		return course.ErrNotFound
	}
	crs.AverageRating = agg.AverageRating
	crs.ReviewsCount = agg.ReviewsCount
	return nil
}
