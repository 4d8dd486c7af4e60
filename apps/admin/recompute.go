package main

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core/course"
)

// recompute re-derives the rating of the course identified by idOrSlug, or of every course.
func (cli *commandLine) recompute(ctx context.Context, idOrSlug string) error {
	var courses []course.Course
	if idOrSlug != "" {
		crs, err := cli.courseSvc.Resolve(ctx, idOrSlug)
		if err != nil {
			return errors.Wrap(err, "resolving course")
		}
		courses = append(courses, crs)
	} else {
		var err error
		if courses, err = cli.courseSvc.List(ctx, math.MaxInt32); err != nil {
			return errors.Wrap(err, "listing courses")
		}
	}

	for _, crs := range courses {
		agg, err := cli.reviewSvc.RecomputeAggregate(ctx, crs.ID)
		if err != nil {
			return errors.Wrapf(err, "recomputing %q", crs.Slug)
		}
		fmt.Fprintf(cli.out, "%s: %.2f (%d reviews)\n", crs.Slug, agg.AverageRating, agg.ReviewsCount)
	}
	return nil
}
