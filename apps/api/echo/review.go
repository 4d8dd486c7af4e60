package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/review"
)

type reviewApi struct {
	svc *review.Service
}

func registerReviewAPI(g *echo.Group, authed echo.MiddlewareFunc, courseSvc *course.Service, svc *review.Service) {
	api := reviewApi{svc: svc}

	courseMw := courseMiddleware(courseSvc)

	cg := g.Group("/courses/:id/reviews")
	cg.GET("", api.query, courseMw)
	cg.POST("", api.create, authed, courseMw)

	rg := g.Group("/reviews/:id")
	rg.PUT("", api.update, authed)
	rg.PATCH("", api.update, authed)
	rg.DELETE("", api.destroy, authed)
}

// Handlers

func (api *reviewApi) query(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}
	var paging Paging
	paging.Bind(ctx)

	reviews, err := api.svc.List(ctx.Request().Context(), crs.ID, paging.Limit)
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	return ctx.JSON(http.StatusOK, reviews)
}

func (api *reviewApi) create(ctx echo.Context) error {
	author, crs, err := identityAndCourse(ctx)
	if err != nil {
		return err
	}
	var data review.NewReview
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}

	rv, err := api.svc.Create(ctx.Request().Context(), author, crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}
	return ctx.JSON(http.StatusCreated, rv)
}

func (api *reviewApi) update(ctx echo.Context) error {
	actor, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	var data review.UpdateReview
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReview")
	}

	rv, err := api.svc.Update(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating review")
	}
	return ctx.JSON(http.StatusOK, rv)
}

func (api *reviewApi) destroy(ctx echo.Context) error {
	actor, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting review")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": "Review deleted"})
}

// identityAndCourse returns the authenticated learner and the course resolved from the path.
func identityAndCourse(ctx echo.Context) (auth.Identity, course.Course, error) {
	id, err := getContextIdentity(ctx)
	if err != nil {
		return "", course.Course{}, err
	}
	crs, err := getContextCourse(ctx)
	if err != nil {
		return "", course.Course{}, err
	}
	return id, crs, nil
}
