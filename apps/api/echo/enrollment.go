package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/enrollment"
)

type enrollmentApi struct {
	svc *enrollment.Service
}

func registerEnrollmentAPI(g *echo.Group, authed echo.MiddlewareFunc, courseSvc *course.Service, svc *enrollment.Service) {
	api := enrollmentApi{svc: svc}

	// route-level middlewares: group-level ones would also catch the course routes
	mw := []echo.MiddlewareFunc{authed, courseMiddleware(courseSvc)}

	cg := g.Group("/courses/:id")
	cg.POST("/enrollment", api.enroll, mw...)
	cg.GET("/enrollment", api.retrieve, mw...)
	cg.POST("/lessons/:lessonId/complete", api.completeLesson, mw...)
	cg.GET("/can-review", api.canReview, mw...)
}

// Handlers

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	learner, crs, err := identityAndCourse(ctx)
	if err != nil {
		return err
	}
	enr, err := api.svc.Enroll(ctx.Request().Context(), learner, crs.ID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	learner, crs, err := identityAndCourse(ctx)
	if err != nil {
		return err
	}
	enr, err := api.svc.GetEnrollment(ctx.Request().Context(), learner, crs.ID)
	if err != nil {
		return errors.Wrap(err, "getting enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) completeLesson(ctx echo.Context) error {
	learner, crs, err := identityAndCourse(ctx)
	if err != nil {
		return err
	}
	enr, err := api.svc.CompleteLesson(ctx.Request().Context(), learner, crs.ID, ctx.Param("lessonId"))
	if err != nil {
		return errors.Wrap(err, "completing lesson")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) canReview(ctx echo.Context) error {
	learner, crs, err := identityAndCourse(ctx)
	if err != nil {
		return err
	}
	elig, err := api.svc.CanReview(ctx.Request().Context(), learner, crs.ID)
	if err != nil {
		return errors.Wrap(err, "checking review eligibility")
	}
	return ctx.JSON(http.StatusOK, elig)
}
