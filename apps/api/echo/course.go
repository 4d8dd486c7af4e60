package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core/course"
)

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, svc *course.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.GET("/slug/:slug", api.retrieveWithLessons)
	cg.GET("/:id", api.retrieve, courseMiddleware(svc))
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	var paging Paging
	paging.Bind(ctx)

	courses, err := api.svc.List(ctx.Request().Context(), paging.Limit)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) retrieveWithLessons(ctx echo.Context) error {
	crs, err := api.svc.GetWithLessons(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "getting course with lessons")
	}
	return ctx.JSON(http.StatusOK, crs)
}
