package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
)

const contextCourseKey = "course"

var errCourseNotFoundInCtx = errors.New("course not found in echo.Context")

// authMiddleware resolves the bearer credential into an auth.Identity stored in the request context.
func authMiddleware(guard *auth.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := guard.Verify(bearerToken(ctx))
			if err != nil {
				return err
			}
			req := ctx.Request()
			ctx.SetRequest(req.WithContext(auth.NewContext(req.Context(), id)))
			return next(ctx)
		}
	}
}

// courseMiddleware resolves the ":id" path param (an id or a slug) into a course.Course.
func courseMiddleware(svc *course.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crs, err := svc.Resolve(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "resolving course")
			}
			ctx.Set(contextCourseKey, crs)
			return next(ctx)
		}
	}
}

func getContextCourse(ctx echo.Context) (course.Course, error) {
	if crs, ok := ctx.Get(contextCourseKey).(course.Course); ok {
		return crs, nil
	}
	return course.Course{}, errCourseNotFoundInCtx
}
