package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
)

var kindStatus = map[core.ErrorKind]int{
	core.KindUnauthenticated:    http.StatusUnauthorized,
	core.KindInvalidCredential:  http.StatusUnauthorized,
	core.KindForbidden:          http.StatusForbidden,
	core.KindCourseNotFound:     http.StatusNotFound,
	core.KindLessonNotFound:     http.StatusNotFound,
	core.KindNotEnrolled:        http.StatusNotFound,
	core.KindReviewNotFound:     http.StatusNotFound,
	core.KindAlreadyEnrolled:    http.StatusConflict,
	core.KindAlreadyCompleted:   http.StatusConflict,
	core.KindConflict:           http.StatusConflict,
	core.KindInvalidRating:      http.StatusBadRequest,
	core.KindNoLessons:          http.StatusUnprocessableEntity,
	core.KindNotEligible:        http.StatusForbidden,
	core.KindStorageUnavailable: http.StatusServiceUnavailable,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		origErr := errors.Cause(err)
		var kindErr *core.Error
		if errors.As(err, &kindErr) {
			origErr = kindErr
		}

		switch origErr := origErr.(type) {
		case *core.Error:
			code = http.StatusInternalServerError
			if c, ok := kindStatus[origErr.Kind]; ok {
				code = c
			}
			message = echo.Map{"error": origErr.Message, "kind": origErr.Kind}
			if code == http.StatusServiceUnavailable {
				logger.Warn(origErr.Message, err, contextIdentity(ctx))
			}
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), contextIdentity(ctx))

			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// contextIdentity returns the caller identity, if any.
func contextIdentity(ctx echo.Context) auth.Identity {
	id, _ := auth.FromContext(ctx.Request().Context())
	return id
}
