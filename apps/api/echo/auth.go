package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/elimu/core/auth"
)

const bearerScheme = "Bearer"

// bearerToken extracts the credential of an "Authorization: Bearer <token>" header.
func bearerToken(ctx echo.Context) string {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return ""
	}
	return token
}

// getContextIdentity returns the authenticated learner set by authMiddleware.
func getContextIdentity(ctx echo.Context) (auth.Identity, error) {
	return auth.FromContext(ctx.Request().Context())
}
