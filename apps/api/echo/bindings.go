package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

var limitParam = "limit"

// Paging holds the page size requested through the "limit" query param; 0 means the default.
type Paging struct {
	Limit int
}

func (p *Paging) Bind(ctx echo.Context) {
	val := ctx.QueryParam(limitParam)
	if val == "" {
		return
	}
	if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
		p.Limit = limit
	}
}
