package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/kelasi/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.Ordering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	if raw := ctx.QueryParam(orderingParam); raw != "" {
		ord.Orderings = core.ParseOrderings(raw)
	}
}
