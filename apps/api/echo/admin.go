package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core/entry"
)

type adminApi struct {
	entries *entry.Service
}

type deleted struct {
	Deleted int64 `json:"deleted"`
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, entries *entry.Service) {
	api := adminApi{entries: entries}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.DELETE("/entries", api.reset)
	ag.DELETE("/entries/:id", api.destroy)
}

func (api *adminApi) reset(ctx echo.Context) error {
	n, err := api.entries.Reset(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "resetting entries")
	}
	return ctx.JSON(http.StatusOK, deleted{Deleted: n})
}

func (api *adminApi) destroy(ctx echo.Context) error {
	n, err := api.entries.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting entry")
	}
	if n == 0 {
		return errHttpNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}
