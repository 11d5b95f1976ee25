package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/oinstituto/atlas/core/document"
)

type galleryApi struct {
	svc *document.Service
}

type galleryPage struct {
	Cards   []document.Card  `json:"cards"`
	Options document.Options `json:"options"`
}

func registerGalleryAPI(g *echo.Group, svc *document.Service) {
	api := galleryApi{svc: svc}

	gg := g.Group("/gallery")
	gg.GET("", api.browse)
	gg.GET("/search", api.search)
	gg.GET("/:id", api.retrieve)
}

func (api *galleryApi) browse(ctx echo.Context) error {
	var filter document.Filter
	if err := ctx.Bind(&filter); err != nil {
		return err
	}
	cards, opts, err := api.svc.Browse(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, galleryPage{Cards: cards, Options: opts})
}

func (api *galleryApi) search(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Search(ctx.Request().Context(), ctx.QueryParam("q")))
}

func (api *galleryApi) retrieve(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return errHttpNotFound
	}
	detail, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, detail)
}
