package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/core/plan"
)

type formApi struct {
	drafts *plan.DraftStore
	plans  *plan.Service
}

func registerFormAPI(g *echo.Group, drafts *plan.DraftStore, plans *plan.Service) {
	api := formApi{drafts: drafts, plans: plans}

	fg := g.Group("/forms")
	fg.GET("/options", api.options)
	fg.POST("", api.create)

	dg := fg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PATCH("", api.update)
	dg.POST("/next", api.next)
	dg.POST("/back", api.back)
	dg.POST("/submit", api.submit)
}

func (api *formApi) options(ctx echo.Context) error {
	opts, err := plan.LoadOptions()
	if err != nil {
		return errors.Wrap(err, "loading form options")
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api *formApi) create(ctx echo.Context) error {
	return ctx.JSON(http.StatusCreated, api.drafts.Create())
}

func (api *formApi) retrieve(ctx echo.Context) error {
	state, err := api.drafts.Get(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *formApi) update(ctx echo.Context) error {
	var patch plan.FormPatch
	if err := ctx.Bind(&patch); err != nil {
		return err
	}
	state, err := api.drafts.With(ctx.Param("id"), func(c *plan.Collector) error {
		c.Update(patch)
		return nil
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *formApi) next(ctx echo.Context) error {
	state, err := api.drafts.With(ctx.Param("id"), func(c *plan.Collector) error { return c.Next() })
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *formApi) back(ctx echo.Context) error {
	state, err := api.drafts.With(ctx.Param("id"), func(c *plan.Collector) error { return c.Back() })
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, state)
}

// submit runs the pipeline on a complete draft. The draft is dropped once a
// plan was generated.
func (api *formApi) submit(ctx echo.Context) error {
	id := ctx.Param("id")

	var form plan.FormSubmission
	_, err := api.drafts.With(id, func(c *plan.Collector) (err error) {
		form, err = c.Submit()
		return err
	})
	if err != nil {
		return err
	}

	res, err := api.plans.Generate(ctx.Request().Context(), form)
	if err != nil {
		return err
	}
	if res.Success {
		api.drafts.Delete(id)
	}
	return ctx.JSON(http.StatusOK, res)
}
