package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/oinstituto/atlas/core/entry"
)

var previewMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

type entryApi struct {
	svc *entry.Service
}

type planPreview struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PlanSent bool   `json:"plan_sent"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

func registerEntryAPI(g *echo.Group, svc *entry.Service) {
	api := entryApi{svc: svc}

	eg := g.Group("/entries")
	eg.GET("", api.query)
	eg.GET("/:id/plan", api.plan)
}

func (api *entryApi) query(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	entries, err := api.svc.Query(ctx.Request().Context(), ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying entries")
	}
	return ctx.JSON(http.StatusOK, entries)
}

// plan renders the stored plan with a full Markdown parser, for the browser.
func (api *entryApi) plan(ctx echo.Context) error {
	e, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if e.LessonPlanMarkdown == "" {
		return errHttpNotFound
	}

	var buf bytes.Buffer
	if err = previewMarkdown.Convert([]byte(e.LessonPlanMarkdown), &buf); err != nil {
		return errors.Wrap(err, "rendering plan preview")
	}
	return ctx.JSON(http.StatusOK, planPreview{
		ID:       e.ID,
		Name:     e.Name,
		PlanSent: e.PlanSent,
		Markdown: e.LessonPlanMarkdown,
		HTML:     buf.String(),
	})
}
