package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oinstituto/atlas/core/plan"
)

const planRateBurst = 3

type planApi struct {
	svc *plan.Service
}

type emailRequest struct {
	Email string `json:"email"`
}

func registerPlanAPI(g *echo.Group, svc *plan.Service, ratePerSecond float64) {
	api := planApi{svc: svc}

	pg := g.Group("/plans")
	pg.POST("", api.generate, rateLimitMiddleware(ratePerSecond, planRateBurst))
	pg.POST("/:id/email", api.email)
}

func (api *planApi) generate(ctx echo.Context) error {
	var form plan.FormSubmission
	if err := ctx.Bind(&form); err != nil {
		return err
	}
	res, err := api.svc.Generate(ctx.Request().Context(), form)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

// email sends the stored plan of an entry, to the entry's address unless the
// body names another one.
func (api *planApi) email(ctx echo.Context) error {
	var data emailRequest
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	res, err := api.svc.EmailEntry(ctx.Request().Context(), ctx.Param("id"), data.Email)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
