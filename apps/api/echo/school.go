package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/file"
	"github.com/trezcool/shule/core/school"
)

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *school.Service) {
	sg := g.Group("/school", jwt)
	sg.POST("", createHandler(svc.Create, func(ctx echo.Context, ns *school.NewSchool) error {
		// the authenticated user owns the schools they create
		if ns.Owner == "" {
			claims, err := auth.contextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			ns.Owner = claims.Subject
		}
		return nil
	}))
	sg.GET("", listHandler(svc.List))
	sg.GET("/:id", idHandler(svc.Get))
	sg.PUT("/:id", updateHandler(svc.Update))
	sg.DELETE("/:id", idHandler(svc.Delete))
	sg.GET("/owner/:id", idHandler(svc.ListByOwner))
	sg.PUT("/:id/logo", func(ctx echo.Context) error {
		var nf file.NewFile
		if err := ctx.Bind(&nf); err != nil {
			return errors.Wrap(err, "binding to NewFile")
		}
		logo, done, err := requiredBlob(ctx, "logo")
		if err != nil {
			return err
		}
		defer done()

		s, err := svc.SetLogo(ctx.Request().Context(), ctx.Param("id"), nf, logo)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, s)
	})
}
