package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/file"
)

func registerFileAPI(g *echo.Group, jwt echo.MiddlewareFunc, files *file.Service, types *file.TypeService) {
	fg := g.Group("/file", jwt)
	fg.POST("", func(ctx echo.Context) error {
		var nf file.NewFile
		if err := ctx.Bind(&nf); err != nil {
			return errors.Wrap(err, "binding to NewFile")
		}
		blob, done, err := requiredBlob(ctx, "file")
		if err != nil {
			return err
		}
		defer done()

		f, err := files.Upload(ctx.Request().Context(), nf, blob)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, f)
	})
	fg.GET("", listHandler(files.List))
	fg.GET("/:id", idHandler(files.Get))
	fg.PUT("/:id", updateHandler(files.Update))
	fg.DELETE("/:id", idHandler(files.Delete))
	fg.GET("/type/:id", idHandler(files.ListByType))

	tg := g.Group("/file-type", jwt)
	registerCRUD[file.NewFileType, file.UpdateFileType, file.FileTypeView](tg, types)
}
