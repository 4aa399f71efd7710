package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/academics"
)

func registerAcademicsAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	educations *academics.EducationService,
	sectors *academics.SectorService,
	trades *academics.TradeService,
	types *academics.ClassRoomTypeService,
	classrooms *academics.ClassRoomService,
) {
	eg := g.Group("/education", jwt)
	registerCRUD[academics.NewEducation, academics.UpdateEducation, academics.EducationView](eg, educations)

	sg := g.Group("/sector", jwt)
	registerCRUD[academics.NewSector, academics.UpdateSector, academics.SectorView](sg, sectors)
	sg.GET("/education/:id", idHandler(sectors.ListByEducation))

	tg := g.Group("/trade", jwt)
	registerCRUD[academics.NewTrade, academics.UpdateTrade, academics.TradeView](tg, trades)
	tg.GET("/sector/:id", idHandler(trades.ListBySector))

	ctg := g.Group("/classroom-type", jwt)
	registerCRUD[academics.NewClassRoomType, academics.UpdateClassRoomType, academics.ClassRoomTypeView](ctg, types)

	api := classRoomAPI{svc: classrooms}
	cg := g.Group("/classroom", jwt)
	cg.POST("", api.create)
	cg.GET("", listHandler(classrooms.List))
	cg.GET("/:id", idHandler(classrooms.Get))
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", idHandler(classrooms.Delete))
	cg.GET("/trade/:id", idHandler(classrooms.ListByTrade))
	cg.GET("/sector/:id", idHandler(classrooms.ListBySector))
	cg.GET("/type/:id", idHandler(classrooms.ListByType))
}

// classRoomAPI accepts JSON bodies as well as multipart forms uploading a `symbol` file.
type classRoomAPI struct {
	svc *academics.ClassRoomService
}

func (api classRoomAPI) create(ctx echo.Context) error {
	var data academics.NewClassRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassRoom")
	}
	symbol, done, err := formBlob(ctx, "symbol")
	if err != nil {
		return err
	}
	defer done()

	c, err := api.svc.Create(ctx.Request().Context(), data, symbol)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api classRoomAPI) update(ctx echo.Context) error {
	var data academics.UpdateClassRoom
	if isMultipart(ctx) {
		data = academics.UpdateClassRoom{
			Name:          formValue(ctx, "name"),
			Username:      formValue(ctx, "username"),
			Description:   formValue(ctx, "description"),
			Symbol:        formValue(ctx, "symbol"),
			ClassRoomType: formValue(ctx, "class_room_type"),
			Trade:         formValue(ctx, "trade"),
			Sector:        formValue(ctx, "sector"),
		}
	} else if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassRoom")
	}
	symbol, done, err := formBlob(ctx, "symbol")
	if err != nil {
		return err
	}
	defer done()

	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data, symbol)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}
