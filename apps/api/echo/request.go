package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core/request"
)

func registerRequestAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	auth *authenticator,
	requests *request.Service,
	types *request.TypeService,
) {
	admin := adminMiddleware(auth)

	rg := g.Group("/request")
	// anyone may send a request
	rg.POST("", createHandler(requests.Create))
	rg.GET("", listHandler(requests.List), jwt, admin)
	rg.GET("/:id", idHandler(requests.Get), jwt, admin)
	rg.PUT("/:id", updateHandler(requests.Update), jwt, admin)
	rg.DELETE("/:id", idHandler(requests.Delete), jwt, admin)
	rg.GET("/type/:id", idHandler(requests.ListByType), jwt, admin)

	tg := g.Group("/request-type", jwt)
	registerCRUD[request.NewType, request.UpdateType, request.TypeView](tg, types, admin)
}
