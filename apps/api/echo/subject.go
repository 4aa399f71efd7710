package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core/subject"
)

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, subjects *subject.Service, types *subject.TypeService) {
	sg := g.Group("/subject", jwt)
	registerCRUD[subject.NewSubject, subject.UpdateSubject, subject.SubjectView](sg, subjects)
	sg.GET("/classroom/:id", idHandler(subjects.ListByClassRoom))
	sg.GET("/type/:id", idHandler(subjects.ListByType))
	registerRefs(sg, "books", subjects.AddBooks, subjects.RemoveBooks)

	tg := g.Group("/subject-type", jwt)
	registerCRUD[subject.NewType, subject.UpdateType, subject.TypeView](tg, types)
}
