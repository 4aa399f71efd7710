package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core/class"
)

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, classes *class.Service, groups *class.GroupService) {
	cg := g.Group("/class", jwt)
	registerCRUD[class.NewClass, class.UpdateClass, class.ClassView](cg, classes)
	cg.GET("/teacher/:id", idHandler(classes.ListByTeacher))
	cg.GET("/school/:id", idHandler(classes.ListBySchool))
	cg.GET("/student/:id", idHandler(classes.ListByStudent))
	registerRefs(cg, "students", classes.AddStudents, classes.RemoveStudents)
	registerRefs(cg, "teachers", classes.AddTeachers, classes.RemoveTeachers)

	gg := g.Group("/class-group", jwt)
	registerCRUD[class.NewGroup, class.UpdateGroup, class.GroupView](gg, groups)
	gg.GET("/class/:id", idHandler(groups.ListByClass))
	registerRefs(gg, "students", groups.AddStudents, groups.RemoveStudents)
}
