package server

import (
	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Employee routes
	apiRoutes.GET("/employees", routes.GetEmployeesHandler)
	apiRoutes.POST("/employees", routes.CreateEmployeeHandler, middleware.RequirePermission("employee.create"))
	apiRoutes.DELETE("/employees/:id", routes.DeleteEmployeeHandler, middleware.RequirePermission("employee.delete"))
	apiRoutes.POST("/employees/:id/skills", routes.AssignEmployeeSkillHandler, middleware.RequirePermission("skill.assign"))

	// Skill routes
	apiRoutes.GET("/skills", routes.GetSkillsHandler)
	apiRoutes.POST("/skills", routes.CreateSkillHandler, middleware.RequirePermission("skill.create"))

	// Graph routes
	apiRoutes.GET("/graph", routes.GetGraphHandler)
	apiRoutes.GET("/graph/snapshot", routes.GetGraphSnapshotHandler)

	// Matching routes
	apiRoutes.POST("/search", routes.SearchCandidatesHandler)
	apiRoutes.POST("/search/skills", routes.SearchBySkillsHandler)

	// Assistant routes
	apiRoutes.POST("/chat", routes.ChatHandler)

	// Dataset routes
	apiRoutes.POST("/dataset/import", routes.ImportDatasetHandler, middleware.RequirePermission("dataset.import"))
}
