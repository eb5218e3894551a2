package server

import (
	"chainsight/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	apiRoutes.GET("/graph/dot", routes.GetGraphDOTHandler)
	apiRoutes.POST("/lookup", routes.LookupHandler)
	apiRoutes.POST("/connections", routes.ConnectionsHandler)
	apiRoutes.POST("/query", routes.QueryHandler)
}
