package routes

import (
	"net/http"

	"chainsight/internal/server/middleware"
	"chainsight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ConnectionsHandler runs the resolve-then-traverse pipeline for a named
// entity and returns its rendered connection report.
func ConnectionsHandler(c echo.Context) error {
	type connectionsRequest struct {
		Name string `json:"name" validate:"required"`
	}

	type connectionsResponse struct {
		Message string `json:"message"`
	}

	data := new(connectionsRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, connectionsResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, connectionsResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	result, err := app.Query.ExploreConnections(c.Request().Context(), data.Name)
	if err != nil {
		logger.Error("connection exploration failed", "name", data.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, connectionsResponse{
			Message: "Internal server error",
		})
	}
	return c.JSON(http.StatusOK, connectionsResponse{Message: result})
}
