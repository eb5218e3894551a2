package routes

import (
	"net/http"
	"strings"

	"chainsight/internal/server/middleware"
	"chainsight/pkg/catalog"
	"chainsight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// LookupHandler runs a direct semantic description search over one entity
// kind, no graph step.
func LookupHandler(c echo.Context) error {
	type lookupRequest struct {
		Kind  string `json:"kind" validate:"required,oneof=location supplier product LOCATION SUPPLIER PRODUCT"`
		Query string `json:"query" validate:"required"`
		K     int    `json:"k" validate:"omitempty,gte=1,lte=50"`
	}

	type lookupResponse struct {
		Message string `json:"message"`
	}

	data := new(lookupRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, lookupResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, lookupResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	kind := catalog.Kind(strings.ToUpper(data.Kind))

	result, err := app.Query.LookupByDescription(c.Request().Context(), kind, data.Query, data.K)
	if err != nil {
		logger.Error("lookup failed", "kind", kind, "err", err)
		return c.JSON(http.StatusInternalServerError, lookupResponse{
			Message: "Internal server error",
		})
	}
	return c.JSON(http.StatusOK, lookupResponse{Message: result})
}
