package routes

import (
	"net/http"

	"chainsight/internal/server/middleware"
	"chainsight/internal/server/util"

	"github.com/labstack/echo/v4"
)

// GetGraphDOTHandler renders the whole supply chain graph as Graphviz DOT,
// coloring suppliers above the requested risk threshold.
func GetGraphDOTHandler(c echo.Context) error {
	type graphParams struct {
		RiskThreshold *float64 `query:"risk_threshold" validate:"omitempty,gte=0,lte=1"`
	}

	params := new(graphParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Invalid risk_threshold",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Invalid risk_threshold",
		})
	}

	threshold := 0.6
	if params.RiskThreshold != nil {
		threshold = *params.RiskThreshold
	}

	app := c.(*middleware.AppContext).App
	dot := util.ToDOT(app.World.Graph, threshold)
	return c.Blob(http.StatusOK, "text/vnd.graphviz", []byte(dot))
}
