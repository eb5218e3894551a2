package routes

import (
	"net/http"

	"chainsight/internal/server/middleware"
	"chainsight/pkg/ai"
	"chainsight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// QueryHandler answers a free-form risk question agentically: the model
// drives the lookup and connection tools until it settles on an answer.
func QueryHandler(c echo.Context) error {
	type queryRequest struct {
		Question string `json:"question" validate:"required"`
		Model    string `json:"model"`
	}

	type queryResponse struct {
		Message string           `json:"message"`
		Metrics *ai.ModelMetrics `json:"metrics,omitempty"`
	}

	data := new(queryRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	if app.AiClient == nil {
		return c.JSON(http.StatusServiceUnavailable, queryResponse{
			Message: "No model adapter configured",
		})
	}

	opts := []ai.GenerateOption{}
	if data.Model != "" {
		opts = append(opts, ai.WithModel(data.Model))
	}

	app.AiClient.ResetMetrics()
	answer, err := app.Query.QueryAgentic(c.Request().Context(), app.AiClient, data.Question, opts...)
	if err != nil || answer == "" {
		logger.Error("agentic query failed", "err", err)
		return c.JSON(http.StatusInternalServerError, queryResponse{
			Message: "Internal server error",
		})
	}

	metrics := app.AiClient.GetMetrics()
	return c.JSON(http.StatusOK, queryResponse{
		Message: answer,
		Metrics: &metrics,
	})
}
