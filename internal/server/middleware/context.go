package middleware

import (
	"github.com/labstack/echo/v4"

	"chainsight/pkg/ai"
	"chainsight/pkg/query"
	"chainsight/pkg/world"
)

// App holds the shared state every request handler needs: the built world,
// the query client over it, and the model client. AiClient is nil when no
// model adapter is configured; routes that need it must answer 503.
type App struct {
	World    *world.World
	Query    *query.Client
	AiClient ai.Client
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app})
		}
	}
}
