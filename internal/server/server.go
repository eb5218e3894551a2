package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainsight/internal/adapter"
	mid "chainsight/internal/server/middleware"
	"chainsight/internal/util"
	"chainsight/pkg/catalog"
	"chainsight/pkg/logger"
	"chainsight/pkg/query"
	"chainsight/pkg/world"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// Init builds the world once and serves queries over it until interrupted.
func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiClient, err := adapter.NewClientFromEnv()
	if err != nil {
		logger.Fatal("Failed to create model client", "err", err)
	}

	seed := util.GetEnvInt64("WORLD_SEED", time.Now().UnixNano())
	cat := catalog.Generate(seed)
	w, err := world.Build(ctx, cat, adapter.EmbedderFromClient(aiClient))
	if err != nil {
		logger.Fatal("Failed to build world", "err", err)
	}

	app := &mid.App{
		World:    w,
		Query:    query.NewClient(w),
		AiClient: aiClient,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port, "seed", seed)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
