package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chainsight/internal/adapter"
	"chainsight/internal/util"
	"chainsight/pkg/catalog"
	"chainsight/pkg/logger"
	"chainsight/pkg/logger/console"
	"chainsight/pkg/query"
	"chainsight/pkg/world"
)

const defaultQuestion = "Assess the impact of a strike at the Port of Shanghai on our supply chain."

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	aiClient, err := adapter.NewClientFromEnv()
	if err != nil {
		logger.Fatal("Could not create model client", "err", err)
	}
	if aiClient == nil {
		logger.Fatal("An agentic run needs a model backend; set AI_ADAPTER to ollama or openai")
	}

	question := defaultQuestion
	if args := os.Args[1:]; len(args) > 0 {
		question = strings.Join(args, " ")
	}

	seed := util.GetEnvInt64("WORLD_SEED", time.Now().UnixNano())
	w, err := world.Build(ctx, catalog.Generate(seed), adapter.EmbedderFromClient(aiClient))
	if err != nil {
		logger.Fatal("Failed to build world", "err", err)
	}

	client := query.NewClient(w)
	logger.Info("Running query", "question", question, "seed", seed)

	answer, err := client.QueryAgentic(ctx, aiClient, question)
	if err != nil {
		logger.Fatal("Query failed", "err", err)
	}

	fmt.Println(answer)

	metrics := aiClient.GetMetrics()
	logger.Info("Query finished",
		"total_tokens", metrics.TotalTokens,
		"duration_ms", metrics.DurationMs,
	)
}
