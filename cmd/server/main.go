package main

import (
	"chainsight/internal/server"
	"chainsight/internal/util"
	"chainsight/pkg/logger"
	"chainsight/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
