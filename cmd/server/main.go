package main

import (
	"github.com/nwsirlp/skillgraph/internal/server"
	"github.com/nwsirlp/skillgraph/internal/util"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/logger/console"
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
