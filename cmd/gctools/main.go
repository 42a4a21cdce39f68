package main

import (
	"os"

	"game_collection/logging"
)

func main() {
	logger, err := logging.NewConsole()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := newRootCmd(os.Stdout, logger).Execute(); err != nil {
		os.Exit(1)
	}
}
