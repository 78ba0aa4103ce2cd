package main

import (
	"os"

	_ "ssdeploy/cmd"
	"ssdeploy/cmd/root"
	"ssdeploy/internal/config"
	"ssdeploy/internal/logger"
)

func main() {
	logger.InitLogger(config.Config.Log.Path, config.Config.Log.Level)

	if err := root.RootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
	os.Exit(0)
}
