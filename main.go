package main

import (
	"flag"
	"log"
	"os"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/app"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/config"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	l := logger.New(log.Default())

	var exitCode int

	conf, err := config.Load(*configPath)
	if err != nil {
		l.LogErrorf("Failed to load config: %v", err.Error())
		os.Exit(1)
	}

	if err := app.Run(l, conf); err != nil {
		l.LogErrorf("Failed to run app: %v", err.Error())

		exitCode = 1
	}

	os.Exit(exitCode)
}
