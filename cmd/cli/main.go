package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/dealwatch/internal/buildinfo"
	"github.com/dmitrijs2005/dealwatch/internal/client/cli"
	"github.com/dmitrijs2005/dealwatch/internal/client/config"
	"github.com/dmitrijs2005/dealwatch/internal/logging"
	"github.com/dmitrijs2005/dealwatch/internal/metrics"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n\n", err)
		config.Usage(os.Stderr)
		os.Exit(2)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	app, err := cli.NewApp(cfg, logger, metrics.New())

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
