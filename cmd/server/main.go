package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/agenda/internal/app"
	"github.com/dmitrijs2005/agenda/internal/buildinfo"
	"github.com/dmitrijs2005/agenda/internal/config"
	"github.com/dmitrijs2005/agenda/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(os.Stdout, "json", cfg.LogLevel)

	a, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := a.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
