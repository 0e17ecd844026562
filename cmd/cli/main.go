package main

import (
	"context"
	"log"
	"os"

	"github.com/aquidolado/aqui/internal/buildinfo"
	"github.com/aquidolado/aqui/internal/client/cli"
	"github.com/aquidolado/aqui/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
