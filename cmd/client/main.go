package main

import (
	"context"
	"log"

	"github.com/mindtide/moodsync/internal/client/cli"
	"github.com/mindtide/moodsync/internal/client/config"
	"github.com/mindtide/moodsync/internal/logging"
)

func main() {
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg, logging.NewDefault())
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(context.Background())
}
