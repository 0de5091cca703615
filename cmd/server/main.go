package main

import (
	"context"
	"log"

	"github.com/aequatio-app/aequatio/internal/server"
	"github.com/aequatio-app/aequatio/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
