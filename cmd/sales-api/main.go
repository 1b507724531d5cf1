package main

import (
	"log"
	"os"

	"github.com/halls510/developerstore-sales-api-sub001/cmd/sales-api/app"
	"github.com/halls510/developerstore-sales-api-sub001/configs"
)

func main() {
	env := os.Getenv("APP_ENV") // dev | staging | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}

	app, cleanup, err := app.InitWithConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	log.Printf("sales-api (%s) listening on %s", env, cfg.App.HTTPAddr)
	if err := app.Router.Run(cfg.App.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
