package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"newsdesk/api/router"
	"newsdesk/auth"
	"newsdesk/config"
	"newsdesk/db"
	"newsdesk/logger"
	"newsdesk/storage"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal(err)
	}

	jwtm, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	store, err := storage.NewS3StoreFromEnv(ctx)
	if err != nil {
		log.Fatal(err)
	}
	var imageStore storage.Store
	if store != nil {
		logger.Log.Info("object storage configured, images will be uploaded")
		imageStore = store
	} else {
		logger.Log.Info("object storage not configured, images will be stored locally")
		imageStore = storage.NewLocalStore(cfg.Images.StaticDir)
	}

	r := router.New(cfg, jwtm, imageStore)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
