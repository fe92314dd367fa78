// Command fetch runs a single ingestion pass from the command line,
// logging every progress event instead of streaming it to a socket.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"newsdesk/config"
	"newsdesk/db"
	"newsdesk/fetcher"
	"newsdesk/logger"
	"newsdesk/repositories"
	"newsdesk/storage"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx); err != nil {
		log.Fatal(err)
	}

	store, err := storage.NewS3StoreFromEnv(ctx)
	if err != nil {
		log.Fatal(err)
	}
	var imageStore storage.Store
	if store != nil {
		imageStore = store
	} else {
		imageStore = storage.NewLocalStore(cfg.Images.StaticDir)
	}

	authorID := os.Getenv("FETCH_AUTHOR_ID")
	if authorID == "" {
		authorID = "cli"
	}

	f := fetcher.New(ctx, cfg, fetcher.Deps{
		Posts:   repositories.NewPostRepository(db.Database()),
		Sources: repositories.NewSourceRepository(db.Database()),
		Store:   imageStore,
	}, authorID)

	err = f.Run(ctx, func(ev fetcher.ProgressEvent) error {
		logger.InfoWithFields(ev.Message, logger.Fields{
			"stage":       ev.Stage,
			"progress":    ev.Progress,
			"is_complete": ev.IsComplete,
		})
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}
