package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"github.com/harrisonrobin/quadrant/pkg/auth"
	"github.com/harrisonrobin/quadrant/pkg/classify"
	"github.com/harrisonrobin/quadrant/pkg/config"
	"github.com/harrisonrobin/quadrant/pkg/drive"
	"github.com/harrisonrobin/quadrant/pkg/magicsort"
	"github.com/harrisonrobin/quadrant/pkg/store"
	tasksync "github.com/harrisonrobin/quadrant/pkg/sync"
	"github.com/harrisonrobin/quadrant/pkg/web"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	taskStore, err := store.Open(cfg.DataFile)
	if err != nil {
		log.Fatalf("could not open task store at %s: %v", cfg.DataFile, err)
	}

	classifier := classify.New(cfg.OpenAIKey, cfg.OpenAIModel)
	predicate := magicsort.NeedsClassification
	if cfg.ReclassifyDefaults {
		predicate = magicsort.NeedsClassificationOrDefault
	}
	sorter := magicsort.New(taskStore, classifier, predicate)

	authSvc := auth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)

	newRemote := func(ctx context.Context, tok *oauth2.Token) (tasksync.Remote, error) {
		return drive.NewClient(ctx, authSvc.TokenSource(ctx, tok), cfg.DriveFileName)
	}

	server, err := web.New(cfg, taskStore, sorter, authSvc, newRemote)
	if err != nil {
		log.Fatalf("could not build server: %v", err)
	}

	slog.Info("starting server", "addr", cfg.Addr(), "data_file", cfg.DataFile)
	if err := server.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
