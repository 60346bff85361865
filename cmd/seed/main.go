// Command seed writes the demo user and demo collections into the configured
// storage engine and exits. With -reset it first removes both keys.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/gogotex/collections/internal/collection/repository"
	"github.com/gogotex/collections/internal/collection/service"
	"github.com/gogotex/collections/internal/config"
	"github.com/gogotex/collections/internal/sessions"
	"github.com/gogotex/collections/internal/storage"
	"github.com/gogotex/collections/pkg/logger"
)

func main() {
	reset := flag.Bool("reset", false, "remove the stored user and collections before seeding")
	noCollections := flag.Bool("user-only", false, "seed only the demo user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open storage: %v", err)
	}
	defer func() { _ = backend.Close(ctx) }()

	if *reset {
		for _, key := range []string{storage.KeyUser, storage.KeyCollections} {
			if err := backend.Engine.Remove(ctx, key); err != nil {
				logger.Fatalf("failed to remove %s%s: %v", backend.Engine.Prefix(), key, err)
			}
		}
		logger.Infof("removed %s%s and %s%s", backend.Engine.Prefix(), storage.KeyUser, backend.Engine.Prefix(), storage.KeyCollections)
	}

	// the seed tool always writes the demo user, regardless of DEMO_LOGGED_IN
	sess := sessions.NewService(backend.Engine, true)
	res, err := service.Seed(ctx, sess, repository.NewStoreRepo(backend.Engine), !*noCollections)
	if err != nil {
		logger.Fatalf("seed failed: %v", err)
	}
	logger.Infof("seed done on %s: user written=%v collections written=%v", backend.Engine.Name(), res.User, res.Collections)
}
