package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"bookventory/internal/app"
	"bookventory/internal/config"
	"bookventory/internal/ratelimit"
	"bookventory/internal/server"
	"bookventory/internal/util"
	"bookventory/pkg/metadata"
	"bookventory/pkg/queue"
	"bookventory/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	resolver := buildResolver(cfg)
	objects, err := buildObjectStore(cfg)
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Resolver:    resolver,
		Objects:     objects,
		DueSoonDays: cfg.DueSoonDays,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var importQueue *queue.ImportQueue
	if cfg.RedisAddr != "" {
		importQueue, err = queue.NewImportQueue(queue.Config{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			Stream:     cfg.QueueStream,
			Group:      cfg.QueueGroup,
			MaxRetries: cfg.QueueMaxRetries,
		})
		if err != nil {
			log.Fatalf("failed to init import queue: %v", err)
		}
		importQueue.Start(context.Background(), cfg.QueueConcurrency, appCore.RunImportJob)
	} else {
		slog.Warn("redis not configured, async imports disabled")
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.ImportRatePerMinute > 0 {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.ImportRatePerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
	}

	httpServer, err := server.New(server.Config{
		App:     appCore,
		Queue:   importQueue,
		Limiter: limiter,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("bookventory server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func buildResolver(cfg config.FileConfig) *metadata.Resolver {
	sources := make([]metadata.Source, 0, len(cfg.MetadataSources))
	for _, name := range cfg.MetadataSources {
		switch name {
		case "googlebooks":
			sources = append(sources, metadata.NewGoogleBooksSource("", nil))
		case "openlibrary":
			sources = append(sources, metadata.NewOpenLibrarySource("", nil))
		}
	}
	var cache metadata.Cache
	if cfg.RedisAddr != "" {
		cache = metadata.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	}
	timeout := time.Duration(cfg.LookupTimeoutSeconds) * time.Second
	return metadata.NewResolver(sources, cache, timeout)
}

// buildObjectStore prefers MinIO and falls back to local disk so purchase
// order archiving works in a single-binary deployment.
func buildObjectStore(cfg config.FileConfig) (storage.ObjectStore, error) {
	if cfg.MinioEndpoint != "" {
		return storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	}
	return storage.NewFileStore(cfg.OrdersDir)
}
