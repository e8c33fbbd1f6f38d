package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"garagehub/internal/app"
	"garagehub/internal/camerafeed"
	"garagehub/internal/config"
	"garagehub/internal/enrich"
	"garagehub/internal/server"
	"garagehub/internal/util"
	"garagehub/pkg/queue"
	"garagehub/pkg/registry"
	"garagehub/pkg/storage"
	"garagehub/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	dataStore, err := store.NewMongoStore(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	connectCancel()
	if err != nil {
		log.Fatalf("failed to init mongo store: %v", err)
	}
	defer dataStore.Close(context.Background())

	jobQueue, err := queue.NewRedisJobQueue(queue.Config{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		Stream:      cfg.QueueStream,
		Group:       cfg.QueueGroup,
		MaxAttempts: cfg.QueueMaxAttempts,
	})
	if err != nil {
		log.Fatalf("failed to init job queue: %v", err)
	}

	registryClient := registry.NewClient(cfg.RegistryBaseURL, time.Duration(cfg.RegistryTimeoutSeconds)*time.Second)

	enricher, err := enrich.New(enrich.Config{
		Registry:          registryClient,
		Cars:              dataStore.Cars(),
		VehicleResourceID: cfg.VehicleResourceID,
		ModelResourceID:   cfg.VehicleModelResourceID,
	})
	if err != nil {
		log.Fatalf("failed to init enricher: %v", err)
	}
	jobQueue.Start(ctx, cfg.QueueConcurrency, enricher.Handle)

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object store: %v", err)
		}
	}

	appCore, err := app.New(app.Config{
		Store:   dataStore,
		Queue:   jobQueue,
		Objects: objects,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	if cfg.CameraAMQPURL != "" {
		feed, err := camerafeed.New(camerafeed.Config{
			URL:     cfg.CameraAMQPURL,
			Queue:   cfg.CameraQueue,
			Cameras: dataStore.Cameras(),
		})
		if err != nil {
			log.Fatalf("failed to init camera feed: %v", err)
		}
		feed.Start(ctx)
	}

	httpServer, err := server.New(server.Config{App: appCore})
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

	slog.Info("garagehub server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
