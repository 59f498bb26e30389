package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/cache"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/config"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/database"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/identity"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/router"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/services"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/storage"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.LogLevel)

	// Connected on first use.
	db := database.NewHandle(cfg.DB)
	defer db.Close()

	store, err := newObjectStore(cfg)
	if err != nil {
		log.Fatalf("object store initialization failed: %v", err)
	}

	tokens, err := cache.New(cfg.Cache, cfg.Redis)
	if err != nil {
		log.Fatalf("token cache initialization failed: %v", err)
	}

	accounts := services.NewAccountService(db, tokens)
	photoService := services.NewPhotoService(accounts, store, cfg.Storage.FilePrefix, cfg.Storage.ListPageSize, cfg.Storage.MaxListPages)
	sharing := services.NewSharingService(db, accounts, photoService)

	app := router.New(router.Deps{
		Accounts:    accounts,
		Photos:      photoService,
		Sharing:     sharing,
		Identity:    identity.NewClient(cfg.Identity, nil),
		CallbackURL: cfg.Identity.CallbackURL,
		CORSOrigins: cfg.Server.CORSOrigins,
		BodyLimitMB: cfg.Server.BodyLimitMB,
	})

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":            cfg.Server.Port,
		"address":         listenAddr,
		"body_limit_mb":   cfg.Server.BodyLimitMB,
		"db_driver":       cfg.DB.Driver,
		"storage_backend": cfg.Storage.Backend,
		"token_cache":     cfg.Cache.Kind,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}

func newObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.Storage.Backend {
	case "memory":
		logger.Warn("memory_object_store", map[string]interface{}{
			"note": "photos are lost on restart",
		})
		return storage.NewMemoryStore(), nil
	case "", "minio":
		client, err := storage.NewMinIOStore(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
