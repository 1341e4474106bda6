package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diarioweb/config"
	"diarioweb/config/database"
	"diarioweb/internal/access"
	"diarioweb/internal/diary/storage"
	userRepo "diarioweb/internal/user/repository"
	"diarioweb/middleware"
	"diarioweb/pkg/logger"
	"diarioweb/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Sugar.Fatalf("Invalid configuration: %v", err)
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Sugar.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Sugar.Fatalf("Failed to migrate database: %v", err)
	}

	if _, err := userRepo.NewUserRepository(db).EnsureOwner(ctx, cfg.AdminUsername, cfg.AdminPasswordHash); err != nil {
		logger.Sugar.Fatalf("Failed to seed owner account: %v", err)
	}

	gate, err := access.NewGate(access.Credentials{
		Username:      cfg.AdminUsername,
		PasswordHash:  cfg.AdminPasswordHash,
		SigningSecret: []byte(cfg.JWTSecret),
		TokenTTL:      cfg.TokenTTL,
	})
	if err != nil {
		logger.Sugar.Fatalf("Failed to build access gate: %v", err)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		logger.Sugar.Fatalf("Failed to set up diary storage: %v", err)
	}

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.Setup(router.Deps{
			DB:                 db,
			Gate:               gate,
			Blobs:              blobs,
			LoginLimiter:       limiter,
			CorsAllowedOrigins: cfg.CorsAllowedOrigins,
			MaxUploadBytes:     cfg.MaxUploadBytes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Shutdown error: %v", err)
		os.Exit(1)
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	if cfg.StorageBackend == "s3" {
		logger.Sugar.Infof("Diary files go to bucket %s", cfg.S3.Bucket)
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	}
	logger.Sugar.Infof("Diary files go to %s", cfg.UploadDir)
	return storage.NewLocalStore(cfg.UploadDir)
}
