package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/database"
	"github.com/platewise/backend/internal/middleware"
	"github.com/platewise/backend/internal/server"
	"github.com/platewise/backend/internal/service"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	codec := service.NewNutritionCodec(service.DefaultJPEGQuality)
	analyzer := service.NewInferenceClient(cfg, codec)

	// Redis backs log persistence and rate limiting. Without it the service
	// still runs, with in-memory logs and no throttling.
	var kv service.KV
	var limiter *middleware.RateLimiter
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("WARNING: Redis unavailable, food logs will not survive restarts: %v", err)
		kv = service.NewMemoryKV()
	} else {
		kv = service.NewRedisKV(redisClient)
		limiter = middleware.NewAnalysisRateLimiter(redisClient)
	}
	store := service.NewLogStore(ctx, kv)

	var images *service.ImageStore
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		log.Printf("WARNING: S3 unavailable, food images will not be stored: %v", err)
	} else if s3Config != nil {
		images = service.NewImageStore(s3Config)
	}

	srv := server.New(cfg, analyzer, store, images, limiter)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
