package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/booking"
	"github.com/iliyamo/space-reservation/internal/config"
	"github.com/iliyamo/space-reservation/internal/database"
	"github.com/iliyamo/space-reservation/internal/handler"
	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/queue"
	"github.com/iliyamo/space-reservation/internal/repository"
	"github.com/iliyamo/space-reservation/internal/router"
	"github.com/iliyamo/space-reservation/internal/storage"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	spaces := repository.NewSpaceRepo(db)
	reservas := repository.NewReservationRepo(db)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Users:    handler.NewUserHandler(cfg, users),
		Spaces:   handler.NewSpaceHandler(spaces, blobs),
		Reservas: handler.NewReservationHandler(reservas, spaces, booking.NewValidator()),
	}

	e := echo.New()
	e.HideBanner = true

	// Redis backs the response cache and the rate limiter; both degrade
	// to pass-through middleware when the client is unavailable.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	h.CacheEspacios = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, h, cfg.JWTSecret)

	// Consume reservation confirmations in the background; the consumer
	// reconnects on its own if the broker drops.
	go func() {
		if err := queue.StartReservaConsumer(); err != nil {
			log.Printf("rabbitmq: consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, storage=%s)", addr, cfg.Env, cfg.StorageDriver)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// newBlobStore selects the image backend from configuration.
func newBlobStore(cfg config.Config) (storage.BlobStore, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		return storage.NewS3Store(context.Background(), storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		})
	default:
		return storage.NewDiskStore(cfg.ImageDir)
	}
}
