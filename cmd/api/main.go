package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/terravia/terravia-backend/internal/config"
	"github.com/terravia/terravia-backend/internal/logging"
	"github.com/terravia/terravia-backend/internal/media"
	"github.com/terravia/terravia-backend/internal/repository/minio"
	"github.com/terravia/terravia-backend/internal/repository/postgres"
	"github.com/terravia/terravia-backend/internal/repository/redisstore"
	"github.com/terravia/terravia-backend/internal/service"
	transport "github.com/terravia/terravia-backend/internal/transport/http"
	"github.com/terravia/terravia-backend/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	minioClient, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}
	storage := minio.NewStorage(minioClient, cfg.MinIOPublicURL, cfg.MinIOUseSSL)

	redisClient := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	localFavorites := redisstore.NewLocalFavoriteStore(redisClient)
	invalidator := redisstore.NewInvalidator(redisClient)

	favoriteRepo := postgres.NewFavoriteRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)

	identitySvc := service.NewIdentityService(util.NewJWTManager(cfg.JWTSecret, 24*time.Hour))
	favoriteSvc := service.NewFavoriteService(favoriteRepo, localFavorites, invalidator)
	reviewSvc := service.NewReviewService(reviewRepo, storage, invalidator, service.ReviewServiceConfig{
		Bucket:            cfg.MinIOBucketReviews,
		MaxImages:         cfg.ReviewMaxImages,
		MaxImageBytes:     cfg.ReviewImageMaxBytes,
		ImageProcessor:    media.NewImagingProcessor(),
		ImageMaxDimension: cfg.ReviewImageMaxDimension,
	})

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterFavorites(e, identitySvc, favoriteSvc)
	transport.RegisterReviews(e, identitySvc, reviewSvc)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
