package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/digital-diary-api/internal/repository"
	"github.com/noah-isme/digital-diary-api/internal/service"
	"github.com/noah-isme/digital-diary-api/pkg/cache"
	"github.com/noah-isme/digital-diary-api/pkg/config"
	"github.com/noah-isme/digital-diary-api/pkg/database"
	"github.com/noah-isme/digital-diary-api/pkg/logger"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, validator.New(), logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	redisClient := connectRedis(cfg, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, nil, cfg.Cache.JournalTTL, logr, redisClient != nil)

	seedSvc := service.NewSeedService(
		repository.NewStudentRepository(db),
		repository.NewGradeRepository(db),
		repository.NewAttendanceRepository(db),
		userRepo,
		cacheSvc,
		cfg.Seed,
		nil,
		logr,
	)

	cli := &commandLine{
		users:  authSvc,
		seeder: seedSvc,
		migrate: func(command string, args ...string) error {
			return database.Migrate(db, command, args...)
		},
		out: os.Stdout,
	}

	if err := cli.run(context.Background(), os.Args); err != nil {
		if errors.Is(err, errHelp) {
			return 2
		}
		logr.Error("command failed", zap.Error(err))
		return 1
	}
	return 0
}

// connectRedis returns nil when caching is off or Redis is down. Seeding then
// leaves stale journal lists to expire on their own.
func connectRedis(cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, journal cache not invalidated", zap.Error(err))
		return nil
	}
	return client
}
