package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/digital-diary-api/api/swagger"
	"github.com/noah-isme/digital-diary-api/internal/handler"
	"github.com/noah-isme/digital-diary-api/internal/repository"
	"github.com/noah-isme/digital-diary-api/internal/service"
	"github.com/noah-isme/digital-diary-api/pkg/cache"
	"github.com/noah-isme/digital-diary-api/pkg/config"
	"github.com/noah-isme/digital-diary-api/pkg/database"
	"github.com/noah-isme/digital-diary-api/pkg/export"
	"github.com/noah-isme/digital-diary-api/pkg/logger"
)

// @title Digital Diary API
// @version 1.0.0
// @description School journal: grade and attendance grids per subject and class
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
		if cfg.JWT.Secret == "dev_secret" {
			logr.Warn("JWT_SECRET is the development default")
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, "up"); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	redisClient := connectRedis(cfg, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	handlers := buildHandlers(cfg, db, cacheRepo, redisClient != nil, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logr, handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	case sig := <-shutdown:
		logr.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logr.Error("graceful shutdown failed", zap.Error(err))
			_ = srv.Close()
		}
	}
}

// connectRedis returns nil when caching is disabled or Redis is unreachable;
// the journal then reads straight from Postgres.
func connectRedis(cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, journal cache disabled", zap.Error(err))
		return nil
	}
	return client
}

type appHandlers struct {
	auth       *handler.AuthHandler
	journal    *handler.JournalHandler
	attendance *handler.AttendanceHandler
	grades     *handler.GradeHandler
	students   *handler.StudentHandler
	metrics    *handler.MetricsHandler
	authSvc    *service.AuthService
	metricsSvc *service.MetricsService
}

func buildHandlers(cfg *config.Config, db *sqlx.DB, cacheRepo *repository.CacheRepository, cacheEnabled bool, logr *zap.Logger) appHandlers {
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.JournalTTL, logr, cacheEnabled)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	journalSvc := service.NewJournalService(gradeRepo, cacheSvc, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, metricsSvc, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, studentRepo, cacheSvc, metricsSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, validate, logr)

	var pdfOpts []export.PDFOption
	if cfg.Export.PDFFontPath != "" {
		pdfOpts = append(pdfOpts, export.WithUTF8Font("journal", cfg.Export.PDFFontPath))
	}
	exportSvc := service.NewExportService(attendanceSvc, gradeSvc, metricsSvc, logr,
		export.NewCSVExporter(), export.NewPDFExporter(pdfOpts...), export.NewXLSXExporter("Journal"))

	checks := map[string]handler.Pinger{"database": db}
	if cacheEnabled {
		checks["cache"] = handler.PingFunc(cacheRepo.Ping)
	}

	return appHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		journal:    handler.NewJournalHandler(journalSvc),
		attendance: handler.NewAttendanceHandler(attendanceSvc, exportSvc),
		grades:     handler.NewGradeHandler(gradeSvc, exportSvc),
		students:   handler.NewStudentHandler(studentSvc),
		metrics:    handler.NewMetricsHandler(metricsSvc, checks, logr),
		authSvc:    authSvc,
		metricsSvc: metricsSvc,
	}
}
