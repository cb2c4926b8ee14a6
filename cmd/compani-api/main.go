package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/sophiemoustard/compani-api-sub005/internal/handler"
	"github.com/sophiemoustard/compani-api-sub005/internal/repository"
	"github.com/sophiemoustard/compani-api-sub005/internal/service"
	"github.com/sophiemoustard/compani-api-sub005/pkg/cache"
	"github.com/sophiemoustard/compani-api-sub005/pkg/config"
	"github.com/sophiemoustard/compani-api-sub005/pkg/database"
	"github.com/sophiemoustard/compani-api-sub005/pkg/logger"
)

// @title Compani course API
// @version 1.0.0
// @description Course membership ledger, attendance reconciliation and course authorization
// @BasePath /api/v1
// @schemes http https

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	location, err := time.LoadLocation(cfg.Ledger.Timezone)
	if err != nil {
		return fmt.Errorf("load ledger timezone %q: %w", cfg.Ledger.Timezone, err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	mongoClient, mongoDB, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background()) //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Ledger.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis, 5*time.Second)
		if err != nil {
			logr.Warn("redis unavailable, history cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	historyRepo := repository.NewCourseHistoryRepository(mongoDB.Collection(cfg.Mongo.CourseHistoryCollection))
	if err := historyRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	app := buildApp(appDeps{
		cfg:         cfg,
		logger:      logr,
		location:    location,
		db:          db,
		mongo:       mongoClient,
		redis:       redisClient,
		historyRepo: historyRepo,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type appDeps struct {
	cfg         *config.Config
	logger      *zap.Logger
	location    *time.Location
	db          *sqlx.DB
	mongo       *mongo.Client
	redis       *redis.Client
	historyRepo *repository.CourseHistoryRepository
}

func buildApp(deps appDeps) *gin.Engine {
	cfg, logr := deps.cfg, deps.logger
	validate := validator.New()
	metrics := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(deps.db)
	slotRepo := repository.NewCourseSlotRepository(deps.db)
	attendanceRepo := repository.NewAttendanceRepository(deps.db)
	companyRepo := repository.NewCompanyRepository(deps.db)
	userCompanyRepo := repository.NewUserCompanyRepository(deps.db)
	billingRepo := repository.NewBillingRepository(deps.db)
	cacheRepo := repository.NewCacheRepository(deps.redis)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Ledger.CacheTTL, logr, cfg.Ledger.CacheEnabled && deps.redis != nil)
	historySvc := service.NewCourseHistoryService(deps.historyRepo, cacheSvc, metrics, logr, service.CourseHistoryConfig{
		PageSize: cfg.Ledger.PageSize,
		Location: deps.location,
		CacheTTL: cfg.Ledger.CacheTTL,
	})
	resolver := service.NewMembershipResolver(userCompanyRepo, historySvc, metrics, logr)
	authz := service.NewAuthorizationService(courseRepo, resolver, metrics, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userRepo := repository.NewUserRepository(deps.db)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, slotRepo, courseRepo, companyRepo, resolver, userRepo, authz, metrics, validate, logr)
	courseSvc := service.NewCourseService(service.CourseServiceDeps{
		Courses:     courseRepo,
		Slots:       slotRepo,
		Companies:   companyRepo,
		Billing:     billingRepo,
		Attendances: attendanceRepo,
		History:     historySvc,
		Resolver:    resolver,
		Authz:       authz,
		Validator:   validate,
		Logger:      logr,
		Location:    deps.location,
	})

	checks := []handler.HealthCheck{
		{Name: "postgres", Ping: deps.db.PingContext},
		{Name: "mongo", Ping: func(ctx context.Context) error { return deps.mongo.Ping(ctx, readpref.Primary()) }},
	}
	if deps.redis != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error { return deps.redis.Ping(ctx).Err() }})
	}

	return newRouter(cfg, logr, routerDeps{
		auth:        authSvc,
		authz:       authz,
		metrics:     metrics,
		histories:   handler.NewCourseHistoryHandler(historySvc),
		attendances: handler.NewAttendanceHandler(attendanceSvc),
		courses:     handler.NewCourseHandler(courseSvc),
		observe:     handler.NewMetricsHandler(metrics, checks...),
	})
}
