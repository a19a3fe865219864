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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-portal-api/api/swagger"
	"github.com/noah-isme/campus-portal-api/internal/handler"
	"github.com/noah-isme/campus-portal-api/internal/middleware"
	"github.com/noah-isme/campus-portal-api/internal/repository"
	"github.com/noah-isme/campus-portal-api/internal/router"
	"github.com/noah-isme/campus-portal-api/internal/service"
	"github.com/noah-isme/campus-portal-api/pkg/cache"
	"github.com/noah-isme/campus-portal-api/pkg/config"
	"github.com/noah-isme/campus-portal-api/pkg/database"
	"github.com/noah-isme/campus-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-portal-api/pkg/storage"
)

// @title Campus Portal API
// @version 1.0.0
// @description University portal backend: accounts, enrollment, fees, marks, attendance and support.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		logr.Info("database migrations applied")
	}

	metrics := service.NewMetricsService()
	checks := []handler.ReadinessCheck{{Name: "postgres", Probe: db.PingContext}}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			redisCache := repository.NewCacheRepository(client, cfg.Redis.KeyPrefix, logr)
			cacheRepo = redisCache
			checks = append(checks, handler.ReadinessCheck{Name: "redis", Probe: redisCache.Ping})
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	app, scheduler, err := buildHandlers(cfg, db, cacheSvc, metrics, logr, checks)
	if err != nil {
		return err
	}
	if scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	router.Register(r, cfg.APIPrefix, app.tokens, app.handlers)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
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
		logr.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("could not stop server gracefully", zap.Error(err))
		return srv.Close()
	}
	return nil
}

type application struct {
	tokens   middleware.TokenValidator
	handlers router.Handlers
}

func buildHandlers(cfg *config.Config, db *sqlx.DB, cacheSvc *service.CacheService, metrics *service.MetricsService, logr *zap.Logger, checks []handler.ReadinessCheck) (*application, *service.IntegrityScheduler, error) {
	validate := validator.New()

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	fees := repository.NewFeeRepository(db)
	marks := repository.NewMarkRepository(db)
	attendance := repository.NewAttendanceRepository(db)
	timetables := repository.NewTimetableRepository(db)
	appointments := repository.NewAppointmentRepository(db)
	tickets := repository.NewTicketRepository(db)
	announcements := repository.NewAnnouncementRepository(db)

	feeSvc := service.NewFeeService(fees, users, cacheSvc, cfg.Fees.DefaultAmount, validate, logr)
	authSvc := service.NewAuthService(users, feeSvc, cacheSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		TeacherSecretKey:  cfg.Signup.TeacherSecretKey,
	})
	cascadeSvc := service.NewCascadeService(repository.NewCascadeRepository(db), users, cacheSvc, metrics, logr)

	var exportSvc *service.FeeExportService
	var exportStore *storage.LocalStorage
	if cfg.Exports.StorageDir != "" {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		exportStore = store
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewFeeExportService(feeSvc, store, signer, cfg.APIPrefix+"/management/fees/download", validate, logr)
	}

	var scheduler *service.IntegrityScheduler
	integrityHandler := handler.NewIntegrityHandler(nil)
	if cfg.Integrity.Enabled {
		sweeper := service.NewIntegrityService(repository.NewIntegrityRepository(db), cacheSvc, metrics, logr)
		schedCfg := service.IntegritySchedulerConfig{
			Schedule:   cfg.Integrity.Schedule,
			Workers:    cfg.Integrity.Workers,
			Retries:    cfg.Integrity.Retries,
			RetryDelay: 5 * time.Second,
			ExportTTL:  cfg.Exports.SignedURLTTL,
		}
		if exportStore != nil {
			scheduler = service.NewIntegrityScheduler(sweeper, exportStore, schedCfg, logr)
		} else {
			scheduler = service.NewIntegrityScheduler(sweeper, nil, schedCfg, logr)
		}
		integrityHandler = handler.NewIntegrityHandler(scheduler)
	}

	feeHandler := handler.NewFeeHandler(feeSvc, nil)
	if exportSvc != nil {
		feeHandler = handler.NewFeeHandler(feeSvc, exportSvc)
	}

	studentSvc := service.NewStudentService(users, feeSvc, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courses, users, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(courses, users, metrics, validate, logr)
	markSvc := service.NewMarkService(marks, users, courses, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendance, users, courses, cacheSvc, validate, logr)
	analyticsSvc := service.NewAnalyticsService(marks, attendance, cacheSvc, logr)
	timetableSvc := service.NewTimetableService(timetables, users, courses, validate, logr)
	supportSvc := service.NewSupportService(appointments, tickets, users, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcements, validate, logr)

	return &application{
		tokens: authSvc,
		handlers: router.Handlers{
			Auth:         handler.NewAuthHandler(authSvc),
			Students:     handler.NewStudentHandler(studentSvc, cascadeSvc),
			Courses:      handler.NewCourseHandler(courseSvc, cascadeSvc),
			Enrollment:   handler.NewEnrollmentHandler(enrollmentSvc),
			Fees:         feeHandler,
			Academic:     handler.NewAcademicHandler(markSvc, attendanceSvc),
			Analytics:    handler.NewAnalyticsHandler(analyticsSvc),
			Timetable:    handler.NewTimetableHandler(timetableSvc),
			Support:      handler.NewSupportHandler(supportSvc),
			Announcement: handler.NewAnnouncementHandler(announcementSvc),
			Integrity:    integrityHandler,
			Ops:          handler.NewMetricsHandler(metrics, checks...),
		},
	}, scheduler, nil
}
