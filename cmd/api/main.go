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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Verti90/commun-api/api/swagger"
	"github.com/Verti90/commun-api/internal/handler"
	"github.com/Verti90/commun-api/internal/middleware"
	"github.com/Verti90/commun-api/internal/repository"
	"github.com/Verti90/commun-api/internal/schedule"
	"github.com/Verti90/commun-api/internal/service"
	"github.com/Verti90/commun-api/pkg/cache"
	"github.com/Verti90/commun-api/pkg/config"
	"github.com/Verti90/commun-api/pkg/database"
	"github.com/Verti90/commun-api/pkg/jobs"
	"github.com/Verti90/commun-api/pkg/logger"
	corsmiddleware "github.com/Verti90/commun-api/pkg/middleware/cors"
	reqidmiddleware "github.com/Verti90/commun-api/pkg/middleware/requestid"
	"github.com/Verti90/commun-api/pkg/storage"
)

// @title Commun API
// @version 1.0.0
// @description Residential community management backend
// @BasePath /api/v1
// @schemes http

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

	clock, err := schedule.NewClock(cfg.Schedule.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid community timezone", "timezone", cfg.Schedule.Timezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, listing cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	occurrenceRepo := repository.NewOccurrenceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	transportationRepo := repository.NewTransportationRepository(db)
	mealRepo := repository.NewMealRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	feedRepo := repository.NewFeedRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, profileRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "commun-api",
	})
	activitySvc := service.NewActivityService(activityRepo, occurrenceRepo, cacheRepo, clock,
		cfg.Schedule.DefaultWindowDays, cfg.Schedule.ListCacheTTL, validate, logr).WithMetrics(metricsSvc)
	transportationSvc := service.NewTransportationService(transportationRepo, clock,
		cfg.Transport.BlockHours, cfg.Transport.BlockCapacity, validate, logr)
	mealSvc := service.NewMealService(mealRepo, clock, validate, logr)
	menuSvc := service.NewMenuService(menuRepo, clock, validate, logr)
	profileSvc := service.NewProfileService(profileRepo, userRepo, validate, logr)
	maintenanceSvc := service.NewMaintenanceService(maintenanceRepo, validate, logr)
	alertSvc := service.NewAlertService(alertRepo, clock, validate, logr)
	billingSvc := service.NewBillingService(billingRepo, clock, validate, logr)
	feedSvc := service.NewFeedService(feedRepo, validate, logr)

	archive, err := storage.NewArchive(cfg.Export.ArchiveDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export archive", "error", err)
	}
	signer := storage.NewDownloadSigner(cfg.Export.SigningSecret, cfg.Export.DownloadTTL)
	reportSvc := service.NewReportService(occurrenceRepo, mealRepo, clock, logr).WithArchive(archive, signer)

	queue := jobs.NewQueue("background", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		Logger:     logr,
	})
	activitySvc.WithPrefetch(func(activityID string) {
		task := jobs.Task{
			Name: "prefetch-occurrences",
			Run: func(ctx context.Context) error {
				return activitySvc.PrefetchOccurrences(ctx, activityID)
			},
		}
		if err := queue.Enqueue(task); err != nil {
			logr.Sugar().Warnw("failed to enqueue prefetch", "activity_id", activityID, "error", err)
		}
	})

	authHandler := handler.NewAuthHandler(authSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	transportationHandler := handler.NewTransportationHandler(transportationSvc)
	mealHandler := handler.NewMealHandler(mealSvc, menuSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceSvc)
	alertHandler := handler.NewAlertHandler(alertSvc)
	billingHandler := handler.NewBillingHandler(billingSvc)
	feedHandler := handler.NewFeedHandler(feedSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/refresh", authHandler.Refresh)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/profile", profileHandler.Get)
		authed.PUT("/profile", profileHandler.Update)

		authed.GET("/activities", activityHandler.List)
		authed.GET("/activities/:id", activityHandler.Get)
		authed.POST("/activities/:id/signup", activityHandler.Signup)
		authed.POST("/activities/:id/unregister", activityHandler.Unregister)

		authed.GET("/transportation", transportationHandler.List)
		authed.POST("/transportation", transportationHandler.Create)
		authed.PATCH("/transportation/:id/status", transportationHandler.UpdateStatus)
		authed.DELETE("/transportation/:id", transportationHandler.Delete)

		authed.POST("/meals", mealHandler.CreateSelection)
		authed.GET("/meals/upcoming", mealHandler.Upcoming)
		authed.DELETE("/meals/:id", mealHandler.CancelSelection)
		authed.GET("/menus", mealHandler.ListMenus)

		authed.GET("/maintenance", maintenanceHandler.List)
		authed.POST("/maintenance", maintenanceHandler.Create)
		authed.DELETE("/maintenance/:id", maintenanceHandler.Delete)

		authed.GET("/alerts", alertHandler.ListAlerts)
		authed.GET("/wellness", alertHandler.ListReminders)
		authed.POST("/wellness/:id/complete", alertHandler.CompleteReminder)

		authed.GET("/billing", billingHandler.List)
		authed.GET("/feed", feedHandler.List)
	}

	// The token in the query string carries its own authentication.
	api.GET("/reports/exports", reportHandler.DownloadExport)

	staff := api.Group("")
	staff.Use(middleware.JWT(authSvc), middleware.RequireStaff())
	{
		staff.POST("/activities", activityHandler.Create)
		staff.PUT("/activities/:id", activityHandler.Update)
		staff.DELETE("/activities/:id", activityHandler.Delete)

		staff.POST("/menus", mealHandler.UpsertMenu)
		staff.DELETE("/menus/:id", mealHandler.RemoveMenu)

		staff.PATCH("/maintenance/:id/status", maintenanceHandler.UpdateStatus)

		staff.POST("/alerts", alertHandler.CreateAlert)
		staff.DELETE("/alerts/:id", alertHandler.DeleteAlert)
		staff.POST("/wellness", alertHandler.CreateReminder)
		staff.DELETE("/wellness/:id", alertHandler.DeleteReminder)

		staff.POST("/billing", billingHandler.Create)
		staff.POST("/billing/:id/paid", billingHandler.MarkPaid)

		staff.POST("/feed", feedHandler.Create)
		staff.DELETE("/feed/:id", feedHandler.Delete)

		staff.GET("/residents", profileHandler.ListResidents)

		staff.GET("/reports/activities", reportHandler.ActivityReport)
		staff.GET("/reports/meals", reportHandler.MealReport)
		staff.GET("/reports/activities/export", reportHandler.ExportActivityReport)
		staff.GET("/reports/meals/export", reportHandler.ExportMealReport)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	defer queue.Stop()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if deleted, err := archive.CleanupOlderThan(cfg.Export.RetentionTTL); err != nil {
					logr.Sugar().Warnw("export archive cleanup failed", "error", err)
				} else if len(deleted) > 0 {
					logr.Sugar().Infow("export archive cleaned", "deleted", len(deleted))
				}
			}
		}
	}()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}
