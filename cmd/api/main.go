package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/harpaljob/harpaljob-api/internal/auth"
	"github.com/harpaljob/harpaljob-api/internal/config"
	"github.com/harpaljob/harpaljob-api/internal/database"
	"github.com/harpaljob/harpaljob-api/internal/handlers"
	"github.com/harpaljob/harpaljob-api/internal/logging"
	"github.com/harpaljob/harpaljob-api/internal/push"
	"github.com/harpaljob/harpaljob-api/internal/services"
)

func main() {
	// 1. Environment & configuration. A missing .env is fine in
	// containerized deployments where everything comes from the process
	// environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("info")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.LogLevel)

	// 2. Database. Connect also runs migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	// 3. Push gateway. Failure here degrades notifications to no-op
	// instead of taking the API down.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var gateway push.Gateway
	if cfg.FirebaseCredentials == "" {
		log.Warn().Msg("FIREBASE_CREDENTIALS not set, push notifications disabled")
	} else if fcm, err := push.NewFCMGateway(ctx, cfg.FirebaseCredentials); err != nil {
		log.Warn().Err(err).Msg("firebase init failed, push notifications disabled")
	} else {
		gateway = fcm
	}

	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		log.Warn().Err(err).Str("tz", cfg.SchedulerTimezone).Msg("unknown timezone, falling back to UTC")
		loc = time.UTC
	}

	// 4. Services.
	tokens := auth.NewManager(cfg.JWTSecret)
	userService := services.NewUserService(db, log)
	categoryService := services.NewCategoryService(db, log)
	companyService := services.NewCompanyService(db, log)
	jobService := services.NewJobService(db, log)
	notificationService := services.NewNotificationService(db, gateway, loc, log)
	applicationService := services.NewApplicationService(db, notificationService, log)
	scheduler := services.NewSchedulerService(notificationService, loc, log)

	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}
	defer scheduler.Stop()

	// 5. Router, middleware, CORS.
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestID(), handlers.AccessLog(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	handlers.Register(r, handlers.Deps{
		Tokens:        tokens,
		Auth:          handlers.NewAuthHandler(userService, notificationService, tokens),
		Jobs:          handlers.NewJobHandler(jobService),
		Categories:    handlers.NewCategoryHandler(categoryService),
		Companies:     handlers.NewCompanyHandler(companyService),
		Applications:  handlers.NewApplicationHandler(applicationService),
		Notifications: handlers.NewNotificationHandler(scheduler),
	})

	// 6. Serve until interrupted, then drain in-flight requests.
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
		os.Exit(1)
	}
}
