package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/config"
	"hospital-portal/internal/jobs"
	"hospital-portal/internal/logging"
	"hospital-portal/internal/metrics"
	"hospital-portal/internal/middleware"
	"hospital-portal/internal/models"
	"hospital-portal/internal/routes"
	"hospital-portal/internal/session"
	"hospital-portal/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-portal",
		Short: "Hospital management portal server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return runServer(cfg, logger)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the session table used by SESSION_STORE=mysql",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			db, err := models.OpenDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			if err := models.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info().Str("database", cfg.Database.Name).Msg("migrations applied")
			return nil
		},
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.Environment)
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file loaded")
	}
	return cfg, logger, nil
}

// openSessionStore connects the configured session backend. close releases it.
func openSessionStore(cfg *config.Config, logger zerolog.Logger) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("sessions stored in redis")
		return session.NewRedisStore(client, cfg.Session.MaxAge), func() { client.Close() }, nil

	case config.BackendMySQL:
		db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info().Str("database", cfg.Database.Name).Msg("sessions stored in mysql")
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return session.NewSQLStore(db, cfg.Session.MaxAge), closeDB, nil
	}

	logger.Warn().Msg("sessions kept in memory; they are lost on restart")
	return session.NewMemoryStore(cfg.Session.MaxAge), func() {}, nil
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	sessions, closeSessions, err := openSessionStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	portalMetrics := metrics.NewPortalMetrics(prometheus.DefaultRegisterer)
	api := apiclient.New(cfg.APIBaseURL,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		apiclient.WithLogger(logger.With().Str("component", "apiclient").Logger()),
		apiclient.WithMetrics(portalMetrics),
	)

	registry := store.NewRegistry(api, store.Options{
		Logger:  logger.With().Str("component", "store").Logger(),
		Metrics: portalMetrics,
	})
	manager := session.NewManager(sessions, api, logger.With().Str("component", "session").Logger())

	janitor := jobs.NewJanitor(sessions, registry, cfg.StoreIdleAfter, logger.With().Str("component", "janitor").Logger())
	if err := janitor.Start(cfg.JanitorSpec); err != nil {
		return err
	}
	defer janitor.Stop()

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Deps{
		Config:   cfg,
		Sessions: manager,
		Stores:   registry,
		Metrics:  routes.MetricsHandler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("port", cfg.Port).Str("backend", cfg.APIBaseURL).Msg("portal server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
