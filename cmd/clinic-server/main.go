package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/renalcare/renalcare/internal/config"
	"github.com/renalcare/renalcare/internal/domain/diagnostics"
	"github.com/renalcare/renalcare/internal/domain/identity"
	"github.com/renalcare/renalcare/internal/domain/medication"
	"github.com/renalcare/renalcare/internal/domain/messaging"
	"github.com/renalcare/renalcare/internal/domain/scheduling"
	"github.com/renalcare/renalcare/internal/platform/assistant"
	"github.com/renalcare/renalcare/internal/platform/auth"
	"github.com/renalcare/renalcare/internal/platform/db"
	"github.com/renalcare/renalcare/internal/platform/middleware"
	"github.com/renalcare/renalcare/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Kidney-care clinic API server",
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
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			m := db.NewMigrator(cfg.DatabaseURL, migrations.FS())
			return m.Up(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			m := db.NewMigrator(cfg.DatabaseURL, migrations.FS())
			return m.Status(cmd.Context())
		},
	})

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Repositories and services
	sessions := auth.NewSessionRegistry()
	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	identitySvc := identity.NewService(
		identity.NewUserRepoPG(pool),
		identity.NewPatientRepoPG(pool),
		sessions,
		[]byte(cfg.TokenSecret),
		runTx,
	)
	messagingSvc := messaging.NewService(messaging.NewMessageRepoPG(pool), identitySvc)
	schedulingSvc := scheduling.NewService(
		scheduling.NewAppointmentRepoPG(pool),
		scheduling.NewDialysisSessionRepoPG(pool),
	)
	medicationSvc := medication.NewService(
		medication.NewMedicationRepoPG(pool),
		medication.NewPrescriptionRepoPG(pool),
	)
	diagnosticsSvc := diagnostics.NewService(diagnostics.NewLabResultRepoPG(pool))
	assistantSvc := assistant.NewService(
		assistant.NewClient(cfg.AssistantURL, cfg.AssistantAPIKey, cfg.AssistantModel),
		assistant.NewHistoryRepoPG(pool),
	)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Route groups: /api is public, everything under the guard requires a
	// valid session cookie.
	api := e.Group("/api")
	protected := e.Group("/api", auth.SessionGuard([]byte(cfg.TokenSecret), identitySvc))

	identityHandler := identity.NewHandler(identitySvc, cfg.IsProduction())
	identityHandler.RegisterAuthRoutes(api)
	identityHandler.RegisterRoutes(protected)

	messaging.NewHandler(messagingSvc).RegisterRoutes(protected)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(protected)
	medication.NewHandler(medicationSvc).RegisterRoutes(protected)
	diagnostics.NewHandler(diagnosticsSvc).RegisterRoutes(protected)
	assistant.NewHandler(assistantSvc, logger).RegisterRoutes(protected)

	// DB health check endpoint
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
