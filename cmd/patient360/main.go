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

	"github.com/patient360/backend/internal/config"
	"github.com/patient360/backend/internal/domain/meeting"
	"github.com/patient360/backend/internal/domain/patient"
	"github.com/patient360/backend/internal/domain/plan"
	"github.com/patient360/backend/internal/platform/calendar"
	"github.com/patient360/backend/internal/platform/mailer"
	"github.com/patient360/backend/internal/platform/middleware"
	"github.com/patient360/backend/internal/platform/store"
	"github.com/patient360/backend/internal/platform/whatsapp"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "patient360",
		Short: "Patient360 engagement API server",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Patient360 API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
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
	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer client.Disconnect(context.Background())
	logger.Info().Msg("connected to mongodb")

	patients := patient.NewMongoRepository(store.Collection(client, cfg.DatabaseName, cfg.CollectionName))

	// Messaging
	registry := whatsapp.NewTemplateRegistry()
	gateway := whatsapp.NewClient(cfg.ADAAPIURL, cfg.ADAAPIKey, cfg.WASender, logger)

	// Email
	mail, err := mailer.New(mailer.Config{
		Server:   cfg.SMTPServer,
		Port:     cfg.SMTPPort,
		Address:  cfg.EmailAddress,
		Password: cfg.EmailPassword,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build smtp client")
	}

	// Calendar credentials are only needed for meeting scheduling; build
	// the client on first use so the rest of the API runs without them.
	cal := calendar.NewLazy(func(ctx context.Context) (calendar.MeetCreator, error) {
		return calendar.NewGoogle(ctx, cfg.GoogleCredentialsFile, cfg.GoogleTokenFile, cfg.MeetingTimezone, logger)
	})

	loc, err := time.LoadLocation(cfg.MeetingTimezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.MeetingTimezone).Msg("invalid meeting timezone")
	}

	// Domain services
	planSvc := plan.NewService(patients, gateway, registry, logger)
	meetingSvc := meeting.NewService(patients, cal, mail, loc, logger)

	// Deferred plan deliveries run until shutdown; pending sends are dropped.
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	go planSvc.Start(schedCtx)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Routes
	api := e.Group("/api")
	patient.NewHandler(patients).RegisterRoutes(api)
	plan.NewHandler(planSvc).RegisterRoutes(api)
	meeting.NewHandler(meetingSvc).RegisterRoutes(api)

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
	if pending := planSvc.PendingDeliveries(); pending > 0 {
		logger.Warn().Int("pending", pending).Msg("dropping pending plan deliveries")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
