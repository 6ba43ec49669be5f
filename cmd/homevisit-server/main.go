package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/homevisit/homevisit/internal/config"
	"github.com/homevisit/homevisit/internal/domain/professional"
	"github.com/homevisit/homevisit/internal/domain/session"
	"github.com/homevisit/homevisit/internal/domain/visit"
	"github.com/homevisit/homevisit/internal/platform/auth"
	"github.com/homevisit/homevisit/internal/platform/db"
	"github.com/homevisit/homevisit/internal/platform/docstore"
	"github.com/homevisit/homevisit/internal/platform/middleware"
	"github.com/homevisit/homevisit/internal/platform/notification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "homevisit-server",
		Short: "Home-visit clinical records API server",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// resolveSigningKey returns the configured session signing key, or a fresh
// random one when none is configured. The second return reports whether the
// key is ephemeral.
func resolveSigningKey(configured string) ([]byte, bool, error) {
	if configured != "" {
		return []byte(configured), false, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, false, fmt.Errorf("generate signing key: %w", err)
	}
	return []byte(hex.EncodeToString(buf)), true, nil
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

	// Session token signing key. Development gets an ephemeral one when
	// unset; Validate already rejects that in production.
	signingKey, ephemeral, err := resolveSigningKey(cfg.SessionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve session signing key")
	}
	if ephemeral {
		logger.Warn().Msg("SESSION_SIGNING_KEY not set; using ephemeral key, sessions will not survive restarts")
	}
	issuer := auth.NewTokenIssuer(signingKey)

	// Document store backend
	ctx := context.Background()
	var store docstore.Store
	if cfg.UsesPostgres() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		pgStore, err := docstore.NewPGStore(ctx, pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize document store")
		}
		store = pgStore
		logger.Info().Msg("using postgres document store")
	} else {
		fileStore, err := docstore.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize document store")
		}
		store = fileStore
		logger.Info().Str("dir", cfg.DataDir).Msg("using file document store")
	}

	notifier := notification.NewLogNotifier(logger)

	// Domain stores
	sessions, err := session.NewStore(ctx, store, notifier, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load session state")
	}
	ledger, err := visit.NewLedger(ctx, store, notifier)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load visit ledger")
	}
	directory, err := professional.NewDirectory(ctx, store, notifier)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load professional directory")
	}

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
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Session validation, skipping the public endpoints
	e.Use(auth.SessionMiddleware(issuer, auth.PublicPaths(
		"/health",
		"/api/v1/login",
		"/api/v1/register",
	)))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// API routes
	apiV1 := e.Group("/api/v1")

	sessionHandler := session.NewHandler(sessions, issuer, notifier)
	sessionHandler.RegisterRoutes(apiV1, apiV1)

	visitHandler := visit.NewHandler(ledger, notifier)
	visitHandler.RegisterRoutes(apiV1)

	professionalHandler := professional.NewHandler(directory, notifier)
	professionalHandler.RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	return nil
}
