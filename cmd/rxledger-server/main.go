package main

import (
	"context"
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

	"github.com/rxledger/rxledger/internal/config"
	"github.com/rxledger/rxledger/internal/domain/audit"
	"github.com/rxledger/rxledger/internal/domain/consent"
	"github.com/rxledger/rxledger/internal/domain/dispense"
	"github.com/rxledger/rxledger/internal/domain/emergency"
	"github.com/rxledger/rxledger/internal/domain/identity"
	"github.com/rxledger/rxledger/internal/domain/order"
	"github.com/rxledger/rxledger/internal/domain/prescription"
	"github.com/rxledger/rxledger/internal/platform/auth"
	"github.com/rxledger/rxledger/internal/platform/db"
	"github.com/rxledger/rxledger/internal/platform/middleware"
	"github.com/rxledger/rxledger/internal/platform/otp"
	"github.com/rxledger/rxledger/internal/platform/safety"
)

// emergencyGauge adapts the session controller to the ActiveFor interface
// the prescription and dispense handlers consume.
type emergencyGauge struct {
	ctrl *emergency.Controller
}

func (g emergencyGauge) ActiveFor(actorID string) bool {
	return g.ctrl.Check(actorID) == nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "rxledger-server",
		Short: "Digital prescription ledger API server",
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
		Short: "Start the API server",
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

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

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
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Emergency-Override"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{SigningKey: []byte(cfg.JWTSecret)}))
	}

	// Access audit middleware
	e.Use(middleware.Access(logger))

	// API group with rate limiting
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Shared platform pieces
	runner := db.NewPoolRunner(pool)
	verifier := otp.NewStatic(cfg.ConsentCode)
	safetyClient := safety.NewClient(cfg.SafetyAPIURL,
		time.Duration(cfg.SafetyTimeoutSeconds)*time.Second, logger)
	emergencyCtrl := emergency.NewController(
		time.Duration(cfg.EmergencyLeaseSeconds) * time.Second)

	// -- Register Domain Handlers --

	// Identity directory
	identityRepo := identity.NewRepo(pool)
	identitySvc := identity.NewService(identityRepo)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)

	// Emergency sessions
	emergency.NewHandler(emergencyCtrl).RegisterRoutes(apiV1)

	// Audit trail
	auditRepo := audit.NewRepo(pool)
	auditSvc := audit.NewService(auditRepo)
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)

	// Consent gate
	consentSvc := consent.NewService(verifier, identitySvc, identitySvc, emergencyCtrl, auditSvc)
	consent.NewHandler(consentSvc).RegisterRoutes(apiV1)

	// Prescription ledger
	prescriptionRepo := prescription.NewRepo(pool)
	prescriptionSvc := prescription.NewService(prescriptionRepo)
	prescription.NewHandler(prescriptionSvc, emergencyGauge{ctrl: emergencyCtrl}).RegisterRoutes(apiV1)

	// Order queue
	orderRepo := order.NewRepo(pool)
	orderSvc := order.NewService(orderRepo, prescriptionSvc)
	order.NewHandler(orderSvc).RegisterRoutes(apiV1)

	// Dispense ledger
	dispenseRepo := dispense.NewRepo(pool)
	dispenseSvc := dispense.NewService(dispenseRepo, prescriptionSvc, orderSvc, runner)
	dispense.NewHandler(dispenseSvc, emergencyGauge{ctrl: emergencyCtrl}, safetyClient).RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
