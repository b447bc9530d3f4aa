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

	"github.com/healthecon/healthecon/internal/config"
	"github.com/healthecon/healthecon/internal/domain/analytics"
	"github.com/healthecon/healthecon/internal/domain/outcomes"
	"github.com/healthecon/healthecon/internal/domain/pricing"
	"github.com/healthecon/healthecon/internal/domain/recommendations"
	"github.com/healthecon/healthecon/internal/domain/resources"
	"github.com/healthecon/healthecon/internal/platform/auth"
	"github.com/healthecon/healthecon/internal/platform/db"
	"github.com/healthecon/healthecon/internal/platform/middleware"
	"github.com/healthecon/healthecon/internal/seed"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "healthecon-server",
		Short: "Healthcare economics API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

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

	// migrate up
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

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	// migrate status
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

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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

	// migrate down - keep as warning
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Write a forward migration that reverses the change instead.")
			return nil
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a small demo data set",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

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

			seeder := seed.NewSeeder(pool,
				pricing.NewCategoryRepoPG(pool), pricing.NewDrugRepoPG(pool),
				pricing.NewRegionRepoPG(pool), pricing.NewPriceRepoPG(pool),
				resources.NewOrganizationRepoPG(pool), resources.NewDepartmentRepoPG(pool),
				resources.NewResourceCategoryRepoPG(pool), resources.NewResourceRepoPG(pool),
				resources.NewAllocationRepoPG(pool),
				outcomes.NewOutcomeCategoryRepoPG(pool), outcomes.NewOutcomeRepoPG(pool),
				outcomes.NewTreatmentRepoPG(pool), outcomes.NewMeasurementRepoPG(pool),
				logger)
			if err := seeder.Run(ctx); err != nil {
				return err
			}
			fmt.Println("Demo data ready.")
			return nil
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
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health checks are registered before auth so probes work unauthenticated.
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// API group with auth and rate limiting
	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		jwtCfg := auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}
		if cfg.JWTSigningKey != "" {
			jwtCfg.SigningKey = []byte(cfg.JWTSigningKey)
		}
		apiV1.Use(auth.JWTMiddleware(jwtCfg))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Repositories
	drugCategoryRepo := pricing.NewCategoryRepoPG(pool)
	drugRepo := pricing.NewDrugRepoPG(pool)
	regionRepo := pricing.NewRegionRepoPG(pool)
	priceRepo := pricing.NewPriceRepoPG(pool)

	orgRepo := resources.NewOrganizationRepoPG(pool)
	departmentRepo := resources.NewDepartmentRepoPG(pool)
	resourceCategoryRepo := resources.NewResourceCategoryRepoPG(pool)
	resourceRepo := resources.NewResourceRepoPG(pool)
	allocationRepo := resources.NewAllocationRepoPG(pool)

	outcomeCategoryRepo := outcomes.NewOutcomeCategoryRepoPG(pool)
	outcomeRepo := outcomes.NewOutcomeRepoPG(pool)
	treatmentRepo := outcomes.NewTreatmentRepoPG(pool)
	measurementRepo := outcomes.NewMeasurementRepoPG(pool)

	recTypeRepo := recommendations.NewTypeRepoPG(pool)
	recRepo := recommendations.NewRecommendationRepoPG(pool)
	actionRepo := recommendations.NewActionRepoPG(pool)
	insightRepo := recommendations.NewInsightRepoPG(pool)

	analyticsRepo := analytics.NewRepoPG(pool, priceRepo)

	// Services
	pricingSvc := pricing.NewService(drugCategoryRepo, drugRepo, regionRepo, priceRepo)
	pricingImporter := pricing.NewImporter(drugRepo, regionRepo, priceRepo, logger)

	resourcesSvc := resources.NewService(orgRepo, departmentRepo, resourceCategoryRepo, resourceRepo, allocationRepo)

	outcomesSvc := outcomes.NewService(outcomeCategoryRepo, outcomeRepo, treatmentRepo, measurementRepo)
	outcomesImporter := outcomes.NewImporter(outcomeRepo, treatmentRepo, measurementRepo, logger)

	recSvc := recommendations.NewService(recTypeRepo, recRepo, actionRepo, insightRepo)

	generator := analytics.NewGenerator(pool, analyticsRepo, recTypeRepo, recRepo, actionRepo, insightRepo, logger)
	analyticsSvc := analytics.NewService(analyticsRepo, generator)

	// Handlers
	pricing.NewHandler(pricingSvc, pricingImporter).RegisterRoutes(apiV1)
	resources.NewHandler(resourcesSvc).RegisterRoutes(apiV1)
	outcomes.NewHandler(outcomesSvc, outcomesImporter).RegisterRoutes(apiV1)
	recommendations.NewHandler(recSvc).RegisterRoutes(apiV1)
	analytics.NewHandler(analyticsSvc).RegisterRoutes(apiV1)

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
