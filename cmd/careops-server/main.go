package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/careops/careops/internal/config"
	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/domain/dispute"
	"github.com/careops/careops/internal/domain/equipment"
	"github.com/careops/careops/internal/domain/org"
	"github.com/careops/careops/internal/domain/payment"
	"github.com/careops/careops/internal/domain/provider"
	"github.com/careops/careops/internal/domain/servicerequest"
	"github.com/careops/careops/internal/domain/ticket"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/internal/platform/automation"
	"github.com/careops/careops/internal/platform/db"
	"github.com/careops/careops/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "careops-server",
		Short: "CareOps multi-tenant operations API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(orgCmd())
	rootCmd.AddCommand(automationCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
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
			pool, err := openPool(ctx, cfg)
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
			pool, err := openPool(ctx, cfg)
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

// orgCmd bootstraps tenants from the command line, bypassing the HTTP guards.
// Used for initial setup before any platform admin can sign in.
func orgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage organizations",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an organization, optionally with an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			slug, _ := cmd.Flags().GetString("slug")
			orgType, _ := cmd.Flags().GetString("type")
			status, _ := cmd.Flags().GetString("status")
			ownerEmail, _ := cmd.Flags().GetString("owner-email")
			ownerName, _ := cmd.Flags().GetString("owner-name")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := newLogger()
			runner := db.PoolRunner{Pool: pool}
			auditSvc := audit.NewService(audit.NewEntryRepoPG(pool), audit.NewRunRepoPG(pool), logger)
			users := org.NewUserRepoPG(pool)
			memberships := org.NewMembershipRepoPG(pool)
			orgSvc := org.NewService(org.NewOrgRepoPG(pool), users, memberships, auditSvc, runner)

			// CLI invocations act as the platform, not as any stored user.
			actor := &auth.Identity{PlatformRole: auth.PlatformRoleAdmin}

			o := &org.Organization{Name: name, Slug: slug, Type: orgType, Status: status}
			if err := orgSvc.CreateOrganization(ctx, actor, o); err != nil {
				return err
			}
			fmt.Printf("Created organization %s (%s)\n", o.ID, o.Slug)

			if ownerEmail == "" {
				return nil
			}
			err = runner.InTx(ctx, func(ctx context.Context) error {
				u, err := users.GetByEmail(ctx, ownerEmail)
				if err != nil {
					u = &org.User{Email: ownerEmail, Name: ownerName}
					if err := users.Create(ctx, u); err != nil {
						return err
					}
				}
				m := &org.Membership{OrganizationID: o.ID, UserID: u.ID, Role: auth.RoleOwner}
				if err := memberships.Create(ctx, m); err != nil {
					return err
				}
				_, err = auditSvc.Record(ctx, audit.Entry{
					OrganizationID: o.ID,
					ActorID:        uuid.Nil,
					Action:         "membership.created",
					ResourceType:   "membership",
					ResourceID:     m.ID,
					NewValues:      map[string]interface{}{"user_id": u.ID.String(), "role": auth.RoleOwner},
				})
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added %s as owner\n", ownerEmail)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Organization display name")
	createCmd.Flags().String("slug", "", "URL-safe identifier")
	createCmd.Flags().String("type", "hospital", "hospital or provider")
	createCmd.Flags().String("status", "", "Initial status (default trial)")
	createCmd.Flags().String("owner-email", "", "Email of the initial owner")
	createCmd.Flags().String("owner-name", "", "Display name of the initial owner")

	cmd.AddCommand(createCmd)
	return cmd
}

// automationCmd runs one rule immediately. External schedulers drive this
// instead of the in-process ticker loops when AUTOMATION_ENABLED is off.
func automationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "automation",
		Short: "Run automation rules",
	}

	runCmd := &cobra.Command{
		Use:   "run <rule>",
		Short: "Execute a single automation rule now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := newLogger()
			auditSvc := audit.NewService(audit.NewEntryRepoPG(pool), audit.NewRunRepoPG(pool), logger)
			runner := buildAutomation(pool, auditSvc, logger)
			return runner.RunByName(ctx, args[0])
		},
	}
	cmd.AddCommand(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered automation rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := buildAutomation(nil, nil, zerolog.Nop())
			for _, name := range runner.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
	cmd.AddCommand(listCmd)

	return cmd
}

func buildAutomation(pool *pgxpool.Pool, recorder audit.RunRecorder, logger zerolog.Logger) *automation.Runner {
	return automation.NewRunner(recorder, logger,
		&automation.StaleRequestRule{Requests: servicerequest.NewRepoPG(pool)},
		&automation.MaintenanceReminderRule{Maintenance: equipment.NewMaintenanceRepoPG(pool)},
		&automation.LowStockRule{Supplies: equipment.NewSupplyRepoPG(pool)},
		&automation.CertificationExpiryRule{Certifications: provider.NewCertificationRepoPG(pool)},
	)
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	runner := db.PoolRunner{Pool: pool}

	// Audit first: every other service records through it.
	auditSvc := audit.NewService(audit.NewEntryRepoPG(pool), audit.NewRunRepoPG(pool), logger)

	// Identity stack. The org repositories double as the directory behind
	// the resolver and guards.
	userRepo := org.NewUserRepoPG(pool)
	membershipRepo := org.NewMembershipRepoPG(pool)
	directory := org.NewDirectory(userRepo, membershipRepo)
	guard := auth.NewGuard(auth.NewResolver(directory), directory)

	// Domain services.
	orgSvc := org.NewService(org.NewOrgRepoPG(pool), userRepo, membershipRepo, auditSvc, runner)
	equipSvc := equipment.NewService(
		equipment.NewRepoPG(pool),
		equipment.NewFailureReportRepoPG(pool),
		equipment.NewMaintenanceRepoPG(pool),
		equipment.NewSupplyRepoPG(pool),
		auditSvc, runner)
	requestSvc := servicerequest.NewService(
		servicerequest.NewRepoPG(pool),
		servicerequest.NewQuoteRepoPG(pool),
		guard, auditSvc, runner)
	disputeSvc := dispute.NewService(dispute.NewRepoPG(pool), guard, auditSvc, runner)
	ticketSvc := ticket.NewService(ticket.NewRepoPG(pool), auditSvc, runner)
	paymentSvc := payment.NewService(
		payment.NewRepoPG(pool),
		payment.NewCounterRepoPG(pool),
		guard, auditSvc, runner)
	providerSvc := provider.NewService(
		provider.NewRepoPG(pool),
		provider.NewCertificationRepoPG(pool),
		auditSvc, runner)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	jwtCfg := auth.JWTConfig{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		JWKSURL:  cfg.AuthJWKSURL,
	}
	if cfg.AuthSigningKey != "" {
		jwtCfg.SigningKey = []byte(cfg.AuthSigningKey)
	}
	e.Use(auth.JWTMiddleware(jwtCfg))

	e.Use(middleware.AccessLog(logger))

	e.GET("/health", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	org.NewHandler(orgSvc, guard).RegisterRoutes(apiV1)
	equipment.NewHandler(equipSvc, guard).RegisterRoutes(apiV1)
	servicerequest.NewHandler(requestSvc, guard).RegisterRoutes(apiV1)
	dispute.NewHandler(disputeSvc, guard).RegisterRoutes(apiV1)
	ticket.NewHandler(ticketSvc, guard).RegisterRoutes(apiV1)
	payment.NewHandler(paymentSvc, guard).RegisterRoutes(apiV1)
	provider.NewHandler(providerSvc, guard).RegisterRoutes(apiV1)
	audit.NewHandler(auditSvc, guard).RegisterRoutes(apiV1)

	// Automation ticker loops. The scans are read-only, so running them in
	// the serving process is safe; set AUTOMATION_ENABLED=false when an
	// external scheduler drives `automation run` instead.
	if cfg.AutomationOn {
		autoCtx, autoCancel := context.WithCancel(ctx)
		defer autoCancel()
		buildAutomation(pool, auditSvc, logger).Start(autoCtx)
		logger.Info().Msg("automation runner started")
	}

	// Start server with graceful shutdown
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

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
