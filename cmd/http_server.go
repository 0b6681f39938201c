package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal"
	"github.com/frahmantamala/farm-management/internal/auth"
	authPostgres "github.com/frahmantamala/farm-management/internal/auth/postgres"
	"github.com/frahmantamala/farm-management/internal/core/events"
	"github.com/frahmantamala/farm-management/internal/crops"
	cropsPostgres "github.com/frahmantamala/farm-management/internal/crops/postgres"
	"github.com/frahmantamala/farm-management/internal/crypto"
	"github.com/frahmantamala/farm-management/internal/registry"
	"github.com/frahmantamala/farm-management/internal/tenant"
	tenantPostgres "github.com/frahmantamala/farm-management/internal/tenant/postgres"
	"github.com/frahmantamala/farm-management/internal/transport/rest"
	"github.com/frahmantamala/farm-management/pkg/logger"

	"github.com/google/uuid"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config        *internal.Config
	DB            *sqlx.DB
	Router        *chi.Mux
	Registry      *registry.Registry
	AuthHandler   *auth.Handler
	Checkpoint    *auth.Checkpoint
	TenantHandler *tenant.Handler
	CropsHandler  *crops.Handler
	Logger        *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.Registry,
		deps.Registry,
		deps.AuthHandler,
		deps.Checkpoint,
		deps.TenantHandler,
		deps.CropsHandler,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.Registry.EvictAll()
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize platform database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to wrap platform database: %w", err)
	}

	cipher := crypto.NewCredentialCipher(config.Security.EncryptionSecret)
	tenantRepo := tenantPostgres.NewTenantRepository(gormDB)
	connRegistry := registry.New(tenantRepo, cipher, registry.DefaultOpener, log)

	bus := events.NewEventBus(log)
	subscribeRegistryEviction(bus, connRegistry, log)

	tenantService := tenant.NewService(tenantRepo, cipher, bus, log)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration)
	authService := auth.NewService(
		authPostgres.NewUserRepository(),
		authPostgres.NewAdministratorRepository(gormDB),
		tokenGen,
		config.Security.BCryptCost,
		log,
	)

	cropsService := crops.NewService(cropsPostgres.NewCropRepository(), log)

	return &Dependencies{
		Config:        config,
		DB:            db,
		Router:        chi.NewRouter(),
		Registry:      connRegistry,
		AuthHandler:   auth.NewHandler(authService, config.Security.AccessTokenDuration),
		Checkpoint:    auth.NewCheckpoint(log),
		TenantHandler: tenant.NewHandler(tenantService),
		CropsHandler:  crops.NewHandler(cropsService),
		Logger:        log,
	}, nil
}

// subscribeRegistryEviction ties tenant lifecycle events to connection
// teardown: deactivation and credential rotation both invalidate the cached
// connection before the publishing operation returns.
func subscribeRegistryEviction(bus *events.EventBus, connRegistry *registry.Registry, log *slog.Logger) {
	evict := func(ctx context.Context, event events.Event) error {
		raw, ok := events.TenantID(event)
		if !ok {
			return fmt.Errorf("event %s carries no tenant id", event.EventType())
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("event %s carries malformed tenant id %q", event.EventType(), raw)
		}
		connRegistry.Evict(tenantID)
		return nil
	}

	bus.Subscribe(events.TenantDeactivatedEvent, evict)
	bus.Subscribe(events.TenantCredentialsRotatedEvent, evict)
}

// initDB initializes the platform database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
