// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "qrispay-ledger/internal/api"
	"qrispay-ledger/internal/api/handler"
	"qrispay-ledger/internal/config"
	"qrispay-ledger/internal/events"
	"qrispay-ledger/internal/events/kafka"
	"qrispay-ledger/internal/repository"
	"qrispay-ledger/internal/repository/memory"
	"qrispay-ledger/internal/repository/postgres"
	"qrispay-ledger/internal/service"
	"qrispay-ledger/internal/util"
	"qrispay-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB      // nil when the memory driver is active
	Store  *memory.Store // nil when the postgres driver is active

	// Repositories
	AccountRepository    repository.AccountRepository
	TopUpRepository      repository.TopUpRepository
	WithdrawalRepository repository.WithdrawalRepository

	// Events
	Publisher events.Publisher

	// Services
	LedgerService service.LedgerService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "storage_driver", cfg.StorageDriver)

	// 3. Initialize storage + repositories
	var (
		dbExecutor repository.DBExecutor
		beginTx    db.BeginTxFunc
	)
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		database, err := db.NewPostgresDB(cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = database
		app.Logger.Info("Database connection established.")

		app.AccountRepository = postgres.NewAccountRepository(database)
		app.TopUpRepository = postgres.NewTopUpRepository(database)
		app.WithdrawalRepository = postgres.NewWithdrawalRepository(database)
		dbExecutor = database
		beginTx = db.SQLBeginTx(database)
	case config.StorageDriverMemory:
		store := memory.NewStore()
		app.Store = store
		app.AccountRepository = memory.NewAccountRepository(store)
		app.TopUpRepository = memory.NewTopUpRepository(store)
		app.WithdrawalRepository = memory.NewWithdrawalRepository(store)
		beginTx = store.BeginTx
	}
	app.Logger.Info("Repositories initialized.")

	// 4. Initialize event publisher
	if len(cfg.KafkaBrokers) > 0 {
		app.Publisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		app.Logger.Info("Kafka publisher initialized.", "topic", cfg.KafkaTopic)
	} else {
		app.Publisher = events.NoopPublisher{}
	}

	// 5. Initialize Services
	app.LedgerService = service.NewLedgerService(
		dbExecutor,
		app.AccountRepository,
		app.TopUpRepository,
		app.WithdrawalRepository,
		cfg.FeePercentage,
		app.Publisher,
		app.Logger,
		beginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	ledgerHandler := handler.NewLedgerHandler(app.LedgerService, app.Logger)
	app.HTTPHandler = router.NewRouter(ledgerHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Logger.Error("Failed to close event publisher", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
