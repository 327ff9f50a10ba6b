package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/memory"
	"github.com/phrazzld/taskflow-api/internal/platform/mongodb"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Exactly one of these is set, depending on the configured driver.
	db          *sql.DB
	mongoClient *mongo.Client

	userStore         store.UserStore
	taskStore         store.TaskStore
	notificationStore store.NotificationStore

	jwtService          auth.JWTService
	userService         service.UserService
	taskService         service.TaskService
	notificationService service.NotificationService

	// Notification broadcast pipeline
	dispatcher *events.Dispatcher
	hub        *realtime.Hub
	relay      *realtime.RedisRelay
}

// newApplication connects the configured store, builds the services and
// starts the notification pipeline. On error every resource acquired so far
// is released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}
	if err := app.init(ctx); err != nil {
		app.cleanup(context.Background())
		return nil, err
	}

	logger.Info("application initialized successfully")
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg := app.config

	if err := app.setupStores(ctx); err != nil {
		return err
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.logger.Info("JWT authentication service initialized",
		"token_lifetime", cfg.Auth.TokenLifetime.String())

	if err := app.setupRealtime(ctx); err != nil {
		return err
	}

	app.notificationService = service.NewNotificationService(app.notificationStore, app.dispatcher, app.logger)
	app.taskService = service.NewTaskService(app.taskStore, app.notificationService, app.logger)
	app.userService = service.NewUserService(
		app.userStore,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		app.jwtService,
		app.notificationService,
		app.logger,
	)

	if cfg.Auth.AdminEmail != "" {
		admin, err := app.userService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to seed admin account: %w", err)
		}
		app.logger.Info("admin account ready", "user_id", admin.ID)
	}
	return nil
}

// setupStores connects to the configured backend and builds the three stores.
func (app *application) setupStores(ctx context.Context) error {
	cfg := app.config.Database

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := openPostgres(ctx, cfg, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
		}
		app.userStore = postgres.NewPostgresUserStore(db, app.logger)
		app.taskStore = postgres.NewPostgresTaskStore(db, app.logger)
		app.notificationStore = postgres.NewPostgresNotificationStore(db, app.logger)

	case config.DriverMongo:
		client, database, err := openMongo(ctx, cfg, app.logger)
		if err != nil {
			return err
		}
		app.mongoClient = client
		if cfg.AutoMigrate {
			if err := mongodb.EnsureIndexes(ctx, database); err != nil {
				return fmt.Errorf("failed to ensure indexes: %w", err)
			}
		}
		app.userStore = mongodb.NewMongoUserStore(database, app.logger)
		app.taskStore = mongodb.NewMongoTaskStore(database, app.logger)
		app.notificationStore = mongodb.NewMongoNotificationStore(database, app.logger)

	case config.DriverMemory:
		app.logger.Warn("using in-memory stores, data will not survive a restart")
		app.userStore = memory.NewUserStore()
		app.taskStore = memory.NewTaskStore()
		app.notificationStore = memory.NewNotificationStore()

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return nil
}

// setupRealtime builds the dispatcher and hub. With a Redis URL configured,
// dispatched events are published to Redis and every instance's subscription
// feeds its own hub; otherwise the dispatcher feeds the hub directly.
func (app *application) setupRealtime(ctx context.Context) error {
	cfg := app.config.Realtime

	app.dispatcher = events.NewDispatcher(events.DispatcherConfig{
		QueueSize:   cfg.QueueSize,
		WorkerCount: cfg.WorkerCount,
	}, app.logger)
	app.hub = realtime.NewHub(cfg.ClientBuffer, app.logger)
	app.hub.SetEmitter(app.dispatcher)

	if cfg.RedisURL != "" {
		relay, err := realtime.NewRedisRelay(ctx, cfg.RedisURL, cfg.RedisChannel, app.hub, app.logger)
		if err != nil {
			return fmt.Errorf("failed to connect redis relay: %w", err)
		}
		app.relay = relay
		if err := relay.Start(ctx); err != nil {
			return fmt.Errorf("failed to start redis relay: %w", err)
		}
		app.dispatcher.RegisterHandler(relay)
	} else {
		app.dispatcher.RegisterHandler(app.hub)
	}

	app.dispatcher.Start()
	return nil
}

// Run serves HTTP until ctx is canceled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases application resources in dependency order: the
// dispatcher drains first so no event reaches a closed hub or relay.
func (app *application) cleanup(ctx context.Context) {
	var errs []error

	if app.dispatcher != nil {
		if err := app.dispatcher.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop dispatcher: %w", err))
		}
	}
	if app.relay != nil {
		if err := app.relay.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis relay: %w", err))
		}
	}
	if app.hub != nil {
		app.hub.Close()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if app.mongoClient != nil {
		if err := app.mongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongodb: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		app.logger.Error("error during cleanup", "error", err)
	}
}
