// Package app wires the kitchin server together and runs it.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/config"
	"github.com/Ramsey-B/kitchin/db"
	"github.com/Ramsey-B/kitchin/internal/repositories/appliedmutation"
	"github.com/Ramsey-B/kitchin/internal/repositories/commongroceryitem"
	"github.com/Ramsey-B/kitchin/internal/repositories/meal"
	"github.com/Ramsey-B/kitchin/internal/repositories/mealplan"
	"github.com/Ramsey-B/kitchin/internal/repositories/shoppinglist"
	"github.com/Ramsey-B/kitchin/internal/repositories/shoppinglistitem"
	"github.com/Ramsey-B/kitchin/internal/services/catalog"
	syncservice "github.com/Ramsey-B/kitchin/internal/services/sync"
	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/events"
	"github.com/Ramsey-B/kitchin/pkg/health"
	"github.com/Ramsey-B/kitchin/pkg/initialize"
	"github.com/Ramsey-B/kitchin/pkg/kafka"
	"github.com/Ramsey-B/kitchin/pkg/mutations"
	"github.com/Ramsey-B/kitchin/pkg/redis"
	"github.com/Ramsey-B/kitchin/pkg/replica"
	syncroutes "github.com/Ramsey-B/kitchin/pkg/routes/sync"
	"github.com/Ramsey-B/kitchin/pkg/startup"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/google/uuid"
)

const initLockName = "initialize"

// App owns every long lived dependency of the server.
type App struct {
	cfg    *config.Config
	logger ectologger.Logger

	startup *startup.Startup
	health  *health.Checker
	hub     *syncroutes.Hub
	fanout  *events.Fanout

	db       database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	sync     *syncservice.Service
	store    *replica.Store
	contract *mutations.Contract
	server   *http.Server

	stopPruner context.CancelFunc
}

func New(cfg *config.Config, logger ectologger.Logger) *App {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		startup: startup.NewStartup(logger, cfg.StartupMaxAttempts),
		health:  health.NewChecker(cfg.Version),
		hub:     syncroutes.NewHub(logger),
	}
	a.fanout = events.NewFanout(logger, a.hub)

	var tracingShutdown func(context.Context) error
	a.startup.AddDependency(startup.Func{
		Name: "tracing",
		OnStart: func(ctx context.Context) (err error) {
			tracingShutdown, err = tracing.Setup(ctx, tracingConfig(cfg))
			return err
		},
		OnStop: func(ctx context.Context) error {
			if tracingShutdown == nil {
				return nil
			}
			return tracingShutdown(ctx)
		},
	})

	a.startup.AddDependency(startup.Func{
		Name:    "database",
		OnStart: a.startDatabase,
		OnStop: func(context.Context) error {
			if a.db == nil {
				return nil
			}
			return a.db.Close()
		},
	})

	syncRequires := []string{"database"}

	if cfg.RedisEnabled {
		syncRequires = append(syncRequires, "redis")
		a.startup.AddDependency(startup.Func{
			Name:    "redis",
			OnStart: a.startRedis,
			OnStop: func(context.Context) error {
				if a.redis == nil {
					return nil
				}
				return a.redis.Close()
			},
		})
	}

	if cfg.KafkaEnabled {
		syncRequires = append(syncRequires, "kafka")
		a.startup.AddDependency(startup.Func{
			Name:    "kafka",
			OnStart: a.startKafka,
			OnStop:  a.stopKafka,
		})
	}

	a.startup.AddDependency(startup.Func{
		Name:     "sync",
		Requires: syncRequires,
		OnStart:  a.startSync,
		OnStop:   a.stopSync,
	})

	a.startup.AddDependency(startup.Func{
		Name:     "http",
		Requires: []string{"tracing", "sync"},
		OnStart:  a.startHTTP,
		OnStop:   a.stopHTTP,
	})

	return a
}

// Run starts every dependency, serves until ctx is cancelled and then shuts down.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup.Start(ctx); err != nil {
		a.shutdown()
		return err
	}

	a.health.SetReady(true)
	a.logger.Infof("%s listening on :%d", a.cfg.AppName, a.cfg.Port)

	<-ctx.Done()
	a.logger.Info("shutting down")
	a.health.SetReady(false)

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.hub.Close()
	return a.startup.Stop(ctx)
}

func (a *App) startDatabase(ctx context.Context) error {
	conn, err := database.Connect(ctx, databaseConfig(a.cfg), a.logger)
	if err != nil {
		return err
	}

	migrations := database.NewMigrationService(a.logger, db.Files, migrationConfig(a.cfg))
	if err := migrations.Migrate(a.cfg.DatabaseName, conn); err != nil {
		_ = conn.Close()
		return err
	}

	a.db = conn
	a.health.AddCheck("database", conn.PingContext)
	return nil
}

func (a *App) startRedis(ctx context.Context) error {
	client, err := redis.NewClient(ctx, redis.Config{
		Host:      a.cfg.RedisHost,
		Port:      a.cfg.RedisPort,
		Password:  a.cfg.RedisPassword,
		DB:        a.cfg.RedisDB,
		KeyPrefix: a.cfg.RedisKeyPrefix,
	}, a.logger)
	if err != nil {
		return err
	}

	a.redis = client
	a.health.AddOptionalCheck("redis", client.Ping)
	return nil
}

func (a *App) startKafka(ctx context.Context) error {
	kc := kafkaConfig(a.cfg)

	producer, err := kafka.NewProducer(kc, a.logger)
	if err != nil {
		return err
	}

	consumer, err := kafka.NewConsumer(kc, a.logger)
	if err != nil {
		_ = producer.Close()
		return err
	}

	if err := consumer.Start(context.WithoutCancel(ctx), a.fanout.Handle); err != nil {
		_ = producer.Close()
		return err
	}

	a.producer = producer
	a.consumer = consumer
	return nil
}

func (a *App) stopKafka(context.Context) error {
	var firstErr error
	if a.consumer != nil {
		if err := a.consumer.Stop(); err != nil {
			firstErr = err
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// startSync builds the repositories, the authoritative sync service and the in process
// replica the HTTP contract routes write through.
func (a *App) startSync(ctx context.Context) error {
	commonItems := commongroceryitem.NewRepository(a.db, a.logger)
	repos := syncservice.Repositories{
		MealPlans:         mealplan.NewRepository(a.db, a.logger),
		Meals:             meal.NewRepository(a.db, a.logger),
		ShoppingLists:     shoppinglist.NewRepository(a.db, a.logger),
		ShoppingListItems: shoppinglistitem.NewRepository(a.db, a.logger),
		CommonItems:       commonItems,
		AppliedMutations:  appliedmutation.NewRepository(a.db, a.logger),
	}

	if a.cfg.SeedCatalogOnStart {
		if _, err := catalog.NewService(commonItems, a.logger).Seed(ctx, db.Files, db.CatalogSeed); err != nil {
			return err
		}
	}

	// with Kafka every instance, this one included, hears about changes through the topic
	var notifier syncservice.Notifier = a.fanout
	if a.producer != nil {
		notifier = events.NewEmitter(a.producer, a.logger)
	}
	a.sync = syncservice.NewService(a.db, repos, a.logger, notifier)

	a.store = replica.NewStore(a.sync, a.logger, replica.Config{
		RetryBaseDelay:  a.cfg.ReplicaRetryBaseDelay,
		RetryMaxDelay:   a.cfg.ReplicaRetryMaxDelay,
		RefreshInterval: a.cfg.ReplicaRefreshInterval,
	})
	a.fanout.Add(a.store)

	a.contract = mutations.NewContract(a.store, a.logger, mutations.WithSingletonPolicy(mutations.SingletonPolicy(a.cfg.SingletonPolicy)))

	// the initializer must see the stored data before its first snapshot
	if err := a.store.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load initial snapshot: %w", err)
	}

	runCtx := context.WithoutCancel(ctx)
	a.store.Start(runCtx)

	var guard initialize.Guard
	if a.redis != nil {
		guard = initialize.NewRedisGuard(a.redis, initLockName, a.cfg.InitLockTTL)
	}
	initializer := initialize.NewInitializer(a.contract, guard, a.logger, initialize.WithReclaimAfter(a.cfg.InitLockTTL))
	a.store.Subscribe(initializer.Subscriber(runCtx))

	pruneCtx, cancel := context.WithCancel(runCtx)
	a.stopPruner = cancel
	go a.pruneLoop(pruneCtx)

	return nil
}

func (a *App) stopSync(ctx context.Context) error {
	if a.stopPruner != nil {
		a.stopPruner()
	}
	if a.store == nil {
		return nil
	}

	if err := a.store.Flush(ctx); err != nil {
		a.logger.WithError(err).Warn("failed to flush pending mutations before shutdown")
	}
	a.store.Close()
	return nil
}

func (a *App) pruneLoop(ctx context.Context) {
	if a.cfg.AppliedMutationPruneInterval <= 0 {
		return
	}

	ticker := time.NewTicker(a.cfg.AppliedMutationPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.sync.PruneAppliedMutations(ctx, a.cfg.AppliedMutationRetention); err != nil {
				a.logger.WithError(err).Error("failed to prune applied mutations")
			}
		}
	}
}

func tracingConfig(cfg *config.Config) tracing.Config {
	return tracing.Config{
		ServiceName:    cfg.AppName,
		ServiceVersion: cfg.Version,
		Exporter:       cfg.TraceExporter,
		Endpoint:       cfg.OTLPEndpoint,
		Protocol:       cfg.OTLPProtocol,
		Insecure:       cfg.OTLPInsecure,
		SampleRatio:    cfg.TraceSampleRatio,
	}
}

func databaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		User:            cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}
}

func migrationConfig(cfg *config.Config) *database.MigrationConfig {
	return &database.MigrationConfig{
		FolderPath:   cfg.DatabaseMigrationFolderPath,
		Version:      cfg.DatabaseMigrationVersion,
		Force:        cfg.DatabaseMigrationForce,
		AutoRollback: cfg.DatabaseMigrationAutoRollback,
	}
}

// kafkaConfig gives every instance its own consumer group unless one is configured, so each
// instance receives every change.
func kafkaConfig(cfg *config.Config) kafka.Config {
	kc := kafka.DefaultConfig()
	kc.Brokers = cfg.KafkaBrokers
	kc.Topic = cfg.KafkaChangesTopic
	kc.GroupID = cfg.KafkaConsumerGroup
	if kc.GroupID == "" {
		kc.GroupID = fmt.Sprintf("%s-%s", cfg.AppName, uuid.New().String())
	}
	kc.BatchSize = cfg.KafkaBatchSize
	kc.BatchTimeout = time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond
	kc.RequiredAcks = cfg.KafkaRequiredAcks
	kc.Compression = cfg.KafkaCompression
	return kc
}
