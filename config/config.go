package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string        `env:"APP_NAME" env-default:"kitchin-api"`
	Version                       string        `env:"APP_VERSION" env-default:"dev"`
	Port                          int           `env:"PORT" env-default:"8080"`
	LogLevel                      string        `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool          `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int           `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int           `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int           `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"60"`
	MaxHeaderBytes                int           `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int           `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string      `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string      `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,PATCH,DELETE"`
	StartupMaxAttempts            int           `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`
	ShutdownTimeout               time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	// Database driver
	DatabaseDriver string `env:"DB_DRIVER" env-default:"postgres"`
	// Database host
	DatabaseHost string `env:"DB_HOST" env-default:"localhost"`
	// Database port
	DatabasePort string `env:"DB_PORT" env-default:"5432"`
	// Database user
	DatabaseUserName string `env:"DB_USER_NAME" env-default:"kitchin"`
	// Database user password
	DatabasePassword string `env:"DB_PASSWORD" env-default:""`
	// Database name
	DatabaseName string `env:"DB_NAME" env-default:"kitchin"`
	// Database SSL Mode
	DatabaseSSLMode string `env:"DB_SSL_MODE" env-default:"disable"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
	// Migration folder inside the embedded db files
	DatabaseMigrationFolderPath string `env:"DB_MIGRATION_FOLDER_PATH" env-default:"pg"`
	// Database Migration Version, 0 means latest
	DatabaseMigrationVersion uint `env:"DB_MIGRATION_VERSION" env-default:"0"`
	// Database Migration Force
	DatabaseMigrationForce int `env:"DB_MIGRATION_FORCE" env-default:"0"`
	// Database Migration Auto Rollback
	DatabaseMigrationAutoRollback bool `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Redis guards the default data bootstrap across instances
	RedisEnabled   bool          `env:"REDIS_ENABLED" env-default:"true"`
	RedisHost      string        `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort      int           `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD" env-default:""`
	RedisDB        int           `env:"REDIS_DB" env-default:"0"`
	RedisKeyPrefix string        `env:"REDIS_KEY_PREFIX" env-default:"kitchin"`
	InitLockTTL    time.Duration `env:"INIT_LOCK_TTL" env-default:"1m"`

	// Kafka change events
	KafkaEnabled       bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers       []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaChangesTopic  string   `env:"KAFKA_CHANGES_TOPIC" env-default:"kitchin.changes"`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" env-default:""`
	KafkaBatchSize     int      `env:"KAFKA_BATCH_SIZE" env-default:"1"`
	KafkaBatchTimeout  int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"10"`
	KafkaRequiredAcks  int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression   string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Tracing
	TraceExporter string `env:"TRACE_EXPORTER" env-default:"none"`
	OTLPEndpoint  string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	OTLPProtocol  string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure  bool   `env:"OTLP_INSECURE" env-default:"true"`

	TraceSampleRatio float64 `env:"TRACE_SAMPLE_RATIO" env-default:"1"`

	// Domain
	SingletonPolicy              string        `env:"SINGLETON_POLICY" env-default:"select"`
	SeedCatalogOnStart           bool          `env:"SEED_CATALOG_ON_START" env-default:"true"`
	AppliedMutationRetention     time.Duration `env:"APPLIED_MUTATION_RETENTION" env-default:"720h"`
	AppliedMutationPruneInterval time.Duration `env:"APPLIED_MUTATION_PRUNE_INTERVAL" env-default:"1h"`

	// Replica
	ReplicaRetryBaseDelay  time.Duration `env:"REPLICA_RETRY_BASE_DELAY" env-default:"500ms"`
	ReplicaRetryMaxDelay   time.Duration `env:"REPLICA_RETRY_MAX_DELAY" env-default:"30s"`
	ReplicaRefreshInterval time.Duration `env:"REPLICA_REFRESH_INTERVAL" env-default:"30s"`

	// CLI client
	ServerURL string `env:"KITCHIN_SERVER_URL" env-default:""`
	ClientID  string `env:"KITCHIN_CLIENT_ID" env-default:""`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.SingletonPolicy {
	case "select", "enforce":
	default:
		return fmt.Errorf("invalid SINGLETON_POLICY %q (use 'select' or 'enforce')", c.SingletonPolicy)
	}

	switch c.TraceExporter {
	case "none", "otlp":
	default:
		return fmt.Errorf("invalid TRACE_EXPORTER %q (use 'otlp' or 'none')", c.TraceExporter)
	}

	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}

	if c.ReplicaRetryMaxDelay < c.ReplicaRetryBaseDelay {
		return fmt.Errorf("REPLICA_RETRY_MAX_DELAY must not be less than REPLICA_RETRY_BASE_DELAY")
	}

	return nil
}
