package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_ENV"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // e.g., debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Catalog    CatalogConfig
	Postgres   PostgresConfig
	Mongo      MongoConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port           string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead    time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite   time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle    time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
	TimeoutRequest time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_REQUEST" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port    string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
	Enabled bool   `envconfig:"GRPC_SERVER_ENABLED" default:"true"`
}

// CatalogConfig selects where the catalog snapshot comes from and how the
// query engine behaves.
type CatalogConfig struct {
	Source      string        `envconfig:"CATALOG_SOURCE" default:"fixture"` // fixture, postgres or mongo
	FixturePath string        `envconfig:"CATALOG_FIXTURE_PATH"`             // empty means the built-in fixture
	ListDelay   time.Duration `envconfig:"CATALOG_LIST_DELAY" default:"200ms"`
	LookupDelay time.Duration `envconfig:"CATALOG_LOOKUP_DELAY" default:"150ms"`
	MaxLimit    int           `envconfig:"CATALOG_MAX_LIMIT" default:"100"`
	Locale      string        `envconfig:"CATALOG_LOCALE" default:"en"`
}

// PostgresConfig holds PostgreSQL connection details for CATALOG_SOURCE=postgres.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
	Schema   string `envconfig:"POSTGRES_SCHEMA" default:"products"`
	Table    string `envconfig:"POSTGRES_TABLE" default:"products"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

// MongoConfig holds MongoDB connection details for CATALOG_SOURCE=mongo.
type MongoConfig struct {
	URI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database   string `envconfig:"MONGO_DATABASE" default:"productCatalog"`
	Collection string `envconfig:"MONGO_COLLECTION" default:"products"`
}

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case "fixture":
	case "postgres":
		if c.Postgres.User == "" || c.Postgres.DBName == "" {
			return fmt.Errorf("CATALOG_SOURCE=postgres requires POSTGRES_USER and POSTGRES_DBNAME")
		}
	case "mongo":
		if c.Mongo.URI == "" {
			return fmt.Errorf("CATALOG_SOURCE=mongo requires MONGO_URI")
		}
	default:
		return fmt.Errorf("invalid CATALOG_SOURCE: %q (want fixture, postgres or mongo)", c.Catalog.Source)
	}
	if c.Catalog.MaxLimit <= 0 {
		return fmt.Errorf("invalid CATALOG_MAX_LIMIT: %d", c.Catalog.MaxLimit)
	}
	if c.Catalog.ListDelay < 0 || c.Catalog.LookupDelay < 0 {
		return fmt.Errorf("catalog delays must not be negative")
	}
	return nil
}
