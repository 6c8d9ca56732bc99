package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rpattn/fishql/internal/db"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	GraphQL GraphQLConfig
	Store   StoreConfig
	Cache   CacheConfig
	Server  ServerConfig
	Export  ExportConfig
}

// GraphQLConfig locates the remote backend.
type GraphQLConfig struct {
	Endpoint   string        `validate:"required,url"`
	Timeout    time.Duration `validate:"min=0"`
	SchemaPath string
}

// StoreConfig selects the local entity store.
type StoreConfig struct {
	Driver   string `validate:"oneof=sqlite postgres"`
	Path     string `validate:"required_if=Driver sqlite"`
	Postgres db.Config
}

// CacheConfig configures the referential cache. A disabled cache keeps
// nothing.
type CacheConfig struct {
	Enabled  bool
	Addr     string `validate:"required_if=Enabled true"`
	Password string
	DB       int           `validate:"min=0,max=15"`
	TTL      time.Duration `validate:"min=0"`
}

// ServerConfig configures the local HTTP inspector.
type ServerConfig struct {
	Addr           string `validate:"required"`
	AllowedOrigins []string
}

// ExportConfig configures file exports.
type ExportConfig struct {
	Dir string `validate:"required"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		GraphQL: GraphQLConfig{
			Endpoint: "http://localhost:8080/graphql",
			Timeout:  30 * time.Second,
		},
		Store: StoreConfig{
			Driver:   db.DriverSQLite,
			Path:     "data/fishql.db",
			Postgres: db.DefaultConfig(),
		},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  time.Hour,
		},
		Server: ServerConfig{
			Addr:           ":8090",
			AllowedOrigins: []string{"http://localhost:4200"},
		},
		Export: ExportConfig{
			Dir: "exports",
		},
	}
}

var envKeys = []string{
	"graphql.endpoint",
	"graphql.timeout",
	"graphql.schemapath",
	"store.driver",
	"store.path",
	"store.postgres.host",
	"store.postgres.port",
	"store.postgres.user",
	"store.postgres.password",
	"store.postgres.dbname",
	"store.postgres.sslmode",
	"cache.enabled",
	"cache.addr",
	"cache.password",
	"cache.db",
	"cache.ttl",
	"server.addr",
	"server.allowedorigins",
	"export.dir",
}

// Load reads config.yaml from configPath, applies FISHQL_* environment
// overrides (FISHQL_GRAPHQL_ENDPOINT, FISHQL_STORE_DRIVER...) and validates
// the result.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("FISHQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		log.Printf("[CONFIG] no config.yaml in %s, using defaults and env vars", configPath)
	} else {
		log.Printf("[CONFIG] loaded %s", v.ConfigFileUsed())
	}

	if v.IsSet("graphql.endpoint") {
		cfg.GraphQL.Endpoint = v.GetString("graphql.endpoint")
	}
	if v.IsSet("graphql.timeout") {
		cfg.GraphQL.Timeout = v.GetDuration("graphql.timeout")
	}
	if v.IsSet("graphql.schemapath") {
		cfg.GraphQL.SchemaPath = v.GetString("graphql.schemapath")
	}

	if v.IsSet("store.driver") {
		cfg.Store.Driver = v.GetString("store.driver")
	}
	if v.IsSet("store.path") {
		cfg.Store.Path = v.GetString("store.path")
	}
	if v.IsSet("store.postgres.host") {
		cfg.Store.Postgres.Host = v.GetString("store.postgres.host")
	}
	if v.IsSet("store.postgres.port") {
		cfg.Store.Postgres.Port = v.GetInt("store.postgres.port")
	}
	if v.IsSet("store.postgres.user") {
		cfg.Store.Postgres.User = v.GetString("store.postgres.user")
	}
	if v.IsSet("store.postgres.password") {
		cfg.Store.Postgres.Password = v.GetString("store.postgres.password")
	}
	if v.IsSet("store.postgres.dbname") {
		cfg.Store.Postgres.DBName = v.GetString("store.postgres.dbname")
	}
	if v.IsSet("store.postgres.sslmode") {
		cfg.Store.Postgres.SSLMode = v.GetString("store.postgres.sslmode")
	}

	if v.IsSet("cache.enabled") {
		cfg.Cache.Enabled = v.GetBool("cache.enabled")
	}
	if v.IsSet("cache.addr") {
		cfg.Cache.Addr = v.GetString("cache.addr")
	}
	if v.IsSet("cache.password") {
		cfg.Cache.Password = v.GetString("cache.password")
	}
	if v.IsSet("cache.db") {
		cfg.Cache.DB = v.GetInt("cache.db")
	}
	if v.IsSet("cache.ttl") {
		cfg.Cache.TTL = v.GetDuration("cache.ttl")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowedorigins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowedorigins")
	}
	if v.IsSet("export.dir") {
		cfg.Export.Dir = v.GetString("export.dir")
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct constraints.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
