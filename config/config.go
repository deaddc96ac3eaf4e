package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
	Filename          string
}

type DatabaseConfig struct {
	Driver      string // pgx or sqlite
	AutoMigrate bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type SQLiteConfig struct {
	Path string
}

type CatalogConfig struct {
	DefaultPageSize   int
	MaxPageSize       int
	MaxHierarchyDepth int // hop cap for ancestor walks
	DescendantDepth   int // default depth of categoryHierarchy
}

var defaults = map[string]any{
	"APP_ENV":   "dev",
	"GRPC_PORT": ":8082",
	"HTTP_PORT": ":8080",

	"LOGGER_LEVEL":              "debug",
	"LOGGER_ENCODING":           "console",
	"LOGGER_DISABLE_CALLER":     false,
	"LOGGER_DISABLE_STACKTRACE": true,
	"LOGGER_FILENAME":           "",

	"DB_DRIVER":       "pgx",
	"DB_AUTO_MIGRATE": true,

	"POSTGRES_HOST":               "localhost",
	"POSTGRES_PORT":               "5433",
	"POSTGRES_USER":               "catalog",
	"POSTGRES_PASSWORD":           "catalog",
	"POSTGRES_DB":                 "catalog",
	"POSTGRES_SSLMODE":            "disable",
	"POSTGRES_MAX_OPEN_CONNS":     10,
	"POSTGRES_MAX_IDLE_CONNS":     5,
	"POSTGRES_CONN_MAX_LIFETIME":  300,
	"POSTGRES_CONN_MAX_IDLE_TIME": 60,

	"SQLITE_PATH": "catalog.db",

	"CATALOG_DEFAULT_PAGE_SIZE":   20,
	"CATALOG_MAX_PAGE_SIZE":       500,
	"CATALOG_MAX_HIERARCHY_DEPTH": 64,
	"CATALOG_DESCENDANT_DEPTH":    2,
}

// LoadEnv reads configuration from the environment, after loading a .env
// file from the working directory when one exists.
func LoadEnv() *Config {
	_ = godotenv.Load()
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

func load(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   v.GetString("APP_ENV"),
			GRPCPort: v.GetString("GRPC_PORT"),
			HTTPPort: v.GetString("HTTP_PORT"),
		},
		Logger: LoggerConfig{
			Level:             v.GetString("LOGGER_LEVEL"),
			Encoding:          v.GetString("LOGGER_ENCODING"),
			DisableCaller:     v.GetBool("LOGGER_DISABLE_CALLER"),
			DisableStacktrace: v.GetBool("LOGGER_DISABLE_STACKTRACE"),
			Filename:          v.GetString("LOGGER_FILENAME"),
		},
		Database: DatabaseConfig{
			Driver:      v.GetString("DB_DRIVER"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Postgres: PostgresConfig{
			Host:            v.GetString("POSTGRES_HOST"),
			Port:            v.GetString("POSTGRES_PORT"),
			User:            v.GetString("POSTGRES_USER"),
			Password:        v.GetString("POSTGRES_PASSWORD"),
			DBName:          v.GetString("POSTGRES_DB"),
			SSLMode:         v.GetString("POSTGRES_SSLMODE"),
			MaxOpenConns:    v.GetInt("POSTGRES_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("POSTGRES_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetInt("POSTGRES_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetInt("POSTGRES_CONN_MAX_IDLE_TIME"),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		Catalog: CatalogConfig{
			DefaultPageSize:   v.GetInt("CATALOG_DEFAULT_PAGE_SIZE"),
			MaxPageSize:       v.GetInt("CATALOG_MAX_PAGE_SIZE"),
			MaxHierarchyDepth: v.GetInt("CATALOG_MAX_HIERARCHY_DEPTH"),
			DescendantDepth:   v.GetInt("CATALOG_DESCENDANT_DEPTH"),
		},
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want pgx or sqlite)", c.Database.Driver)
	}
	if c.Catalog.DefaultPageSize <= 0 || c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		return fmt.Errorf("invalid page sizes: default=%d max=%d", c.Catalog.DefaultPageSize, c.Catalog.MaxPageSize)
	}
	if c.Catalog.MaxHierarchyDepth <= 0 {
		return fmt.Errorf("CATALOG_MAX_HIERARCHY_DEPTH must be positive")
	}
	if c.Catalog.DescendantDepth <= 0 || c.Catalog.DescendantDepth > c.Catalog.MaxHierarchyDepth {
		return fmt.Errorf("CATALOG_DESCENDANT_DEPTH must be in [1, %d]", c.Catalog.MaxHierarchyDepth)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.AppEnv == "dev"
}

// PostgresDSN builds a pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Postgres.User, c.Postgres.Password, c.Postgres.Host, c.Postgres.Port, c.Postgres.DBName, c.Postgres.SSLMode)
}
