package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreOxiDB    = "oxidb"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPAddr        string        `yaml:"addr"`
	Store           string        `yaml:"store"`
	OxiDBHost       string        `yaml:"oxidb_host"`
	OxiDBPort       int           `yaml:"oxidb_port"`
	PoolSize        int           `yaml:"pool_size"`
	SQLiteDSN       string        `yaml:"sqlite_dsn"`
	PostgresDSN     string        `yaml:"postgres_dsn"`
	SchemaFile      string        `yaml:"schema_file"`
	JWTSecret       string        `yaml:"jwt_secret"`
	AdminEmail      string        `yaml:"admin_email"`
	AdminPass       string        `yaml:"admin_pass"`
	GelfAddr        string        `yaml:"gelf_addr"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	CORSOrigin      string        `yaml:"cors_origin"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func defaults() *Config {
	return &Config{
		HTTPAddr:        ":8000",
		Store:           StoreOxiDB,
		OxiDBHost:       "127.0.0.1",
		OxiDBPort:       4444,
		PoolSize:        3,
		SQLiteDSN:       "file:forms.db?_pragma=busy_timeout(5000)",
		JWTSecret:       "forms-dev-secret-change-me",
		AdminEmail:      "admin@forms.local",
		AdminPass:       "admin123",
		LogLevel:        "info",
		LogFormat:       "json",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load starts from defaults, applies the YAML file at path when one is
// given, then environment variables, which win.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = getEnv("FORMS_ADDR", cfg.HTTPAddr)
	cfg.Store = getEnv("FORMS_STORE", cfg.Store)
	cfg.OxiDBHost = getEnv("OXIDB_HOST", cfg.OxiDBHost)
	cfg.OxiDBPort = getEnvInt("OXIDB_PORT", cfg.OxiDBPort)
	cfg.PoolSize = getEnvInt("FORMS_POOL_SIZE", cfg.PoolSize)
	cfg.SQLiteDSN = getEnv("FORMS_SQLITE_DSN", cfg.SQLiteDSN)
	cfg.PostgresDSN = getEnv("FORMS_POSTGRES_DSN", cfg.PostgresDSN)
	cfg.SchemaFile = getEnv("FORMS_SCHEMA_FILE", cfg.SchemaFile)
	cfg.JWTSecret = getEnv("FORMS_JWT_SECRET", cfg.JWTSecret)
	cfg.AdminEmail = getEnv("FORMS_ADMIN_EMAIL", cfg.AdminEmail)
	cfg.AdminPass = getEnv("FORMS_ADMIN_PASS", cfg.AdminPass)
	cfg.GelfAddr = getEnv("FORMS_GELF_ADDR", cfg.GelfAddr)
	cfg.LogLevel = getEnv("FORMS_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("FORMS_LOG_FORMAT", cfg.LogFormat)
	cfg.CORSOrigin = getEnv("FORMS_CORS_ORIGIN", cfg.CORSOrigin)
	cfg.ShutdownTimeout = getEnvDuration("FORMS_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreOxiDB:
		if c.PoolSize < 1 {
			errs = append(errs, fmt.Errorf("pool size must be positive, got %d", c.PoolSize))
		}
	case StoreSQLite:
		if c.SQLiteDSN == "" {
			errs = append(errs, errors.New("sqlite store needs FORMS_SQLITE_DSN"))
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres store needs FORMS_POSTGRES_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
