package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Study     StudyConfig     `mapstructure:"study" validate:"required"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"required,gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the storage backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a PostgreSQL connection URL or a SQLite file path.
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	// AutoMigrate applies pending migrations at startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains the settings needed to verify bearer tokens.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer    string        `mapstructure:"issuer"`
	ClockSkew time.Duration `mapstructure:"clock_skew" validate:"gte=0"`
}

// StudyConfig contains settings of the batch commit protocol.
type StudyConfig struct {
	// Timezone names the IANA zone whose calendar days drive streaks and
	// history buckets.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
	// CommitConcurrency bounds how many distinct items of one batch commit at once.
	CommitConcurrency int `mapstructure:"commit_concurrency" validate:"gte=1,lte=64"`
	// HistoryDays is the default review history window.
	HistoryDays int `mapstructure:"history_days" validate:"gte=1,lte=365"`
	// MaxBatchSize rejects batches with more reviews than this.
	MaxBatchSize int `mapstructure:"max_batch_size" validate:"gte=1"`
}

// TelemetryConfig controls OpenTelemetry tracing. Tracing is off unless
// enabled with an endpoint.
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint" validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string `mapstructure:"service_name"`
}

// Location resolves the configured study timezone.
func (c StudyConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
