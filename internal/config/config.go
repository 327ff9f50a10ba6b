package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Realtime RealtimeConfig `mapstructure:"realtime" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
	// AllowedOrigins lists the origins accepted for WebSocket upgrades.
	// "*" accepts any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Supported values for DatabaseConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres mongo memory"`
	URL    string `mapstructure:"url"    validate:"required_unless=Driver memory"`
	// Name is the MongoDB database name. Ignored by the other drivers.
	Name         string        `mapstructure:"name"           validate:"required"`
	MaxOpenConns int           `mapstructure:"max_open_conns" validate:"gte=1"`
	PingTimeout  time.Duration `mapstructure:"ping_timeout"   validate:"gt=0"`
	// AutoMigrate applies pending schema migrations (postgres) or
	// ensures indexes (mongo) at startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"     validate:"required,min=32"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"required,gt=0"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"    validate:"gte=4,lte=31"`
	// AdminEmail and AdminPassword seed an approved admin account at startup
	// when both are set and no user with that email exists yet.
	AdminEmail    string `mapstructure:"admin_email"    validate:"omitempty,email"`
	AdminPassword string `mapstructure:"admin_password" validate:"required_with=AdminEmail"`
}

// RealtimeConfig controls the notification broadcast pipeline.
type RealtimeConfig struct {
	QueueSize    int `mapstructure:"queue_size"    validate:"gte=1"`
	WorkerCount  int `mapstructure:"worker_count"  validate:"gte=1"`
	ClientBuffer int `mapstructure:"client_buffer" validate:"gte=1"`
	// RedisURL enables cross-instance fan-out through Redis pub/sub when set.
	RedisURL     string `mapstructure:"redis_url"     validate:"omitempty,url"`
	RedisChannel string `mapstructure:"redis_channel" validate:"required"`
}
