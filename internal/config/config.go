package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Booking   BookingConfig   `yaml:"booking"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains gRPC and HTTP listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`      // gRPC
	HTTPPort int    `yaml:"http_port"` // query API
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"` // apply the schema on startup
}

const (
	StoreTypePostgres = "postgres"
	StoreTypeMemory   = "memory"
)

// StoreConfig selects the repository backend
type StoreConfig struct {
	Type string `yaml:"type"` // "postgres" or "memory"
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json", "text" or "tint"
}

// BookingConfig contains booking engine settings
type BookingConfig struct {
	PlatformDepositCents int32   `yaml:"platform_deposit_cents"`
	TitleMinLength       int     `yaml:"title_min_length"`
	SuggestMinConfidence float64 `yaml:"suggest_min_confidence"`
	AvailabilityDays     int     `yaml:"availability_days"`
}

// KafkaConfig contains the booking event topic settings
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SendGridConfig contains email notification settings
type SendGridConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ActivateStartedRentals     string `yaml:"activate_started_rentals"`
	SendOverdueReminders       string `yaml:"send_overdue_reminders"`
	ExpireStalePendingRequests string `yaml:"expire_stale_pending_requests"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}
	if val := os.Getenv("STORE_TYPE"); val != "" {
		c.Store.Type = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Booking
	if val := os.Getenv("PLATFORM_DEPOSIT_CENTS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Booking.PlatformDepositCents)
	}

	// Kafka
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		c.Kafka.Brokers = strings.Split(val, ",")
		c.Kafka.Enabled = true
	}
	if val := os.Getenv("KAFKA_TOPIC"); val != "" {
		c.Kafka.Topic = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
		c.SendGrid.Enabled = true
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}

	// Store validation
	if c.Store.Type == "" {
		c.Store.Type = StoreTypePostgres
	}
	switch c.Store.Type {
	case StoreTypePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case StoreTypeMemory:
	default:
		return fmt.Errorf("unknown store type: %q", c.Store.Type)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Booking validation
	if c.Booking.PlatformDepositCents < 0 {
		return fmt.Errorf("platform deposit must not be negative: %d", c.Booking.PlatformDepositCents)
	}
	if c.Booking.TitleMinLength == 0 {
		c.Booking.TitleMinLength = 3
	}
	if c.Booking.SuggestMinConfidence == 0 {
		c.Booking.SuggestMinConfidence = 0.5
	}
	if c.Booking.AvailabilityDays == 0 {
		c.Booking.AvailabilityDays = 90
	}
	if c.Booking.AvailabilityDays < 0 || c.Booking.AvailabilityDays > 365 {
		return fmt.Errorf("booking availability days must be between 1 and 365: %d", c.Booking.AvailabilityDays)
	}

	// Kafka validation
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			c.Kafka.Topic = "booking-events"
		}
	}

	// SendGrid validation
	if c.SendGrid.Enabled {
		if c.SendGrid.APIKey == "" {
			return fmt.Errorf("sendgrid api key is required when sendgrid is enabled")
		}
		if c.SendGrid.FromEmail == "" {
			return fmt.Errorf("sendgrid from email is required when sendgrid is enabled")
		}
	}

	// Scheduler defaults
	if c.Scheduler.ActivateStartedRentals == "" {
		c.Scheduler.ActivateStartedRentals = "0 5 0 * * *" // 00:05 UTC
	}
	if c.Scheduler.SendOverdueReminders == "" {
		c.Scheduler.SendOverdueReminders = "0 0 9 * * *" // 9 AM UTC
	}
	if c.Scheduler.ExpireStalePendingRequests == "" {
		c.Scheduler.ExpireStalePendingRequests = "0 10 0 * * *" // 00:10 UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHTTPAddress returns the query API address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}
