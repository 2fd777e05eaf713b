package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  host: 0.0.0.0
  port: 50051
  http_port: 8080
store:
  type: memory
jwt:
  secret: 0123456789abcdef0123456789abcdef
booking:
  platform_deposit_cents: 5000
kafka:
  enabled: true
  brokers: ["localhost:9092"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, StoreTypeMemory, cfg.Store.Type)
	assert.Equal(t, int32(5000), cfg.Booking.PlatformDepositCents)
	assert.Equal(t, 3, cfg.Booking.TitleMinLength)
	assert.Equal(t, 90, cfg.Booking.AvailabilityDays)
	assert.Equal(t, "booking-events", cfg.Kafka.Topic)
	assert.Equal(t, 60, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, "0 5 0 * * *", cfg.Scheduler.ActivateStartedRentals)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetHTTPAddress())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "toolshare")
	t.Setenv("DB_NAME", "toolshare")
	t.Setenv("LOG_FORMAT", "tint")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, StoreTypePostgres, cfg.Store.Type)
	assert.Equal(t, "tint", cfg.Log.Format)
	assert.Contains(t, cfg.GetDatabaseConnectionString(), "@db:0/toolshare")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }, "at least 32"},
		{"unknown store", func(c *Config) { c.Store.Type = "redis" }, "unknown store type"},
		{"postgres needs host", func(c *Config) { c.Store.Type = StoreTypePostgres }, "database host"},
		{"negative deposit", func(c *Config) { c.Booking.PlatformDepositCents = -1 }, "deposit"},
		{"availability window too long", func(c *Config) { c.Booking.AvailabilityDays = 400 }, "availability days"},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, "kafka brokers"},
		{"sendgrid without key", func(c *Config) { c.SendGrid.Enabled = true }, "api key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Server: ServerConfig{Port: 50051},
				Store:  StoreConfig{Type: StoreTypeMemory},
				JWT:    JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			}
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.wantErr)
		})
	}
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/toolshare.booking.v1.BookingService/Ping"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/toolshare.booking.v1.BookingService/ApproveBooking"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/unknown.Service/Method"))
}
