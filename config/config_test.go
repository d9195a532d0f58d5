package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotEnv(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	noDotEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 2, cfg.Academic.ReservationMaxPerWeek)
	assert.Equal(t, 14, cfg.Academic.ReservationWindowDays)
	assert.Equal(t, 0, cfg.Academic.CompleteReservationsHour)
	assert.Equal(t, 5, cfg.Academic.CompleteReservationsMinute)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Environment(t *testing.T) {
	noDotEnv(t)
	t.Setenv("RESERVATION_MAX_PER_WEEK", "3")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("HTTP_REQUEST_TIMEOUT", "2s")
	t.Setenv("REDIS_DISABLED", "true")
	t.Setenv("DB_PORT", "not-a-port")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Academic.ReservationMaxPerWeek)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "2s", cfg.HTTP.RequestTimeout.String())
	assert.True(t, cfg.Redis.Disabled)
	assert.Equal(t, 5432, cfg.Database.Port, "unparsable values fall back to the default")
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RESERVATION_WINDOW_DAYS=7\nAPP_VERSION=2.0.0\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("APP_VERSION", "3.1.0")
	t.Cleanup(func() { _ = os.Unsetenv("RESERVATION_WINDOW_DAYS") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Academic.ReservationWindowDays)
	assert.Equal(t, "3.1.0", cfg.App.Version, "the environment wins over the file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Environment: EnvDevelopment},
			Database: DatabaseConfig{MaxConns: 10, MinConns: 2, ConnectAttempts: 5},
			Log:      LogConfig{Level: "info", Format: "json"},
			HTTP:     HTTPConfig{Enabled: true, Port: 8080},
			Academic: AcademicConfig{ReservationMaxPerWeek: 2, ReservationWindowDays: 14, CompleteReservationsMinute: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "production without credentials",
			mutate:  func(c *Config) { c.App.Environment = EnvProduction },
			wantErr: "DATABASE_URL or DB_PASSWORD",
		},
		{
			name:    "min above max conns",
			mutate:  func(c *Config) { c.Database.MinConns = 11 },
			wantErr: "DB_MIN_CONNS",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: "HTTP_PORT",
		},
		{
			name:   "port ignored when http is off",
			mutate: func(c *Config) { c.HTTP.Enabled = false; c.HTTP.Port = 0 },
		},
		{
			name:    "zero reservations per week",
			mutate:  func(c *Config) { c.Academic.ReservationMaxPerWeek = 0 },
			wantErr: "RESERVATION_MAX_PER_WEEK",
		},
		{
			name:    "negative window",
			mutate:  func(c *Config) { c.Academic.ReservationWindowDays = -1 },
			wantErr: "RESERVATION_WINDOW_DAYS",
		},
		{
			name:    "bad job time",
			mutate:  func(c *Config) { c.Academic.CompleteReservationsHour = 24 },
			wantErr: "SCHEDULER_COMPLETE_RESERVATIONS_HOUR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
