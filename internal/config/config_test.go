package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosandre007/escala/internal/config"
	"github.com/carlosandre007/escala/internal/scheduler"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "escala", cfg.DB.Name)
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Empty(t, cfg.AMQP.URL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/escala?sslmode=disable", cfg.ConnectionString())

	policy, err := cfg.SuccessorPolicy()
	require.NoError(t, err)
	assert.Equal(t, scheduler.PolicyLeave, policy)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SCHEDULER_TIMEZONE", "America/Sao_Paulo")
	t.Setenv("SCHEDULER_SUCCESSOR_POLICY", "retract")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://postgres:secret@db:5432/escala?sslmode=disable", cfg.ConnectionString())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())

	policy, err := cfg.SuccessorPolicy()
	require.NoError(t, err)
	assert.Equal(t, scheduler.PolicyRetract, policy)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "Timezone", key: "SCHEDULER_TIMEZONE", val: "Mars/Olympus"},
		{name: "Policy", key: "SCHEDULER_SUCCESSOR_POLICY", val: "cascade"},
		{name: "Port", key: "PORT", val: "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestConfig_Logger(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	cfg.Log.Format = "xml"
	_, err = cfg.Logger()
	assert.Error(t, err)

	cfg.Log.Format = "text"
	cfg.Log.Level = "loud"
	_, err = cfg.Logger()
	assert.Error(t, err)
}

func TestConfig_Pool(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "20")

	cfg, err := config.Load()
	require.NoError(t, err)

	pool := cfg.Pool()
	assert.Equal(t, 20, pool.MaxOpenConns)
	assert.Equal(t, 5, pool.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, pool.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, pool.ConnectTimeout)
}
