package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "assets.jsonl", cfg.Store.Path)
	assert.Equal(t, "$.rates", cfg.Rates.Path)
	assert.Equal(t, time.Hour, cfg.Rates.RedisTTL)
	assert.Equal(t, "USD", cfg.DisplayCurrency)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "atr.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
store:
  driver: postgres
  dsn: postgres://file/atr
rates:
  redis_addr: localhost:6379
  redis_ttl: 15m
display_currency: chf
`), 0644))

	t.Setenv("ATR_STORE_DSN", "postgres://env/atr")
	t.Setenv("ATR_LOG_LEVEL", "debug")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://env/atr", cfg.Store.DSN, "environment overrides the file")
	assert.Equal(t, "localhost:6379", cfg.Rates.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.Rates.RedisTTL)
	assert.Equal(t, "CHF", cfg.DisplayCurrency)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"ATR_STORE_DRIVER": "sqlite"}},
		{"postgres without dsn", map[string]string{"ATR_STORE_DRIVER": "postgres"}},
		{"negative ttl", map[string]string{"ATR_RATES_REDIS_TTL": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}

	// the dsn can be completed after loading.
	t.Setenv("ATR_STORE_DRIVER", "postgres")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
	cfg.Store.DSN = "postgres://flag/atr"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "atr.yaml")
	require.NoError(t, os.WriteFile(file, []byte("store: [unclosed"), 0644))
	_, err := Load(file)
	assert.Error(t, err)
}
