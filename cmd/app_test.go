package cmd

import (
	"testing"

	"github.com/etnz/assets/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FlagsCompleteEnvironment(t *testing.T) {
	setFlag(t, configFile, "")
	t.Setenv("ATR_STORE_DRIVER", "postgres")

	setFlag(t, storeDSN, "")
	_, err := loadConfig()
	assert.Error(t, err, "postgres without a dsn")

	setFlag(t, storeDSN, "postgres://flag/atr")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://flag/atr", cfg.Store.DSN)
}

func TestLoadConfig_FlagsOverrideDriver(t *testing.T) {
	setFlag(t, configFile, "")
	t.Setenv("ATR_STORE_DRIVER", "sqlite")
	setFlag(t, storeDriver, config.DriverMemory)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
}
