package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")
		t.Setenv("REDIS_ADDR", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, StorageDriverSQLite, cfg.Storage.Driver)
		assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
		assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
		assert.False(t, cfg.Redis.Enabled())
		assert.Equal(t, time.Minute, cfg.Redis.CacheTTL())
	})
	t.Run("Should read overrides", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "Memory")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("AUTH_BCRYPT_COST", "4")
		t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
		assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
		assert.True(t, cfg.Redis.Enabled())
		assert.Equal(t, 4, cfg.Auth.BcryptCost)
		assert.Zero(t, cfg.App.RequestTimeout())
	})
	t.Run("Should reject postgres without DSN", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("POSTGRES_DSN", "")
		_, err := Load()
		assert.ErrorContains(t, err, "POSTGRES_DSN")
	})
	t.Run("Should reject unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mongo")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown STORAGE_DRIVER")
	})
	t.Run("Should reject invalid redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "one")
		_, err := Load()
		assert.ErrorContains(t, err, "REDIS_DB")
	})
}
