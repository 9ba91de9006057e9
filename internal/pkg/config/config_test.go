package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: "9090"
database:
  host: db.local
  user: bookstore
  dbname: bookstore
jwt:
  secret: 0123456789abcdef0123456789abcdef
order:
  total_tolerance: 0.05
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testYAML), 0o600))
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("JWT_SECRET", "")

	t.Run("File values and defaults", func(t *testing.T) {
		cfg, err := Load(dir)

		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, 0.05, cfg.Order.TotalTolerance)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, int64(24), cfg.JWT.Expire)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Env overrides", func(t *testing.T) {
		t.Setenv("DB_HOST", "override.local")
		t.Setenv("REDIS_ADDR", "redis:6379")

		cfg, err := Load(dir)

		require.NoError(t, err)
		assert.Equal(t, "override.local", cfg.Database.Host)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Host: "h", User: "u", DBName: "d"},
			Redis:    RedisConfig{Addr: "localhost:6379"},
			JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		}
	}

	t.Run("Short secret", func(t *testing.T) {
		cfg := valid()
		cfg.JWT.Secret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Incomplete database", func(t *testing.T) {
		cfg := valid()
		cfg.Database.DBName = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("Negative tolerance", func(t *testing.T) {
		cfg := valid()
		cfg.Order.TotalTolerance = -1
		assert.Error(t, cfg.Validate())
	})
}
