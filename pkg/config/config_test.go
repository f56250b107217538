package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concreto-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorePostgres, cfg.App.Store)
	assert.Equal(t, 3, cfg.Production.MaxConflictRetries)
	assert.Equal(t, 5*time.Second, cfg.Production.LockTimeout())
	assert.Equal(t, 10, cfg.DB.MaxConns)
	assert.False(t, cfg.DB.Migrate)
	assert.True(t, cfg.App.MetricsEnabled)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_STORE", "MEMORY")
	t.Setenv("PRODUCTION_MAX_CONFLICT_RETRIES", "5")
	t.Setenv("PRODUCTION_LOCK_TIMEOUT_MS", "250")
	t.Setenv("DB_MIGRATE", "true")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.App.Store)
	assert.Equal(t, 5, cfg.Production.MaxConflictRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Production.LockTimeout())
	assert.True(t, cfg.DB.Migrate)
	assert.False(t, cfg.App.MetricsEnabled)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_Invalida(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("almacén desconocido", func(t *testing.T) {
		t.Setenv("APP_STORE", "sqlite")
		_, err := config.Load()
		assert.Error(t, err)
	})
	t.Run("reintentos negativos", func(t *testing.T) {
		t.Setenv("PRODUCTION_MAX_CONFLICT_RETRIES", "-1")
		_, err := config.Load()
		assert.Error(t, err)
	})
	t.Run("production sin secreto", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "concreto", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/concreto?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otra"
	assert.Equal(t, "postgres://otra", c.ConnectionString())
}
