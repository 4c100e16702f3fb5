package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"etalase/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "local", cfg.AssetBackend)
	assert.Equal(t, "/uploads", cfg.UploadURLPrefix)
	assert.InDelta(t, 0.34, cfg.SearchThreshold, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.False(t, cfg.SeedDemo)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("SEARCH_THRESHOLD", "0.5")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("JWT_SECRET", "a-much-longer-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.InDelta(t, 0.5, cfg.SearchThreshold, 1e-9)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, "a-much-longer-secret", cfg.JWTSecret)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ASSET_BACKEND: gcs\nGCS_BUCKET: catalog-images\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "gcs", cfg.AssetBackend)
	assert.Equal(t, "catalog-images", cfg.GCSBucket)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":      {"DB_DRIVER": "mysql"},
		"gcs without bucket":  {"ASSET_BACKEND": "gcs"},
		"threshold too large": {"SEARCH_THRESHOLD": "1.5"},
		"short secret":        {"JWT_SECRET": "short"},
		"missing config file": {"CONFIG_FILE": "/does/not/exist.yaml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
