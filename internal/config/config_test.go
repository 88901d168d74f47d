package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "JWT_SECRET=s3cret\nSTORAGE=memory\nSTREAM_HEARTBEAT=2s\nPORT=9090\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 2*time.Second, cfg.StreamHeartbeat)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 100, cfg.StreamInitialCount)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("STORAGE", "memory")
	t.Setenv("STREAM_BUFFER", "8")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 8, cfg.StreamBuffer)
}

func TestValidate(t *testing.T) {
	base := Config{
		JWTSecret:          "x",
		Storage:            StoragePostgres,
		DatabaseURL:        "postgres://localhost/db",
		StreamHeartbeat:    time.Second,
		StreamBuffer:       4,
		StreamInitialCount: 10,
	}
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	noURL := base
	noURL.DatabaseURL = ""
	assert.Error(t, noURL.Validate())

	badStorage := base
	badStorage.Storage = "bolt"
	assert.Error(t, badStorage.Validate())
}
