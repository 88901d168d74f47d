package database

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// unreachableDSN points at a port nothing listens on.
const unreachableDSN = "host=127.0.0.1 port=1 user=ideomatch dbname=ideomatch sslmode=disable connect_timeout=1"

func TestGormWriterRoutesToZerolog(t *testing.T) {
	var buf bytes.Buffer
	w := gormWriter{log: zerolog.New(&buf).With().Str("component", "database").Logger()}

	w.Printf("slow query %dms: %s", 250, "SELECT 1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "database", line["component"])
	assert.Equal(t, "slow query 250ms: SELECT 1", line["message"])
}

func TestConnectFailsOnUnreachableDatabase(t *testing.T) {
	db, err := Connect(unreachableDSN)
	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestMigrateWrapsDriverErrors(t *testing.T) {
	db, err := gorm.Open(postgres.Open(unreachableDSN), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.NoError(t, err)

	err = Migrate(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to migrate database")
}
