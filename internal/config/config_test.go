package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "lead@example.com", cfg.Seed.Email)
	assert.Zero(t, cfg.Server.RateLimit)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  shutdown_timeout: 3s
store:
  driver: sqlite
  dsn: /tmp/board.db
log:
  level: debug
`), 0o600))

	t.Setenv("TASKBOARD_SERVER_ADDR", ":9100")
	t.Setenv("TASKBOARD_SERVER_RATE_LIMIT", "2.5")
	t.Setenv("TASKBOARD_SEED_PASSWORD", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/board.db", cfg.Store.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "s3cret", cfg.Seed.Password)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "untouched fields keep defaults")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "postgres"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Store.DSN")

	cfg = Default()
	cfg.Store.Driver = "cassandra"
	cfg.Log.Format = "xml"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Store.Driver")
	assert.Contains(t, err.Error(), "Config.Log.Format")

	cfg = Default()
	cfg.Store.Driver = "firestore"
	assert.Error(t, cfg.Validate())
	cfg.Store.ProjectID = "demo"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "store.project_id", envKey("TASKBOARD_STORE_PROJECT_ID"))
	assert.Equal(t, "server.max_body_bytes", envKey("TASKBOARD_SERVER_MAX_BODY_BYTES"))
	assert.Equal(t, "debug", envKey("TASKBOARD_DEBUG"))
}
