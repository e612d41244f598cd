package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	c, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":8888", c.Server.Addr)
	assert.Equal(t, "pocketledger.db", c.Database.Path)
	assert.Equal(t, "local", c.Lock.Backend)
	assert.Equal(t, 10*time.Second, c.Lock.Expiry)
	assert.Equal(t, ledger.WarningModeLegacy, c.Budget.WarningMode)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/ledger.db
log:
  level: debug
  format: json
lock:
  backend: redis
  expiry: 3s
redis:
  addr: redis:6379
budget:
  warning_mode: ratio
  warning_ratio: "0.9"
`), 0o644))

	t.Setenv("POCKETLEDGER_LOG_LEVEL", "warn")
	t.Setenv("POCKETLEDGER_USER", "user-123")

	c, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ledger.db", c.Database.Path)
	assert.Equal(t, "warn", c.Log.Level, "env overrides file")
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "redis", c.Lock.Backend)
	assert.Equal(t, 3*time.Second, c.Lock.Expiry)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
	assert.Equal(t, "user-123", c.User)

	p, err := c.Budget.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, ledger.SignalWarning, p.Evaluate(decimal.NewFromInt(91), decimal.NewFromInt(100)))
	assert.Equal(t, ledger.SignalNone, p.Evaluate(decimal.NewFromInt(90), decimal.NewFromInt(100)))
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"lock backend": "lock:\n  backend: etcd\n",
		"warning mode": "budget:\n  warning_mode: loud\n",
		"ratio":        "budget:\n  warning_mode: ratio\n  warning_ratio: lots\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(viper.New(), path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
