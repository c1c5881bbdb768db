package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	assert.Equal(t, "localhost:6379", v.GetString("redis.addr"))
	assert.Equal(t, 0, v.GetInt("redis.db"))
	assert.Equal(t, "", v.GetString("redis.password"))
	assert.False(t, v.GetBool("log.json"))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "satchel.toml")
	content := `
[redis]
addr = "redis.internal:6380"
db = 3

[log]
json = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "", cfg.Redis.Password, "unset values keep defaults")
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadCaches(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}
