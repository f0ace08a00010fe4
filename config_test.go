package remotelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 23, cfg.Port)
	assert.Equal(t, 1, cfg.Backlog)
	assert.Equal(t, 30*time.Second, cfg.AcceptTimeout)
	assert.Equal(t, 30*time.Second, cfg.IOTimeout)
	assert.Equal(t, "tiT", cfg.ReservedTask)
	assert.Equal(t, 1024, cfg.BufferCapacity)
	assert.Zero(t, cfg.AsyncQueue)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "remotelog.yaml")
	data := []byte(`port: 9527
backlog: 2
accept_timeout: 5s
io_timeout: 250ms
reserved_task_name: netif
format_buffer_capacity: 256
async_queue: 64
`)
	require.NoError(t, os.WriteFile(p, data, 0600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, 9527, cfg.Port)
	assert.Equal(t, 2, cfg.Backlog)
	assert.Equal(t, 5*time.Second, cfg.AcceptTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.IOTimeout)
	assert.Equal(t, "netif", cfg.ReservedTask)
	assert.Equal(t, 256, cfg.BufferCapacity)
	assert.Equal(t, 64, cfg.AsyncQueue)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("REMOTELOG_PORT", "2323")
	t.Setenv("REMOTELOG_ACCEPT_TIMEOUT", "1m")
	t.Setenv("REMOTELOG_IO_TIMEOUT", "2s")
	t.Setenv("REMOTELOG_RESERVED_TASK", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 2323, cfg.Port)
	assert.Equal(t, time.Minute, cfg.AcceptTimeout)
	assert.Equal(t, 2*time.Second, cfg.IOTimeout)
	assert.Equal(t, "", cfg.ReservedTask)
}

func TestLoadConfigBadEnv(t *testing.T) {
	t.Setenv("REMOTELOG_PORT", "telnet")

	_, err := LoadConfig("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"negative port", func(c *Config) { c.Port = -1 }},
		{"no backlog", func(c *Config) { c.Backlog = 0 }},
		{"negative accept timeout", func(c *Config) { c.AcceptTimeout = -time.Second }},
		{"negative io timeout", func(c *Config) { c.IOTimeout = -time.Second }},
		{"empty buffer", func(c *Config) { c.BufferCapacity = 0 }},
		{"negative queue", func(c *Config) { c.AsyncQueue = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestWithConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 9527
	cfg.Backlog = 4
	cfg.IOTimeout = time.Second
	cfg.ReservedTask = "netif"
	cfg.BufferCapacity = 64
	cfg.AsyncQueue = 8

	r := New(NewHub(&recordSink{}), WithConfig(cfg))

	assert.Equal(t, 9527, r.port)
	assert.Equal(t, 4, r.backlog)
	assert.Equal(t, time.Second, r.ioTimeout)
	assert.Equal(t, "netif", r.reserved)
	assert.Equal(t, 64, r.capacity)
	assert.Equal(t, 64, cap(r.buf))
	assert.Equal(t, 8, r.queueLen)
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "remotelog.yaml"), []byte("port: 1\n"), 0600))
	t.Chdir(dir)

	p, err := FindConfig("remotelog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "remotelog.yaml", filepath.Base(p))

	_, err = FindConfig("nothing-here.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
