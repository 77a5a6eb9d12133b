package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvConfigFile, "")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, defaultRadius, cfg.Radius)
	assert.Zero(t, cfg.Sigma)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Empty(t, cfg.OutputDir)
	assert.False(t, cfg.Debug)
	require.NotNil(t, cfg.Redis)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, defaultStatusStream, cfg.Redis.Stream)
	assert.Equal(t, int64(defaultStreamMaxLen), cfg.Redis.MaxLen)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvConfigFile, "")
	t.Setenv("BLURBENCH_RADIUS", "9")
	t.Setenv("BLURBENCH_WORKERS", "3")
	t.Setenv("BLURBENCH_REDIS_ADDR", "localhost:6379")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Radius)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
radius: 2
sigma: 1.5
workers: 6
output_dir: /tmp/blurred
redis:
  addr: redis:6379
  stream: custom
`), 0644))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Radius)
	assert.Equal(t, 1.5, cfg.Sigma)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "/tmp/blurred", cfg.OutputDir)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "custom", cfg.Redis.Stream)
	assert.Equal(t, int64(defaultStreamMaxLen), cfg.Redis.MaxLen)
}

func TestLoad_DefaultConfigFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv(EnvConfigFile, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("radius: 4\n"), 0644))

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Radius)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Sigma: -1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Radius: 0}
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults_KeepsExistingValues(t *testing.T) {
	cfg := &Config{Workers: 2, Redis: &RedisConfig{Stream: "s", MaxLen: 5}}
	applyDefaults(cfg)

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "s", cfg.Redis.Stream)
	assert.Equal(t, int64(5), cfg.Redis.MaxLen)
}
