package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setWorkDir runs the test from a temp dir so a developer's local
// salespulse.yaml never leaks into assertions.
func setWorkDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	setWorkDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "data/sales.csv", cfg.Dataset.SourceFile)
	assert.Equal(t, 30*time.Second, cfg.Dataset.WatchInterval)
	assert.Equal(t, 10, cfg.Dataset.TopProducts)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, ":8080", cfg.GetListenAddr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	setWorkDir(t)
	t.Setenv("SALESPULSE_SERVER_PORT", "9090")
	t.Setenv("SALESPULSE_DATASET_SOURCE_FILE", "/srv/sales.csv")
	t.Setenv("SALESPULSE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/sales.csv", cfg.Dataset.SourceFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := setWorkDir(t)

	yaml := `
server:
  port: 7070
dataset:
  source_file: custom/sales.csv
  watch_interval: 5s
`
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	t.Setenv("SALESPULSE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "custom/sales.csv", cfg.Dataset.SourceFile)
	assert.Equal(t, 5*time.Second, cfg.Dataset.WatchInterval)
}

func TestLoad_YAMLFileOverridesDefaults(t *testing.T) {
	dir := setWorkDir(t)

	// The file value must win over the envconfig struct default (8080) even
	// though the default leaves the field non-zero.
	yaml := "server:\n  port: 7070\n"
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	t.Setenv("SALESPULSE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "data/sales.csv", cfg.Dataset.SourceFile,
		"fields the file omits keep their defaults")
}

func TestLoad_EnvBeatsYAMLFile(t *testing.T) {
	dir := setWorkDir(t)

	yaml := "server:\n  port: 7070\ndataset:\n  source_file: file/sales.csv\n"
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	t.Setenv("SALESPULSE_CONFIG", path)
	t.Setenv("SALESPULSE_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "an explicit env var wins over the file")
	assert.Equal(t, "file/sales.csv", cfg.Dataset.SourceFile,
		"file values the env does not touch still apply")
}

func TestLoad_InvalidValues(t *testing.T) {
	setWorkDir(t)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SALESPULSE_SERVER_PORT", "70000"},
		{"bad log level", "SALESPULSE_LOGGING_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPaths_EnsureDirectories(t *testing.T) {
	dir := setWorkDir(t)

	paths, err := NewPaths(PathsConfig{DataDir: "data", ExportsDir: "exports", LogsDir: "logs"})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	for _, sub := range []string{"data", "exports", "logs"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir())
	}

	assert.Equal(t, filepath.Join(dir, "exports", "out.csv"), paths.GetExportPath("out.csv"))
	assert.Equal(t, filepath.Join(dir, "data", "sales.csv"), paths.GetDataPath("sales.csv"))
}
