package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Paths holds the resolved absolute paths the application works with. All
// relative configuration paths resolve against the working directory so the
// binary behaves the same whether launched from a checkout or a package.
type Paths struct {
	BaseDir    string
	DataDir    string
	ExportsDir string
	LogsDir    string
}

var (
	pathsOnce sync.Once
	paths     *Paths
	pathsErr  error
)

// GetPaths returns the process-wide resolved paths, computing them once.
func GetPaths() (*Paths, error) {
	pathsOnce.Do(func() {
		paths, pathsErr = resolvePaths(PathsConfig{
			DataDir:    "data",
			ExportsDir: "exports",
			LogsDir:    "logs",
		})
	})
	return paths, pathsErr
}

// NewPaths resolves paths from an explicit configuration, bypassing the
// process-wide cache. Used by tests and by Load.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	return resolvePaths(cfg)
}

func resolvePaths(cfg PathsConfig) (*Paths, error) {
	base, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	p := &Paths{
		BaseDir:    base,
		DataDir:    resolve(base, cfg.DataDir, "data"),
		ExportsDir: resolve(base, cfg.ExportsDir, "exports"),
		LogsDir:    resolve(base, cfg.LogsDir, "logs"),
	}
	return p, nil
}

func resolve(base, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// EnsureDirectories creates every directory the application writes to.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetExportPath returns the absolute path for an export artifact.
func (p *Paths) GetExportPath(name string) string {
	return filepath.Join(p.ExportsDir, name)
}

// GetDataPath returns the absolute path for a data file.
func (p *Paths) GetDataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.DataDir, name)
}

// GetLogPath returns the absolute path for a log file.
func (p *Paths) GetLogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}

// FileExists checks if a file exists at the given path
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
