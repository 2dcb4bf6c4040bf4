// Package settings holds the host-side configuration for the HLE layer:
// where installed content lives, where extracted caches go, and how verbose
// logging should be. Values are loaded from a YAML file; a missing file
// yields the defaults.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the crescent.yaml configuration file.
type Settings struct {
	// CacheDir is the base directory for extracted offline web caches.
	CacheDir string `yaml:"cache_dir"`
	// ContentDir holds installed title content archives.
	ContentDir string `yaml:"content_dir"`
	// SystemContentDir holds system-resident content archives.
	SystemContentDir string `yaml:"system_content_dir"`
	// ModsDir holds per-title mod overlays.
	ModsDir string `yaml:"mods_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the settings used when no config file is present,
// rooted under dataDir.
func Default(dataDir string) Settings {
	return Settings{
		CacheDir:         filepath.Join(dataDir, "cache"),
		ContentDir:       filepath.Join(dataDir, "content"),
		SystemContentDir: filepath.Join(dataDir, "system"),
		ModsDir:          filepath.Join(dataDir, "mods"),
		LogLevel:         "info",
	}
}

// Load reads a YAML settings file. A missing file returns Default(dataDir)
// without error; a malformed file is an error.
func Load(path, dataDir string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(dataDir), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("cannot read settings file %q: %w", path, err)
	}

	s := Default(dataDir)
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return s, nil
}
