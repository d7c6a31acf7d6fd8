// Package config handles run and global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig is the configuration stored in
// ~/.config/snolabib/config.yml. Everything has a working default;
// flags and environment variables override it.
type GlobalConfig struct {
	CiteprocPath string `yaml:"citeproc_path,omitempty"` // citeproc-java executable
	TemplateFile string `yaml:"template_file,omitempty"` // page template
	DelayMillis  int    `yaml:"delay_ms,omitempty"`      // pause between DBLP requests
	WorkDir      string `yaml:"work_dir,omitempty"`      // where per-author .bib files land
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "snolabib"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/snolabib/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	cfg.TemplateFile = ExpandTilde(cfg.TemplateFile)
	cfg.CiteprocPath = ExpandTilde(cfg.CiteprocPath)
	cfg.WorkDir = ExpandTilde(cfg.WorkDir)

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ExpandTilde expands a leading ~/ to the user's home directory.
func ExpandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// BibPath returns the per-author bibliography path for a username.
func BibPath(workDir, username string) string {
	return filepath.Join(workDir, username+".bib")
}

// IndexPath returns the path of the ephemeral query index next to a
// unified bibliography file.
func IndexPath(bibFile string) string {
	return bibFile + ".db"
}
