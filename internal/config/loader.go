package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // build version; "dev" enables the working-directory file
	OverridePath string // set at compile time if needed
	HomeDir      string // defaults to os.UserHomeDir
	WorkDir      string // defaults to os.Getwd
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the first configuration file found, or returns defaults.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		localPath := filepath.Join(l.workDir(), ".memeshotrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	dir := l.configDir()
	for _, name := range []string{"config.rc", "memeshot.rc"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// DefaultPath is where Save writes when no configuration file exists yet.
func (l *Loader) DefaultPath() string {
	return filepath.Join(l.configDir(), "config.rc")
}

// Save writes cfg to the file Load would read, or to DefaultPath, and returns
// the path written.
func (l *Loader) Save(cfg *Config) (string, error) {
	path := l.GetConfigPath()
	if path == "" {
		path = l.DefaultPath()
	}
	return path, SaveAs(cfg, path)
}

// SaveAs writes cfg to path, creating parent directories.
func SaveAs(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

func (l *Loader) configDir() string {
	home := l.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".config", "memeshot")
}

func (l *Loader) workDir() string {
	if l.WorkDir != "" {
		return l.WorkDir
	}
	wd, _ := os.Getwd()
	return wd
}
