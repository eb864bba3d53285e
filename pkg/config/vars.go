package config

import (
	"path/filepath"
)

// AppName names the directories GNtaxon keeps under the home directory.
var AppName = "gntaxon"

// ConfigDir is ~/.config/gntaxon.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir is ~/.cache/gntaxon. It holds the SQLite store and exported
// taxon cache files.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir is ~/.local/share/gntaxon/logs.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// StoreFilePath returns the SQLite store location. Store.SQLitePath wins
// over CacheDir/taxa.sqlite.
func (c *Config) StoreFilePath() string {
	if c.Store.SQLitePath != "" {
		return c.Store.SQLitePath
	}
	return filepath.Join(CacheDir(c.HomeDir), "taxa.sqlite")
}
