// Package config reads the dupescan settings file.
//
// Settings live in an INI file with flat keys in the top-level section:
// quick_hash_size, chunk_size, and auto_save. A missing file is created
// with defaults on first load. Bad values fall back to defaults on read;
// an unparseable file is an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-ini/ini"

	"github.com/rendayigit/dupescan/internal/digest"
)

const (
	keyQuickHashSize = "quick_hash_size"
	keyChunkSize     = "chunk_size"
	keyAutoSave      = "auto_save"
)

// Config wraps the INI settings file.
type Config struct {
	path string
	ini  *ini.File
}

// DefaultPath returns the per-user settings location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "dupescan", "config.ini"), nil
}

// Load reads the settings file at path, creating it with defaults when it
// does not exist.
func Load(path string) (*Config, error) {
	cfg := &Config{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		cfg.setDefaults()
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ini = f
	return cfg, nil
}

func (c *Config) setDefaults() {
	sec := c.ini.Section("")
	sec.Key(keyQuickHashSize).SetValue(strconv.FormatInt(digest.DefaultQuickSize, 10))
	sec.Key(keyChunkSize).SetValue(strconv.FormatInt(digest.DefaultChunkSize, 10))
	sec.Key(keyAutoSave).SetValue("false")
}

// QuickHashSize returns the quick pass prefix length in bytes.
func (c *Config) QuickHashSize() int64 {
	return c.int64Key(keyQuickHashSize, digest.DefaultQuickSize, digest.MinQuickSize, digest.MaxQuickSize)
}

// ChunkSize returns the full pass read buffer size in bytes.
func (c *Config) ChunkSize() int64 {
	return c.int64Key(keyChunkSize, digest.DefaultChunkSize, digest.MinChunkSize, digest.MaxChunkSize)
}

// AutoSave reports whether completed scans are recorded to history
// automatically.
func (c *Config) AutoSave() bool {
	v, err := c.ini.Section("").Key(keyAutoSave).Bool()
	if err != nil {
		return false
	}
	return v
}

// int64Key reads an integer key, falling back to def when the value is
// missing, malformed, or outside [lo, hi].
func (c *Config) int64Key(name string, def, lo, hi int64) int64 {
	v, err := c.ini.Section("").Key(name).Int64()
	if err != nil || v < lo || v > hi {
		return def
	}
	return v
}

// Path returns the backing file location.
func (c *Config) Path() string {
	return c.path
}

// Save writes the settings file, creating parent directories as needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return c.ini.SaveTo(c.path)
}
