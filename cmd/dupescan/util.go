package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/rendayigit/dupescan/internal/config"
	"github.com/rendayigit/dupescan/internal/digest"
)

// Shared color helpers for terminal output.
var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// parseSize parses a human-readable size string into bytes.
// Supports formats: "100", "1K", "1MB", "1GiB", etc.
func parseSize(s string) (int64, error) {
	bytes, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(bytes), nil
}

// normalizeExtensions trims, lowercases, and dot-prefixes extension
// filters, so "jpg", " JPG", and ".jpg" all mean the same filter.
func normalizeExtensions(exts []string) []string {
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return normalized
}

// loadSettings loads the settings file named by the --config flag, or the
// per-user default when the flag is empty.
func loadSettings(flagPath string) (*config.Config, error) {
	path := flagPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// historyPath returns the history database location. It lives alongside
// the settings file, so --config redirects both.
func historyPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.Path()), "history.db")
}

// resolveSizes merges size flags over settings-file values. Flag values
// must be in range; settings fall back to defaults on their own.
func resolveSizes(cfg *config.Config, quickStr, chunkStr string) (quick, chunk int64, err error) {
	quick = cfg.QuickHashSize()
	if quickStr != "" {
		quick, err = parseSize(quickStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --quick-size: %w", err)
		}
		if quick < digest.MinQuickSize || quick > digest.MaxQuickSize {
			return 0, 0, fmt.Errorf("--quick-size %s out of range (%d-%d bytes)",
				quickStr, digest.MinQuickSize, digest.MaxQuickSize)
		}
	}

	chunk = cfg.ChunkSize()
	if chunkStr != "" {
		chunk, err = parseSize(chunkStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --chunk-size: %w", err)
		}
		if chunk < digest.MinChunkSize || chunk > digest.MaxChunkSize {
			return 0, 0, fmt.Errorf("--chunk-size %s out of range (%d-%d bytes)",
				chunkStr, digest.MinChunkSize, digest.MaxChunkSize)
		}
	}

	return quick, chunk, nil
}
