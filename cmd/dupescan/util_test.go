package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rendayigit/dupescan/internal/config"
)

// =============================================================================
// Section 1: Size Parsing Tests
// =============================================================================

// TestParseSizeValid tests valid size strings.
// Note: humanize.ParseBytes uses SI units (decimal) for KB/MB/GB (1000-based)
// and IEC units (binary) for KiB/MiB/GiB (1024-based).
func TestParseSizeValid(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		// SI units (decimal, 1000-based)
		{"1k", 1000},
		{"1K", 1000},
		{"1kb", 1000},
		{"1KB", 1000},
		{"1m", 1000000},
		{"1M", 1000000},

		// No suffix (bytes)
		{"1234", 1234},
		{"0", 0},

		// IEC suffixes (binary, 1024-based)
		{"512B", 512},
		{"1KiB", 1024},
		{"64KiB", 65536},
		{"1MiB", 1048576},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSize(tt.input)
			if err != nil {
				t.Fatalf("parseSize(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// TestParseSizeInvalid tests invalid size strings.
func TestParseSizeInvalid(t *testing.T) {
	tests := []string{
		"invalid",
		"abc",
		"1.5.5",
		"--100",
		"-1k",
		"",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := parseSize(input); err == nil {
				t.Errorf("parseSize(%q) should return error", input)
			}
		})
	}
}

// =============================================================================
// Section 2: Extension Normalization Tests
// =============================================================================

// TestNormalizeExtensions tests trimming, lowercasing, and dot-prefixing.
func TestNormalizeExtensions(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"already normalized", []string{".jpg", ".png"}, []string{".jpg", ".png"}},
		{"missing dots", []string{"jpg", "png"}, []string{".jpg", ".png"}},
		{"mixed case", []string{".JPG", "Png"}, []string{".jpg", ".png"}},
		{"surrounding whitespace", []string{" .jpg ", "\tpng"}, []string{".jpg", ".png"}},
		{"empty entries dropped", []string{"", " ", ".jpg"}, []string{".jpg"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeExtensions(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("normalizeExtensions(%v) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("normalizeExtensions(%v)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// =============================================================================
// Section 3: Size Resolution Tests
// =============================================================================

// TestResolveSizesFromSettings tests that empty flags fall through to
// settings-file values.
func TestResolveSizesFromSettings(t *testing.T) {
	cfg := loadTestConfig(t, "quick_hash_size = 2048\nchunk_size = 16384\n")

	quick, chunk, err := resolveSizes(cfg, "", "")
	if err != nil {
		t.Fatalf("resolveSizes() error: %v", err)
	}
	if quick != 2048 {
		t.Errorf("quick = %d, want 2048", quick)
	}
	if chunk != 16384 {
		t.Errorf("chunk = %d, want 16384", chunk)
	}
}

// TestResolveSizesFlagOverride tests that flags win over settings.
func TestResolveSizesFlagOverride(t *testing.T) {
	cfg := loadTestConfig(t, "quick_hash_size = 2048\nchunk_size = 16384\n")

	quick, chunk, err := resolveSizes(cfg, "4KiB", "32KiB")
	if err != nil {
		t.Fatalf("resolveSizes() error: %v", err)
	}
	if quick != 4096 {
		t.Errorf("quick = %d, want 4096", quick)
	}
	if chunk != 32768 {
		t.Errorf("chunk = %d, want 32768", chunk)
	}
}

// TestResolveSizesRejectsOutOfRange tests that out-of-range flags are hard
// errors rather than silent clamps.
func TestResolveSizesRejectsOutOfRange(t *testing.T) {
	cfg := loadTestConfig(t, "")

	tests := []struct {
		name     string
		quickStr string
		chunkStr string
		wantIn   string
	}{
		{"quick too small", "100", "", "--quick-size"},
		{"quick too large", "1MiB", "", "--quick-size"},
		{"chunk too small", "", "512", "--chunk-size"},
		{"chunk too large", "", "16MiB", "--chunk-size"},
		{"quick unparseable", "banana", "", "--quick-size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := resolveSizes(cfg, tt.quickStr, tt.chunkStr)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("error = %v, want it to mention %s", err, tt.wantIn)
			}
		})
	}
}

// =============================================================================
// Section 4: Path Helper Tests
// =============================================================================

// TestHistoryPathAlongsideSettings tests that the history database shares
// the settings directory.
func TestHistoryPathAlongsideSettings(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "config.ini"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := historyPath(cfg), filepath.Join(dir, "history.db"); got != want {
		t.Errorf("historyPath() = %q, want %q", got, want)
	}
}

// TestParseScanID tests ID argument parsing.
func TestParseScanID(t *testing.T) {
	if id, err := parseScanID("42"); err != nil || id != 42 {
		t.Errorf("parseScanID(42) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		if _, err := parseScanID(bad); err == nil {
			t.Errorf("parseScanID(%q) should return error", bad)
		}
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

func loadTestConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}
