package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Section 1: Creation and Defaults Tests
// =============================================================================

// TestLoadCreatesMissingFile tests that a first load writes a defaults file.
func TestLoadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("defaults file was not written: %v", err)
	}
	for _, key := range []string{"quick_hash_size", "chunk_size", "auto_save"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("defaults file missing key %q:\n%s", key, data)
		}
	}

	if got := cfg.QuickHashSize(); got != 1024 {
		t.Errorf("QuickHashSize() = %d, want 1024", got)
	}
	if got := cfg.ChunkSize(); got != 8192 {
		t.Errorf("ChunkSize() = %d, want 8192", got)
	}
	if cfg.AutoSave() {
		t.Error("AutoSave() = true, want false")
	}
}

// TestLoadCreatesNestedDirectories tests creation under a missing parent.
func TestLoadCreatesNestedDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "config.ini")

	if _, err := Load(path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults file missing: %v", err)
	}
}

// =============================================================================
// Section 2: Value Reading Tests
// =============================================================================

// TestLoadReadsValues tests reading an existing settings file.
func TestLoadReadsValues(t *testing.T) {
	path := writeConfig(t, "quick_hash_size = 2048\nchunk_size = 16384\nauto_save = true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.QuickHashSize(); got != 2048 {
		t.Errorf("QuickHashSize() = %d, want 2048", got)
	}
	if got := cfg.ChunkSize(); got != 16384 {
		t.Errorf("ChunkSize() = %d, want 16384", got)
	}
	if !cfg.AutoSave() {
		t.Error("AutoSave() = false, want true")
	}
}

// TestBadValuesFallBack tests that malformed and out-of-range values read
// as defaults.
func TestBadValuesFallBack(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantQuick int64
		wantChunk int64
	}{
		{"quick size below range", "quick_hash_size = 100\n", 1024, 8192},
		{"quick size above range", "quick_hash_size = 1048576\n", 1024, 8192},
		{"chunk size below range", "chunk_size = 10\n", 1024, 8192},
		{"chunk size above range", "chunk_size = 10485760\n", 1024, 8192},
		{"non-numeric quick size", "quick_hash_size = banana\n", 1024, 8192},
		{"missing keys", "\n", 1024, 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got := cfg.QuickHashSize(); got != tt.wantQuick {
				t.Errorf("QuickHashSize() = %d, want %d", got, tt.wantQuick)
			}
			if got := cfg.ChunkSize(); got != tt.wantChunk {
				t.Errorf("ChunkSize() = %d, want %d", got, tt.wantChunk)
			}
		})
	}
}

// TestBadAutoSaveFallsBack tests that an unparseable boolean reads as false.
func TestBadAutoSaveFallsBack(t *testing.T) {
	cfg, err := Load(writeConfig(t, "auto_save = maybe\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AutoSave() {
		t.Error("AutoSave() = true for unparseable value, want false")
	}
}

// TestUnparseableFileFails tests that a broken INI file is a load error.
func TestUnparseableFileFails(t *testing.T) {
	if _, err := Load(writeConfig(t, "[unclosed\n")); err == nil {
		t.Error("expected error for unparseable file")
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
