package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Section 1: Digest Correctness Tests
// =============================================================================

// TestFullDigestMatchesDirectHash tests that Full produces the same digest
// as hashing the file content in one shot.
func TestFullDigestMatchesDirectHash(t *testing.T) {
	root := t.TempDir()
	content := []byte("the quick brown fox jumps over the lazy dog")
	path := filepath.Join(root, "file.txt")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(0, 0)
	got, err := p.Full(path)
	if err != nil {
		t.Fatalf("Full() error: %v", err)
	}

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("Full() = %q, want %q", got, want)
	}
}

// TestQuickDigestCoversPrefixOnly tests that Quick hashes exactly the
// leading quickSize bytes of larger files.
func TestQuickDigestCoversPrefixOnly(t *testing.T) {
	root := t.TempDir()

	// 2000 bytes: first 1024 identical, tails differ
	prefix := strings.Repeat("A", 1024)
	a := filepath.Join(root, "a.bin")
	b := filepath.Join(root, "b.bin")
	if err := os.WriteFile(a, []byte(prefix+strings.Repeat("X", 976)), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte(prefix+strings.Repeat("Y", 976)), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(1024, 0)

	quickA, err := p.Quick(a)
	if err != nil {
		t.Fatalf("Quick(a) error: %v", err)
	}
	quickB, err := p.Quick(b)
	if err != nil {
		t.Fatalf("Quick(b) error: %v", err)
	}
	if quickA != quickB {
		t.Error("files with identical 1024-byte prefix should share quick digest")
	}

	fullA, err := p.Full(a)
	if err != nil {
		t.Fatalf("Full(a) error: %v", err)
	}
	fullB, err := p.Full(b)
	if err != nil {
		t.Fatalf("Full(b) error: %v", err)
	}
	if fullA == fullB {
		t.Error("files with different tails should have different full digests")
	}

	// Quick digest of a prefix-sized file equals sha256 of the prefix
	sum := sha256.Sum256([]byte(prefix))
	if quickA != hex.EncodeToString(sum[:]) {
		t.Errorf("Quick() = %q, want sha256 of first 1024 bytes", quickA)
	}
}

// TestQuickEqualsFullForShortFiles tests that Quick and Full agree when
// the file fits within the quick read size.
func TestQuickEqualsFullForShortFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "short.txt")
	if err := os.WriteFile(path, []byte("short content"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(0, 0)
	quick, err := p.Quick(path)
	if err != nil {
		t.Fatalf("Quick() error: %v", err)
	}
	full, err := p.Full(path)
	if err != nil {
		t.Fatalf("Full() error: %v", err)
	}

	if quick != full {
		t.Errorf("Quick() = %q, Full() = %q; want equal for file shorter than quick size", quick, full)
	}
}

// TestDigestDeterminism tests that repeated hashing yields identical digests.
func TestDigestDeterminism(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file.bin")
	if err := os.WriteFile(path, []byte(strings.Repeat("data", 5000)), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(0, 0)
	first, err := p.Full(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		got, err := p.Full(path)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Errorf("run %d: Full() = %q, want %q", i, got, first)
		}
	}
}

// =============================================================================
// Section 2: Error Handling Tests
// =============================================================================

// TestDigestMissingFile tests that hashing a missing file returns an error.
func TestDigestMissingFile(t *testing.T) {
	p := New(0, 0)
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	if _, err := p.Quick(missing); err == nil {
		t.Error("Quick() on missing file should return error")
	}
	if _, err := p.Full(missing); err == nil {
		t.Error("Full() on missing file should return error")
	}
}

// =============================================================================
// Section 3: Size Configuration Tests (table-driven)
// =============================================================================

// TestNewClampsSizes tests default selection and range clamping.
func TestNewClampsSizes(t *testing.T) {
	tests := []struct {
		name      string
		quickSize int64
		chunkSize int64
		wantQuick int64
		wantChunk int64
	}{
		{"defaults on zero", 0, 0, DefaultQuickSize, DefaultChunkSize},
		{"defaults on negative", -1, -5, DefaultQuickSize, DefaultChunkSize},
		{"in-range preserved", 2048, 16384, 2048, 16384},
		{"quick below minimum", 100, 8192, MinQuickSize, 8192},
		{"quick above maximum", 1 << 20, 8192, MaxQuickSize, 8192},
		{"chunk below minimum", 1024, 100, 1024, MinChunkSize},
		{"chunk above maximum", 1024, 1 << 24, 1024, MaxChunkSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.quickSize, tt.chunkSize)
			if p.QuickSize() != tt.wantQuick {
				t.Errorf("QuickSize() = %d, want %d", p.QuickSize(), tt.wantQuick)
			}
			if p.ChunkSize() != tt.wantChunk {
				t.Errorf("ChunkSize() = %d, want %d", p.ChunkSize(), tt.wantChunk)
			}
		})
	}
}

// TestChunkSizeDoesNotAffectDigest tests that the read buffer size has no
// effect on the resulting full digest.
func TestChunkSizeDoesNotAffectDigest(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file.bin")
	if err := os.WriteFile(path, []byte(strings.Repeat("z", 100000)), 0o644); err != nil {
		t.Fatal(err)
	}

	small := New(1024, MinChunkSize)
	large := New(1024, MaxChunkSize)

	d1, err := small.Full(path)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := large.Full(path)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Errorf("digest depends on chunk size: %q vs %q", d1, d2)
	}
}
