// Package digest computes SHA-256 content digests for duplicate detection.
//
// Two digests are provided. Quick hashes only the leading bytes of a file
// and is cheap enough to run on every member of a size group. Full hashes
// the entire content and is the final arbiter of duplicate identity.
// A matching quick digest never implies a duplicate; a differing one
// always rules it out, since the quick range is a prefix of the full range.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Defaults and permitted ranges for digest read sizes.
const (
	DefaultQuickSize = 1024 // leading bytes hashed by Quick
	MinQuickSize     = 512
	MaxQuickSize     = 64 * 1024

	DefaultChunkSize = 8192 // read block size used by Full
	MinChunkSize     = 1024
	MaxChunkSize     = 1 << 20
)

// Provider computes file digests with configured read sizes.
type Provider struct {
	quickSize int64 // Bytes hashed by Quick
	chunkSize int64 // Read buffer size for Full
}

// New creates a Provider. Non-positive values select the defaults;
// out-of-range values are clamped to the permitted ranges.
func New(quickSize, chunkSize int64) *Provider {
	if quickSize <= 0 {
		quickSize = DefaultQuickSize
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Provider{
		quickSize: clamp(quickSize, MinQuickSize, MaxQuickSize),
		chunkSize: clamp(chunkSize, MinChunkSize, MaxChunkSize),
	}
}

// QuickSize returns the effective quick digest read size.
func (p *Provider) QuickSize() int64 { return p.quickSize }

// ChunkSize returns the effective full digest read buffer size.
func (p *Provider) ChunkSize() int64 { return p.chunkSize }

// Quick hashes the first quickSize bytes of the file (the whole file when
// smaller) and returns the hex-encoded SHA-256 digest.
func (p *Provider) Quick(path string) (string, error) {
	return hashLimited(path, p.quickSize, p.quickSize)
}

// Full hashes the entire file content, reading chunkSize bytes at a time,
// and returns the hex-encoded SHA-256 digest.
func (p *Provider) Full(path string) (string, error) {
	return hashLimited(path, -1, p.chunkSize)
}

// hashLimited hashes up to limit bytes of a file using a bufSize read buffer.
// A negative limit hashes the entire file.
func hashLimited(path string, limit, bufSize int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if limit >= 0 {
		r = io.LimitReader(f, limit)
	}

	hasher := sha256.New()
	buf := make([]byte, bufSize)
	if _, err := io.CopyBuffer(hasher, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func clamp(v, lo, hi int64) int64 {
	return min(max(v, lo), hi)
}
