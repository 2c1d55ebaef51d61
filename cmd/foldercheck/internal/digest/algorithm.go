// Package digest computes content fingerprints for scanned entries.
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/minio/highwayhash"
)

// Algorithm names a digest function. Every algorithm yields 32 hex characters.
type Algorithm string

const (
	// HighwayHash is HighwayHash-128 with a fixed key. It is fast and good
	// enough to detect change, but it is not a security primitive.
	HighwayHash Algorithm = "highwayhash"

	// MD5 matches snapshots produced by older checkresult tooling.
	MD5 Algorithm = "md5"

	// DefaultAlgorithm is used when none is configured.
	DefaultAlgorithm = HighwayHash
)

// Algorithms lists the supported algorithms.
var Algorithms = []Algorithm{HighwayHash, MD5}

// highwayKey must stay fixed: changing it changes every digest.
var highwayKey = []byte("foldercheck/highwayhash/key/v1.0")

// ParseAlgorithm validates a user-supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return DefaultAlgorithm, nil
	case HighwayHash, MD5:
		return a, nil
	}
	return "", fmt.Errorf("unknown digest algorithm %q (want one of %v)", s, Algorithms)
}

// New returns a fresh hash.Hash for a.
func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case HighwayHash, "":
		return highwayhash.New128(highwayKey)
	case MD5:
		return md5.New(), nil
	}
	return nil, fmt.Errorf("unknown digest algorithm %q", string(a))
}

const chunkSize = 64 << 10

var chunkPool = sync.Pool{
	New: func() any {
		buf := make([]byte, chunkSize)
		return &buf
	},
}

// File streams name from fsys through a and returns the hex digest.
func File(fsys fs.FS, name string, a Algorithm) (string, error) {
	h, err := a.New()
	if err != nil {
		return "", err
	}

	f, err := fsys.Open(name)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	buf := chunkPool.Get().(*[]byte)
	defer chunkPool.Put(buf)

	if _, err := io.CopyBuffer(h, f, *buf); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bytes returns the hex digest of data.
func Bytes(data []byte, a Algorithm) (string, error) {
	h, err := a.New()
	if err != nil {
		return "", err
	}
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
