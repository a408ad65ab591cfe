// Package metadata describes input files so that a run can be traced back to the exact bytes it read.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Metadata verification errors.
var (
	ErrNoHashFound  = errors.New("no hash given")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Metadata identifies one input file.
type Metadata struct {
	LastModify time.Time
	Path       string
	Hash       string
	Size       int64
}

// CalculateHash computes the hex SHA-256 of everything read from r.
func CalculateHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FromFile stats and hashes the file at path.
func FromFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	hash, err := CalculateHash(f)
	if err != nil {
		return nil, err
	}

	return &Metadata{
		LastModify: info.ModTime().UTC(),
		Path:       path,
		Hash:       hash,
		Size:       info.Size(),
	}, nil
}

// Verify checks that the file at path still hashes to want.
func Verify(path, want string) error {
	if want == "" {
		return ErrNoHashFound
	}

	meta, err := FromFile(path)
	if err != nil {
		return err
	}

	if meta.Hash != want {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, want, meta.Hash)
	}

	return nil
}
