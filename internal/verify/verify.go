// Package verify checks that a copied media file matches its source before
// the source is removed.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Result describes the verified destination.
type Result struct {
	Size int64
	// Checksum is the SHA-256 of the destination, empty unless hashing is on.
	Checksum string
}

type Verifier struct {
	hashVerify bool
}

func New(hashVerify bool) *Verifier {
	return &Verifier{hashVerify: hashVerify}
}

// Verify compares destPath against expectedSize and, when hashing is on,
// against the content of srcPath.
func (v *Verifier) Verify(srcPath, destPath string, expectedSize int64) (Result, error) {
	destInfo, err := os.Stat(destPath)
	if err != nil {
		return Result{}, fmt.Errorf("destination file not found: %w", err)
	}

	if destInfo.Size() != expectedSize {
		return Result{}, fmt.Errorf("size mismatch: expected %d, got %d", expectedSize, destInfo.Size())
	}

	res := Result{Size: destInfo.Size()}
	if !v.hashVerify {
		return res, nil
	}

	srcHash, err := Checksum(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to hash source: %w", err)
	}

	destHash, err := Checksum(destPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to hash destination: %w", err)
	}

	if srcHash != destHash {
		return Result{}, fmt.Errorf("hash mismatch: src=%s, dest=%s", srcHash, destHash)
	}

	res.Checksum = destHash
	return res, nil
}

// Checksum returns the hex SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
