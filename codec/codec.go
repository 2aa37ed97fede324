// Package codec persists dataset values to files on disk.
//
// The cache protocol treats a codec as an opaque round-trip format: whatever
// Write puts on disk, Read must reproduce exactly. The JSON codec in this
// package wraps the payload in a digest-carrying envelope and compresses it
// with zstd, so corrupt files fail loudly on read instead of silently
// deserializing garbage.
package codec

import "errors"

// Codec serializes dataset values to and from a file path.
//
// Write must be atomic: a failed write may not leave a file behind that a
// later existence check would report as a valid cache entry.
type Codec[T any] interface {
	// Write persists value at path, creating parent directories as needed.
	Write(value T, path string) error

	// Read loads the value previously written at path.
	Read(path string) (T, error)
}

// ErrDigestMismatch is returned when a file's payload does not match the
// digest recorded in its envelope.
var ErrDigestMismatch = errors.New("payload digest mismatch")
