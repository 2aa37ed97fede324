package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
)

const defaultDirPerm = 0o700

// envelope is the on-disk record: the JSON payload plus its digest.
type envelope struct {
	Digest  digest.Digest   `json:"digest"`
	Payload json.RawMessage `json:"payload"`
}

// JSON is a Codec that stores values as zstd-compressed JSON envelopes.
type JSON[T any] struct {
	level   zstd.EncoderLevel
	dirPerm os.FileMode
}

// JSONOption configures a JSON codec.
type JSONOption func(*jsonConfig)

type jsonConfig struct {
	level   zstd.EncoderLevel
	dirPerm os.FileMode
}

// WithEncoderLevel sets the zstd compression level. Defaults to
// zstd.SpeedDefault.
func WithEncoderLevel(level zstd.EncoderLevel) JSONOption {
	return func(c *jsonConfig) {
		c.level = level
	}
}

// WithDirPerm sets the permissions used when creating parent directories.
func WithDirPerm(mode os.FileMode) JSONOption {
	return func(c *jsonConfig) {
		c.dirPerm = mode
	}
}

// NewJSON creates a JSON codec for values of type T.
func NewJSON[T any](opts ...JSONOption) JSON[T] {
	cfg := jsonConfig{
		level:   zstd.SpeedDefault,
		dirPerm: defaultDirPerm,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return JSON[T]{level: cfg.level, dirPerm: cfg.dirPerm}
}

// Write persists value at path. The file is written to a temporary location
// in the same directory and renamed into place, so a failed write never
// publishes a partial file.
func (c JSON[T]) Write(value T, path string) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	raw, err := json.Marshal(envelope{
		Digest:  digest.FromBytes(payload),
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "tablecache-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(c.level))
	if err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close zstd encoder: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Read loads the value previously written at path, verifying the payload
// against the envelope's digest before decoding.
func (c JSON[T]) Read(path string) (T, error) {
	var zero T

	f, err := os.Open(path) //nolint:gosec // path comes from the manifest, not user input
	if err != nil {
		return zero, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return zero, err
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return zero, fmt.Errorf("decompress %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("decode envelope: %w", err)
	}
	if err := env.Digest.Validate(); err != nil {
		return zero, fmt.Errorf("%w: invalid digest: %w", ErrDigestMismatch, err)
	}
	if env.Digest.Algorithm().FromBytes(env.Payload) != env.Digest {
		return zero, fmt.Errorf("%w: %s", ErrDigestMismatch, path)
	}

	var value T
	if err := json.Unmarshal(env.Payload, &value); err != nil {
		return zero, fmt.Errorf("decode payload: %w", err)
	}
	return value, nil
}
