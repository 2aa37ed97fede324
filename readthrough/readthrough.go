// Package readthrough implements the cache's probe/fetch/write/read protocol.
//
// A single Do call drives an explicit phase machine over a resolved cache
// target: probe the file, fetch from the remote on a miss, persist through
// the codec, then read the persisted copy back. The value a caller receives
// has always made a full round trip through the codec when caching is
// enabled, so any serialization asymmetry surfaces here rather than
// downstream.
//
// Each phase announces itself on the injected logger with a fixed event
// message. The emitted sequence is part of the protocol's observable
// contract:
//
//	cold miss: EventRead, EventMiss, EventFetch, EventWrite, EventRead
//	warm hit:  EventRead, EventRead
//
// With caching disabled the write phase is skipped entirely, write event
// included, and the fetched value is returned from memory:
//
//	disabled:  EventRead, EventMiss, EventFetch, EventRead
package readthrough

import (
	"errors"
	"fmt"
	"log/slog"
)

// Event messages emitted by the protocol phases, one line per phase
// transition. EventRead announces both the probe and the final read.
const (
	EventRead  = "Reading data from cache"
	EventMiss  = "No cache file found."
	EventFetch = "Fetching data from remote"
	EventWrite = "Writing data to cache"
)

var (
	// ErrRemoteFetch wraps a failure of the remote fetch collaborator.
	// The failure is not retried; no cache file is left behind.
	ErrRemoteFetch = errors.New("remote fetch failed")

	// ErrCorruptCache is returned when a file the probe reported as present
	// cannot be read back. This is a stale or corrupt cache entry, distinct
	// from a genuine miss; the caller must repair or delete the file.
	ErrCorruptCache = errors.New("corrupt cache file")
)

// phase is one step of the read-through machine.
type phase int

const (
	phaseProbe phase = iota
	phaseFetch
	phaseWrite
	phaseRead
)

// Target locates the cache file for one logical key. The existence probe
// is re-run on every call; presence is never cached in memory.
type Target interface {
	Path() string
	Exists() bool
}

// Codec persists values of type T at a path. It mirrors codec.Codec so the
// protocol does not depend on a concrete serialization.
type Codec[T any] interface {
	Write(value T, path string) error
	Read(path string) (T, error)
}

// Call describes one read-through invocation for a logical key.
type Call[T any] struct {
	// Target locates the backing file.
	Target Target

	// Fetch obtains the value from the remote collaborator on a miss.
	Fetch func() (T, error)

	// Codec round-trips the value through the backing file.
	Codec Codec[T]

	// Enabled gates all persistence. When false every call is a miss, the
	// write phase is skipped and the fetched value is returned directly.
	Enabled bool

	// Logger receives the protocol events at info level.
	// Nil discards them.
	Logger *slog.Logger
}

func (c Call[T]) log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Do runs the protocol for one call and returns the dataset value.
//
// The machine is synchronous and performs no locking: concurrent calls
// against the same backing path from independent contexts are the caller's
// responsibility to serialize.
func Do[T any](c Call[T]) (T, error) {
	var zero, held T
	hit := false

	for ph := phaseProbe; ; {
		switch ph {
		case phaseProbe:
			c.log().Info(EventRead)
			if c.Enabled && c.Target.Exists() {
				hit = true
				ph = phaseRead
			} else {
				ph = phaseFetch
			}

		case phaseFetch:
			c.log().Info(EventMiss)
			c.log().Info(EventFetch)
			v, err := c.Fetch()
			if err != nil {
				return zero, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
			}
			held = v
			if c.Enabled {
				ph = phaseWrite
			} else {
				ph = phaseRead
			}

		case phaseWrite:
			c.log().Info(EventWrite)
			if err := c.Codec.Write(held, c.Target.Path()); err != nil {
				return zero, fmt.Errorf("write cache file %s: %w", c.Target.Path(), err)
			}
			ph = phaseRead

		case phaseRead:
			c.log().Info(EventRead)
			if !c.Enabled {
				return held, nil
			}
			v, err := c.Codec.Read(c.Target.Path())
			if err != nil {
				if hit {
					return zero, fmt.Errorf("%w: %s: %w", ErrCorruptCache, c.Target.Path(), err)
				}
				return zero, fmt.Errorf("read cache file %s: %w", c.Target.Path(), err)
			}
			return v, nil
		}
	}
}
