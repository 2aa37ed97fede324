package tablecache

import (
	"github.com/meigma/tablecache/codec"
	"github.com/meigma/tablecache/manifest"
	"github.com/meigma/tablecache/readthrough"
	"github.com/meigma/tablecache/table"
)

// Errors re-exported from manifest.
var (
	// ErrUnknownKey is returned when a logical dataset key has no configured
	// path template in the manifest.
	ErrUnknownKey = manifest.ErrUnknownKey

	// ErrVersionMismatch is returned when a manifest config file declares an
	// unsupported format version.
	ErrVersionMismatch = manifest.ErrVersionMismatch
)

// Errors re-exported from readthrough.
var (
	// ErrRemoteFetch wraps a failure of the remote fetch collaborator.
	ErrRemoteFetch = readthrough.ErrRemoteFetch

	// ErrCorruptCache is returned when a cache file that exists cannot be
	// read back. Delete the file (or the cache root) to recover.
	ErrCorruptCache = readthrough.ErrCorruptCache
)

// Errors re-exported from codec.
var (
	// ErrDigestMismatch is returned when a cache file's payload does not
	// match the digest recorded alongside it.
	ErrDigestMismatch = codec.ErrDigestMismatch
)

// Errors re-exported from table.
var (
	// ErrDuplicateKey is returned when a table holds two rows with the same
	// primary key.
	ErrDuplicateKey = table.ErrDuplicateKey
)
