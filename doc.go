// Package tablecache provides a read-through, on-disk cache for
// remote-fetched tabular datasets.
//
// Callers request named datasets by logical key through [ProjectCache];
// the cache transparently serves a previously persisted copy or fetches,
// persists, and then serves a fresh one. Returned values have always made
// a full round trip through the persistence codec, never the raw in-memory
// fetch result, so serialization asymmetries surface at the cache boundary.
//
// # Quick Start
//
// Build a cache over a manifest config file and read the session table:
//
//	cache, err := tablecache.New(api, "/data/vbo/manifest.json",
//	    tablecache.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	sessions, err := cache.SessionTable(ctx)
//
// The manifest file maps logical keys to paths under the cache root (the
// directory containing the file) and is created with defaults when missing.
// A file written by one run is a cache hit for the next run against the
// same root.
//
// # Derived Views
//
// SessionTableByExperiment reshapes the cached session table without
// re-fetching, exploding each session's experiment-id list into one row
// per experiment:
//
//	byExp, err := cache.SessionTableByExperiment(ctx)
//
// # Disabled Caching
//
// With WithCaching(false) no files are created and every accessor is a
// pass-through to the fetch API:
//
//	cache, err := tablecache.New(api, manifestPath, tablecache.WithCaching(false))
//
// # Concurrency
//
// A ProjectCache is synchronous and does no locking. Two execution
// contexts sharing a cache root must be serialized externally; a writer
// racing a reader on the same path is undefined behavior.
package tablecache
