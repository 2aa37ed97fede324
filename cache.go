package tablecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mitchellh/mapstructure"

	"github.com/meigma/tablecache/codec"
	"github.com/meigma/tablecache/manifest"
	"github.com/meigma/tablecache/readthrough"
	"github.com/meigma/tablecache/table"
)

// ProjectCache is a read-through, on-disk cache for the project's remote
// tabular datasets. Every accessor resolves its logical key through the
// manifest, probes the backing file, and fetches, persists and re-reads the
// dataset on a miss, so callers always receive the codec's round-tripped
// representation.
//
// A ProjectCache is synchronous and does no locking. Concurrent calls
// against the same cache root from independent processes are undefined;
// callers sharing a root must serialize access externally.
type ProjectCache struct {
	fetch    FetchAPI
	manifest *manifest.Manifest
	enabled  bool
	logger   *slog.Logger
}

// New creates a project cache over the manifest config at manifestPath.
// The cache root is the directory containing the config file; the file is
// created with default path templates when missing.
//
// With caching disabled (WithCaching(false)) no files are created, the
// manifest stays in memory, and every accessor is a pass-through to the
// fetch API.
func New(fetchAPI FetchAPI, manifestPath string, opts ...Option) (*ProjectCache, error) {
	if fetchAPI == nil {
		return nil, errors.New("fetch API is nil")
	}

	c := &ProjectCache{
		fetch:   fetchAPI,
		enabled: true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.enabled {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
		c.manifest = m
	} else {
		c.manifest = manifest.InMemory(filepath.Dir(manifestPath))
	}
	return c, nil
}

// CachingEnabled reports whether accessors persist fetched datasets.
func (c *ProjectCache) CachingEnabled() bool {
	return c.enabled
}

// Manifest returns the cache's manifest.
func (c *ProjectCache) Manifest() *manifest.Manifest {
	return c.manifest
}

// SessionTable returns the ophys session table, indexed by ophys session id.
func (c *ProjectCache) SessionTable(ctx context.Context) (table.Table[table.OphysSession], error) {
	entry, err := c.manifest.Resolve(manifest.KeyOphysSessions)
	if err != nil {
		return table.Table[table.OphysSession]{}, err
	}
	return readthrough.Do(readthrough.Call[table.Table[table.OphysSession]]{
		Target: entry,
		Fetch: func() (table.Table[table.OphysSession], error) {
			return c.fetch.GetSessionTable(ctx)
		},
		Codec:   codec.NewJSON[table.Table[table.OphysSession]](),
		Enabled: c.enabled,
		Logger:  c.logger,
	})
}

// SessionTableByExperiment returns the session table re-indexed by ophys
// experiment id: one row per experiment, each carrying its parent session's
// fields. The base table is served through the cache; the reshaping itself
// never re-fetches.
func (c *ProjectCache) SessionTableByExperiment(ctx context.Context) (table.Table[table.SessionByExperiment], error) {
	sessions, err := c.SessionTable(ctx)
	if err != nil {
		return table.Table[table.SessionByExperiment]{}, err
	}
	return table.SessionsByExperiment(sessions)
}

// BehaviorSessionTable returns the behavior-only session table, indexed by
// behavior session id.
func (c *ProjectCache) BehaviorSessionTable(ctx context.Context) (table.Table[table.BehaviorSession], error) {
	entry, err := c.manifest.Resolve(manifest.KeyBehaviorSessions)
	if err != nil {
		return table.Table[table.BehaviorSession]{}, err
	}
	return readthrough.Do(readthrough.Call[table.Table[table.BehaviorSession]]{
		Target: entry,
		Fetch: func() (table.Table[table.BehaviorSession], error) {
			return c.fetch.GetBehaviorOnlySessionTable(ctx)
		},
		Codec:   codec.NewJSON[table.Table[table.BehaviorSession]](),
		Enabled: c.enabled,
		Logger:  c.logger,
	})
}

// ExperimentTable returns the ophys experiment table, indexed by ophys
// experiment id.
func (c *ProjectCache) ExperimentTable(ctx context.Context) (table.Table[table.OphysExperiment], error) {
	entry, err := c.manifest.Resolve(manifest.KeyOphysExperiments)
	if err != nil {
		return table.Table[table.OphysExperiment]{}, err
	}
	return readthrough.Do(readthrough.Call[table.Table[table.OphysExperiment]]{
		Target: entry,
		Fetch: func() (table.Table[table.OphysExperiment], error) {
			return c.fetch.GetExperimentTable(ctx)
		},
		Codec:   codec.NewJSON[table.Table[table.OphysExperiment]](),
		Enabled: c.enabled,
		Logger:  c.logger,
	})
}

// SessionData returns the full record for one ophys session, cached one
// file per session id.
func (c *ProjectCache) SessionData(ctx context.Context, ophysSessionID int64) (Record, error) {
	entry, err := c.manifest.ResolveItem(manifest.KeyOphysSessionData, ophysSessionID)
	if err != nil {
		return nil, err
	}
	return readthrough.Do(readthrough.Call[Record]{
		Target: entry,
		Fetch: func() (Record, error) {
			return c.fetch.GetSessionData(ctx, ophysSessionID)
		},
		Codec:   codec.NewJSON[Record](),
		Enabled: c.enabled,
		Logger:  c.logger,
	})
}

// BehaviorSessionData returns the full record for one behavior-only
// session, cached one file per session id.
func (c *ProjectCache) BehaviorSessionData(ctx context.Context, behaviorSessionID int64) (Record, error) {
	entry, err := c.manifest.ResolveItem(manifest.KeyBehaviorSessionData, behaviorSessionID)
	if err != nil {
		return nil, err
	}
	return readthrough.Do(readthrough.Call[Record]{
		Target: entry,
		Fetch: func() (Record, error) {
			return c.fetch.GetBehaviorOnlySessionData(ctx, behaviorSessionID)
		},
		Codec:   codec.NewJSON[Record](),
		Enabled: c.enabled,
		Logger:  c.logger,
	})
}

// BehaviorStageParameters returns the typed stage parameters for each
// foraging id. The batch call is a pass-through to the fetch API: it is not
// cache-keyed per id, so composing layers decide whether to cache it.
func (c *ProjectCache) BehaviorStageParameters(ctx context.Context, foragingIDs []int64) (map[int64]table.StageParameters, error) {
	records, err := c.fetch.GetBehaviorStageParameters(ctx, foragingIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", readthrough.ErrRemoteFetch, err)
	}

	out := make(map[int64]table.StageParameters, len(records))
	for id, rec := range records {
		var params table.StageParameters
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &params,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(map[string]any(rec)); err != nil {
			return nil, fmt.Errorf("decode stage parameters for foraging id %d: %w", id, err)
		}
		out[id] = params
	}
	return out, nil
}
