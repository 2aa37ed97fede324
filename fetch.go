package tablecache

import (
	"context"

	"github.com/meigma/tablecache/table"
)

// Record is a loosely-typed per-item payload as returned by the remote API.
type Record map[string]any

// FetchAPI is the remote collaborator supplying raw tables and records on
// demand. Implementations must be side-effect-free and idempotent from the
// cache's point of view: the cache may call any method repeatedly and in
// any order.
//
// Methods block until the remote answers; the cache adds no timeout or
// retry, so implementations should honor ctx cancellation themselves.
type FetchAPI interface {
	// GetSessionTable returns the ophys session table.
	GetSessionTable(ctx context.Context) (table.Table[table.OphysSession], error)

	// GetBehaviorOnlySessionTable returns the behavior-only session table.
	GetBehaviorOnlySessionTable(ctx context.Context) (table.Table[table.BehaviorSession], error)

	// GetExperimentTable returns the ophys experiment table.
	GetExperimentTable(ctx context.Context) (table.Table[table.OphysExperiment], error)

	// GetSessionData returns the full record for one ophys session.
	GetSessionData(ctx context.Context, ophysSessionID int64) (Record, error)

	// GetBehaviorOnlySessionData returns the full record for one
	// behavior-only session.
	GetBehaviorOnlySessionData(ctx context.Context, behaviorSessionID int64) (Record, error)

	// GetBehaviorStageParameters returns the stage parameter record for
	// each foraging id, one entry per id.
	GetBehaviorStageParameters(ctx context.Context, foragingIDs []int64) (map[int64]Record, error)
}
