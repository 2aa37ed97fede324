package tablecache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/tablecache/internal/testutil"
	"github.com/meigma/tablecache/manifest"
	"github.com/meigma/tablecache/readthrough"
	"github.com/meigma/tablecache/table"
)

func sessionFixture(t *testing.T) table.Table[table.OphysSession] {
	t.Helper()
	tbl, err := table.New(table.OphysSession{
		OphysSessionID:     1,
		BehaviorSessionID:  3,
		OphysExperimentIDs: []int64{5, 6},
		DateOfAcquisition:  time.Date(2020, 2, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return tbl
}

func behaviorFixture(t *testing.T) table.Table[table.BehaviorSession] {
	t.Helper()
	vip := "Vip-IRES-Cre"
	tbl, err := table.New(
		table.BehaviorSession{
			BehaviorSessionID: 1,
			ForagingID:        1,
			DateOfAcquisition: time.Date(2020, 2, 20, 0, 0, 0, 0, time.UTC),
			ReporterLine:      "Ai93(TITL-GCaMP6f)",
			DriverLine:        []string{"aa"},
			FullGenotype:      "foo-SlcCre",
			SessionType:       "TRAINING_1_gratings",
			MouseID:           1,
		},
		table.BehaviorSession{
			BehaviorSessionID: 2,
			ForagingID:        2,
			DateOfAcquisition: time.Date(2020, 2, 21, 0, 0, 0, 0, time.UTC),
			ReporterLine:      "Ai93(TITL-GCaMP6f)",
			DriverLine:        []string{"aa", "bb"},
			FullGenotype:      "Vip-IRES-Cre/wt;Ai148(TIT2L-GC6f-ICL-tTA2)/wt",
			CreLine:           &vip,
			SessionType:       "TRAINING_1_gratings",
			MouseID:           1,
		},
		table.BehaviorSession{
			BehaviorSessionID: 3,
			ForagingID:        3,
			DateOfAcquisition: time.Date(2020, 2, 22, 0, 0, 0, 0, time.UTC),
			ReporterLine:      "Ai93(TITL-GCaMP6f)",
			DriverLine:        []string{"cc"},
			FullGenotype:      "bar",
			SessionType:       "OPHYS_1_images_A",
			MouseID:           1,
		},
	)
	require.NoError(t, err)
	return tbl
}

func experimentFixture(t *testing.T) table.Table[table.OphysExperiment] {
	t.Helper()
	rows := make([]table.OphysExperiment, 0, 3)
	for i := int64(1); i <= 3; i++ {
		rows = append(rows, table.OphysExperiment{
			OphysExperimentID: i,
			OphysSessionID:    i,
			BehaviorSessionID: i,
			DateOfAcquisition: time.Date(2020, 2, 19+int(i), 0, 0, 0, 0, time.UTC),
			ImagingDepth:      75,
			TargetedStructure: "VISp",
		})
	}
	tbl, err := table.New(rows...)
	require.NoError(t, err)
	return tbl
}

// mockFetchAPI is a test double for FetchAPI with per-method call counts.
type mockFetchAPI struct {
	sessions    table.Table[table.OphysSession]
	behavior    table.Table[table.BehaviorSession]
	experiments table.Table[table.OphysExperiment]
	calls       map[string]int
}

func newMockFetchAPI(t *testing.T) *mockFetchAPI {
	return &mockFetchAPI{
		sessions:    sessionFixture(t),
		behavior:    behaviorFixture(t),
		experiments: experimentFixture(t),
		calls:       make(map[string]int),
	}
}

func (m *mockFetchAPI) GetSessionTable(context.Context) (table.Table[table.OphysSession], error) {
	m.calls["GetSessionTable"]++
	return m.sessions, nil
}

func (m *mockFetchAPI) GetBehaviorOnlySessionTable(context.Context) (table.Table[table.BehaviorSession], error) {
	m.calls["GetBehaviorOnlySessionTable"]++
	return m.behavior, nil
}

func (m *mockFetchAPI) GetExperimentTable(context.Context) (table.Table[table.OphysExperiment], error) {
	m.calls["GetExperimentTable"]++
	return m.experiments, nil
}

func (m *mockFetchAPI) GetSessionData(_ context.Context, id int64) (Record, error) {
	m.calls["GetSessionData"]++
	return Record{"ophys_session_id": float64(id)}, nil
}

func (m *mockFetchAPI) GetBehaviorOnlySessionData(_ context.Context, id int64) (Record, error) {
	m.calls["GetBehaviorOnlySessionData"]++
	return Record{"behavior_session_id": float64(id)}, nil
}

func (m *mockFetchAPI) GetBehaviorStageParameters(_ context.Context, ids []int64) (map[int64]Record, error) {
	m.calls["GetBehaviorStageParameters"]++
	out := make(map[int64]Record, len(ids))
	for _, id := range ids {
		out[id] = Record{"stage": "TRAINING_1_gratings", "reward_volume": 0.007}
	}
	return out, nil
}

func newTestCache(t *testing.T, enabled bool) (*ProjectCache, *mockFetchAPI, *testutil.LogRecorder, string) {
	t.Helper()
	dir := t.TempDir()
	api := newMockFetchAPI(t)
	rec := testutil.NewLogRecorder()
	cache, err := New(api, filepath.Join(dir, "manifest.json"),
		WithCaching(enabled),
		WithLogger(rec.Logger()),
	)
	require.NoError(t, err)
	return cache, api, rec, dir
}

var coldEvents = []string{
	readthrough.EventRead,
	readthrough.EventMiss,
	readthrough.EventFetch,
	readthrough.EventWrite,
	readthrough.EventRead,
}

var warmEvents = []string{
	readthrough.EventRead,
	readthrough.EventRead,
}

func TestSessionTable(t *testing.T) {
	t.Parallel()

	for _, enabled := range []bool{true, false} {
		cache, _, _, _ := newTestCache(t, enabled)

		got, err := cache.SessionTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sessionFixture(t), got)

		if enabled {
			entry, err := cache.Manifest().Resolve(manifest.KeyOphysSessions)
			require.NoError(t, err)
			assert.FileExists(t, entry.Path())
		}
	}
}

func TestBehaviorSessionTable(t *testing.T) {
	t.Parallel()

	for _, enabled := range []bool{true, false} {
		cache, _, _, _ := newTestCache(t, enabled)

		got, err := cache.BehaviorSessionTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, behaviorFixture(t), got)

		if enabled {
			entry, err := cache.Manifest().Resolve(manifest.KeyBehaviorSessions)
			require.NoError(t, err)
			assert.FileExists(t, entry.Path())
		}
	}
}

func TestExperimentTable(t *testing.T) {
	t.Parallel()

	for _, enabled := range []bool{true, false} {
		cache, _, _, _ := newTestCache(t, enabled)

		got, err := cache.ExperimentTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, experimentFixture(t), got)

		if enabled {
			entry, err := cache.Manifest().Resolve(manifest.KeyOphysExperiments)
			require.NoError(t, err)
			assert.FileExists(t, entry.Path())
		}
	}
}

func TestSessionTableReadsFromCache(t *testing.T) {
	t.Parallel()

	cache, api, rec, _ := newTestCache(t, true)
	ctx := context.Background()

	first, err := cache.SessionTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, coldEvents, rec.Messages())

	rec.Reset()
	second, err := cache.SessionTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, warmEvents, rec.Messages())

	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.calls["GetSessionTable"], "warm call must not re-fetch")
}

func TestBehaviorTableReadsFromCache(t *testing.T) {
	t.Parallel()

	cache, api, rec, _ := newTestCache(t, true)
	ctx := context.Background()

	_, err := cache.BehaviorSessionTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, coldEvents, rec.Messages())

	rec.Reset()
	_, err = cache.BehaviorSessionTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, warmEvents, rec.Messages())
	assert.Equal(t, 1, api.calls["GetBehaviorOnlySessionTable"])
}

func TestSessionTableByExperiment(t *testing.T) {
	t.Parallel()

	for _, enabled := range []bool{true, false} {
		cache, _, _, _ := newTestCache(t, enabled)

		got, err := cache.SessionTableByExperiment(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []int64{5, 6}, got.Keys())
		for row := range got.Rows() {
			assert.Equal(t, int64(1), row.OphysSessionID)
		}
	}
}

func TestDisabledCacheCreatesNoFiles(t *testing.T) {
	t.Parallel()

	cache, api, rec, dir := newTestCache(t, false)
	ctx := context.Background()

	for range 2 {
		_, err := cache.SessionTable(ctx)
		require.NoError(t, err)
		_, err = cache.SessionData(ctx, 7)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "disabled cache must create no files under the root")

	assert.Equal(t, 2, api.calls["GetSessionTable"])
	assert.Equal(t, 2, api.calls["GetSessionData"])
	assert.NotContains(t, rec.Messages(), readthrough.EventWrite)
}

func TestSessionData(t *testing.T) {
	t.Parallel()

	cache, api, rec, _ := newTestCache(t, true)
	ctx := context.Background()

	got, err := cache.SessionData(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, Record{"ophys_session_id": float64(7)}, got)
	assert.Equal(t, coldEvents, rec.Messages())

	entry, err := cache.Manifest().ResolveItem(manifest.KeyOphysSessionData, 7)
	require.NoError(t, err)
	assert.FileExists(t, entry.Path())

	// A different id is its own cache file and its own cold fetch.
	rec.Reset()
	_, err = cache.SessionData(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, coldEvents, rec.Messages())
	assert.Equal(t, 2, api.calls["GetSessionData"])
}

func TestBehaviorSessionData(t *testing.T) {
	t.Parallel()

	cache, api, rec, _ := newTestCache(t, true)
	ctx := context.Background()

	got, err := cache.BehaviorSessionData(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, Record{"behavior_session_id": float64(4)}, got)
	assert.Equal(t, coldEvents, rec.Messages())

	rec.Reset()
	again, err := cache.BehaviorSessionData(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, warmEvents, rec.Messages())
	assert.Equal(t, 1, api.calls["GetBehaviorOnlySessionData"])
}

func TestBehaviorStageParameters(t *testing.T) {
	t.Parallel()

	cache, api, rec, dir := newTestCache(t, true)

	got, err := cache.BehaviorStageParameters(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, params := range got {
		assert.Equal(t, "TRAINING_1_gratings", params.Stage)
		assert.InDelta(t, 0.007, params.RewardVolume, 1e-9)
	}

	// The batch call is a pass-through: no events, no per-id cache files.
	assert.Empty(t, rec.Messages())
	assert.Equal(t, 1, api.calls["GetBehaviorStageParameters"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, "manifest.json", e.Name())
	}
}

func TestSharedRootIsWarmAcrossInstances(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "manifest.json")
	ctx := context.Background()

	first, err := New(newMockFetchAPI(t), manifestPath)
	require.NoError(t, err)
	want, err := first.SessionTable(ctx)
	require.NoError(t, err)

	rec := testutil.NewLogRecorder()
	second, err := New(newMockFetchAPI(t), manifestPath, WithLogger(rec.Logger()))
	require.NoError(t, err)
	got, err := second.SessionTable(ctx)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, warmEvents, rec.Messages(), "a file written by one instance is a hit for another")
}

func TestNewRequiresFetchAPI(t *testing.T) {
	t.Parallel()

	_, err := New(nil, filepath.Join(t.TempDir(), "manifest.json"))
	require.Error(t, err)
}
