package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/blockverse-mods/internal/vec"
)

func testRecorder(t *testing.T, r Recorder) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(ctx, Record{
			Time:    base.Add(time.Duration(i) * time.Second),
			Actor:   "Steve",
			Op:      "fill",
			Min:     vec.Vec3{X: i, Y: 1, Z: 2},
			Max:     vec.Vec3{X: i + 1, Y: 3, Z: 4},
			Block:   "STONE",
			Changed: i * 10,
		}))
	}
	require.NoError(t, r.Record(ctx, Record{
		Time:  base.Add(10 * time.Second),
		Actor: "console",
		Op:    "replace",
		From:  "DIRT",
		Block: "SAND",
		Error: "chunk not loaded",
	}))

	recent, err := r.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	assert.Equal(t, "replace", recent[0].Op)
	assert.Equal(t, "DIRT", recent[0].From)
	assert.Equal(t, "chunk not loaded", recent[0].Error)
	assert.NotEqual(t, uuid.Nil, recent[0].ID)

	assert.Equal(t, 40, recent[1].Changed)
	assert.Equal(t, vec.Vec3{X: 4, Y: 1, Z: 2}, recent[1].Min)
	assert.Equal(t, vec.Vec3{X: 5, Y: 3, Z: 4}, recent[1].Max)
	assert.True(t, recent[1].Time.Equal(base.Add(4*time.Second)))
	assert.Equal(t, 30, recent[2].Changed)

	all, err := r.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestMemoryRecorder(t *testing.T) {
	testRecorder(t, NewMemoryRecorder(0))
}

func TestMemoryRecorderEvictsOldest(t *testing.T) {
	r := NewMemoryRecorder(2)
	ctx := context.Background()
	for _, op := range []string{"a", "b", "c"} {
		require.NoError(t, r.Record(ctx, Record{Op: op}))
	}
	recent, err := r.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Op)
	assert.Equal(t, "b", recent[1].Op)
}

func TestSQLiteRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.db")
	r, err := NewSQLiteRecorder(context.Background(), path)
	require.NoError(t, err)
	defer r.Close()

	testRecorder(t, r)
}

func TestSQLiteRecorderPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	r, err := NewSQLiteRecorder(ctx, path)
	require.NoError(t, err)
	require.NoError(t, r.Record(ctx, Record{Actor: "Alex", Op: "clear_column", Changed: 7}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(ctx, path)
	require.NoError(t, err)
	defer r.Close()
	recent, err := r.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Alex", recent[0].Actor)
	assert.Equal(t, 7, recent[0].Changed)
}

func TestMongoRecorder(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI не задан")
	}
	r, err := NewMongoRecorder(context.Background(), MongoConfig{
		URI:        uri,
		Database:   "blockverse_test",
		Collection: "edits_" + uuid.NewString(),
	})
	require.NoError(t, err)
	defer func() {
		_ = r.collection.Drop(context.Background())
		r.Close()
	}()

	testRecorder(t, r)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "cassandra", "", MongoConfig{})
	assert.Error(t, err)

	r, err := Open(context.Background(), "memory", "", MongoConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryRecorder{}, r)
}
