package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

var _ world.ChunkStore = (*WorldStorage)(nil)

func setupTestStorage(t *testing.T, opts WorldStorageOptions) *WorldStorage {
	t.Helper()
	storage, err := NewWorldStorage(opts)
	require.NoError(t, err, "Не удалось создать хранилище")
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSaveAndLoadChunk(t *testing.T) {
	for _, compress := range []bool{true, false} {
		storage := setupTestStorage(t, WorldStorageOptions{InMemory: true, Compress: compress})
		ctx := context.Background()

		chunk := world.NewPerlinGenerator(5).Generate(vec.Vec2{X: 10, Z: -20})
		chunk.SetBlock(vec.Vec3{X: 5, Y: 200, Z: 5}, block.GlassBlockID)
		data, _ := chunk.Snapshot()

		require.NoError(t, storage.SaveChunk(ctx, chunk.Coords, data))

		loaded, found, err := storage.LoadChunk(ctx, chunk.Coords)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, data, loaded, "compress=%v", compress)

		restored := world.NewChunk(chunk.Coords)
		require.NoError(t, restored.Restore(loaded))
		assert.Equal(t, block.GlassBlockID, restored.GetBlock(vec.Vec3{X: 5, Y: 200, Z: 5}))
	}
}

func TestLoadNonExistentChunk(t *testing.T) {
	storage := setupTestStorage(t, WorldStorageOptions{InMemory: true})

	data, found, err := storage.LoadChunk(context.Background(), vec.Vec2{X: 99, Z: 99})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestCompressionIsReadableEitherWay(t *testing.T) {
	// Запись сжатого чанка читается хранилищем без сжатия, и наоборот
	dir := t.TempDir()
	ctx := context.Background()
	coords := vec.Vec2{X: 1, Z: 1}
	data, _ := world.NewFlatGenerator().Generate(coords).Snapshot()

	compressed := setupTestStorage(t, WorldStorageOptions{DataPath: dir, Compress: true})
	require.NoError(t, compressed.SaveChunk(ctx, coords, data))
	require.NoError(t, compressed.Close())

	plain := setupTestStorage(t, WorldStorageOptions{DataPath: dir})
	loaded, found, err := plain.LoadChunk(ctx, coords)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, data, loaded)
}

func TestDeleteAndCount(t *testing.T) {
	storage := setupTestStorage(t, WorldStorageOptions{InMemory: true, Compress: true})
	ctx := context.Background()
	data, _ := world.NewChunk(vec.Vec2{}).Snapshot()

	for x := 0; x < 3; x++ {
		require.NoError(t, storage.SaveChunk(ctx, vec.Vec2{X: x}, data))
	}
	n, err := storage.CountChunks()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, storage.DeleteChunk(ctx, vec.Vec2{X: 1}))
	_, found, err := storage.LoadChunk(ctx, vec.Vec2{X: 1})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClosedStorage(t *testing.T) {
	storage := setupTestStorage(t, WorldStorageOptions{InMemory: true})
	require.NoError(t, storage.Close())
	require.NoError(t, storage.Close(), "повторное закрытие допустимо")

	err := storage.SaveChunk(context.Background(), vec.Vec2{}, nil)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestManagerWithBadger(t *testing.T) {
	storage := setupTestStorage(t, WorldStorageOptions{InMemory: true, Compress: true})
	ctx := context.Background()

	m := world.NewManager(world.NewFlatGenerator(), storage, nil)
	chunk, err := m.LoadChunk(ctx, vec.Vec2{X: -2, Z: 4})
	require.NoError(t, err)
	chunk.SetBlock(vec.Vec3{X: 0, Y: 50, Z: 0}, block.BrickBlockID)
	chunk.MarkNeedsSaving()

	saved, err := m.SaveDirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	m2 := world.NewManager(&world.FlatGenerator{}, storage, nil)
	again, err := m2.LoadChunk(ctx, vec.Vec2{X: -2, Z: 4})
	require.NoError(t, err)
	assert.Equal(t, block.BrickBlockID, again.GetBlock(vec.Vec3{X: 0, Y: 50, Z: 0}))
}
