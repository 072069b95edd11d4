package worldexample

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/command/commandtest"
	"github.com/annel0/blockverse-mods/internal/gameevent"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/plugin"
	"github.com/annel0/blockverse-mods/internal/text"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world"
	"github.com/annel0/blockverse-mods/internal/world/block"
	"github.com/annel0/blockverse-mods/internal/worldedit"
)

type fixture struct {
	reg   *command.Registry
	world *world.Manager
	steve *commandtest.Player
}

// newFixture плоский мир с чанками [-1..1]x[-1..1], трава на y=5
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	w := world.NewManager(world.NewFlatGenerator(), nil, logging.Discard())
	require.NoError(t, w.Preload(ctx, vec.Vec2{}, 1))

	reg := command.NewRegistry(command.WithLogger(logging.Discard()))
	mgr := plugin.NewManager(plugin.Deps{
		Commands:   reg,
		Events:     gameevent.NewBus(),
		WorldEdit:  worldedit.New(w, worldedit.WithLogger(logging.Discard())),
		Logger:     func(string) *logging.Logger { return logging.Discard() },
		HostLogger: logging.Discard(),
	})
	require.NoError(t, mgr.Load(ctx, New()))
	t.Cleanup(func() { _ = mgr.Unload() })

	return &fixture{reg: reg, world: w, steve: commandtest.NewPlayer("Steve", mgl64.Vec3{8, 6, 8})}
}

func (f *fixture) run(t *testing.T, sender command.Sender, line string) {
	t.Helper()
	require.NoError(t, f.reg.Dispatch(context.Background(), sender, line))
}

func (f *fixture) blockAt(t *testing.T, x, y, z int) block.BlockID {
	t.Helper()
	id, err := f.world.NewAccessor().GetBlock(vec.Vec3{X: x, Y: y, Z: z})
	require.NoError(t, err)
	return id
}

func TestSetBlock(t *testing.T) {
	f := newFixture(t)

	f.run(t, f.steve, "/setblock 1 5 2 stone")
	last := f.steve.Last()
	assert.Equal(t, "Block at 1, 5, 2 changed from GRASS_BLOCK to STONE", last.Plain())
	assert.Equal(t, text.Green, last.Color)
	assert.Equal(t, block.StoneBlockID, f.blockAt(t, 1, 5, 2))
	assert.True(t, f.world.ChunkAt(vec.Vec2{}).NeedsSaving())

	f.run(t, f.steve, "/setblock -3 10 -3 Oak_Log")
	assert.Equal(t, "Block at -3, 10, -3 changed from AIR to OAK_LOG", f.steve.Last().Plain())
}

func TestSetBlockErrors(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		line string
		want string
	}{
		{"/setblock 1 x 2 stone", "Invalid coordinates! X, Y, Z must be integers."},
		{"/setblock 1.5 5 2 stone", "Invalid coordinates! X, Y, Z must be integers."},
		{"/setblock 1 256 2 stone", "Y coordinate must be between 0 and 255!"},
		{"/setblock 1 -1 2 stone", "Y coordinate must be between 0 and 255!"},
		{"/setblock 1 5 2 unobtainium", "Unknown block type: unobtainium\nExamples: stone, dirt, grass_block, oak_log"},
		{"/setblock 500 5 2 stone", "Chunk not loaded at those coordinates!"},
	}
	for _, tc := range cases {
		f.run(t, f.steve, tc.line)
		assert.Equal(t, tc.want, f.steve.Last().Plain(), tc.line)
		assert.Equal(t, text.Red, f.steve.Last().Color, tc.line)
	}

	unknown := f.steve.Messages()[4].Spans()
	require.Len(t, unknown, 2)
	assert.Equal(t, text.Gray, unknown[1].Color)

	console := commandtest.NewConsole("CONSOLE")
	f.run(t, console, "/setblock 1 5 2 stone")
	assert.Equal(t, "This command can only be used by players!", console.Last().Plain())
	assert.Empty(t, f.world.DirtyChunks())
}

func TestFillAndHollow(t *testing.T) {
	f := newFixture(t)

	f.run(t, f.steve, "/fill 0 10 0 1 11 1 glass")
	assert.Equal(t, "Filled 8 blocks of GLASS", f.steve.Last().Plain())
	assert.Equal(t, block.GlassBlockID, f.blockAt(t, 1, 11, 1))

	// для /hollow лимит считается по поверхности: 40³ больше лимита, поверхность нет
	f.run(t, f.steve, "/hollow -10 10 -10 29 49 29 glass")
	assert.Equal(t, "Built a hollow box of 9128 blocks of GLASS", f.steve.Last().Plain())
	assert.Equal(t, block.AirBlockID, f.blockAt(t, 0, 30, 0), "внутри пусто")

	f.run(t, f.steve, "/hollow 2 20 2 4 22 4 bricks")
	assert.Equal(t, "Built a hollow box of 26 blocks of BRICKS", f.steve.Last().Plain())
	assert.Equal(t, block.AirBlockID, f.blockAt(t, 3, 21, 3))

	// консоль тоже может заливать области
	console := commandtest.NewConsole("CONSOLE")
	f.run(t, console, "/fill 5 300 5 5 400 5 stone")
	assert.Equal(t, "Filled 0 blocks of STONE", console.Last().Plain())
}

func TestFillErrors(t *testing.T) {
	f := newFixture(t)

	f.run(t, f.steve, "/fill 0 0 0 100 100 100 stone")
	assert.Equal(t, "Region too large! 1030301 blocks, maximum is 32768.", f.steve.Last().Plain())

	// объём больше math.MaxInt не переполняется в маленькое число
	f.run(t, f.steve, "/fill -4611686018427387904 0 0 4611686018427387903 255 0 stone")
	assert.Equal(t, "Region too large! 9223372036854775807 blocks, maximum is 32768.", f.steve.Last().Plain())
	f.run(t, f.steve, "/hollow -9223372036854775808 0 0 9223372036854775807 255 9 stone")
	assert.Contains(t, f.steve.Last().Plain(), "Region too large!")
	assert.Empty(t, f.world.DirtyChunks(), "ничего не записано")

	f.run(t, f.steve, "/fill a 0 0 1 1 1 stone")
	assert.Equal(t, "Invalid coordinates! X, Y, Z must be integers.", f.steve.Last().Plain())

	// область выходит за загруженные чанки: правка прерывается на границе
	f.run(t, f.steve, "/fill 31 10 0 32 10 0 stone")
	assert.Equal(t, "Chunk not loaded at those coordinates! (1 blocks changed before stopping)", f.steve.Last().Plain())
	assert.Equal(t, block.StoneBlockID, f.blockAt(t, 31, 10, 0))
}

func TestReplace(t *testing.T) {
	f := newFixture(t)

	f.run(t, f.steve, "/replace stone cobblestone")
	assert.Equal(t, "Replaced 768 STONE with COBBLESTONE in chunk [0, 0]", f.steve.Last().Plain())
	assert.Equal(t, block.CobblestoneBlockID, f.blockAt(t, 15, 2, 15))
	assert.Equal(t, block.StoneBlockID, f.blockAt(t, 16, 2, 0), "соседний чанк не тронут")

	require.NoError(t, f.steve.Teleport(mgl64.Vec3{-0.5, 6, -0.5}))
	f.run(t, f.steve, "/replace dirt dirt")
	assert.Equal(t, "Replaced 0 DIRT with DIRT in chunk [-1, -1]", f.steve.Last().Plain())

	f.run(t, f.steve, "/replace stone lava")
	assert.Equal(t, "Unknown block type: lava\nExamples: stone, dirt, grass_block, oak_log", f.steve.Last().Plain())

	console := commandtest.NewConsole("CONSOLE")
	f.run(t, console, "/replace stone dirt")
	assert.Equal(t, "This command can only be used by players!", console.Last().Plain())
}

func TestColumnCommands(t *testing.T) {
	f := newFixture(t)

	f.run(t, f.steve, "/top 3 3")
	assert.Equal(t, "Highest block at 3, 3 is at Y=5", f.steve.Last().Plain())

	f.run(t, f.steve, "/safe 3 6 3")
	assert.Equal(t, "Position 3, 6, 3 is safe", f.steve.Last().Plain())
	assert.Equal(t, text.Green, f.steve.Last().Color)

	f.run(t, f.steve, "/safe 3 5 3")
	assert.Equal(t, "Position 3, 5, 3 is not safe", f.steve.Last().Plain())
	assert.Equal(t, text.Red, f.steve.Last().Color)

	f.run(t, f.steve, "/clearcolumn 3 3")
	assert.Equal(t, "Cleared 6 blocks in column 3, 3", f.steve.Last().Plain())

	f.run(t, f.steve, "/top 3 3")
	assert.Equal(t, "Column 3, 3 is empty", f.steve.Last().Plain())

	f.run(t, f.steve, "/top 3 z")
	assert.Equal(t, "Invalid coordinates! X and Z must be integers.", f.steve.Last().Plain())

	f.run(t, f.steve, "/top 900 900")
	assert.Equal(t, "Chunk not loaded at those coordinates!", f.steve.Last().Plain())
}

func TestSetupWithoutWorldFails(t *testing.T) {
	mgr := plugin.NewManager(plugin.Deps{
		Commands:   command.NewRegistry(command.WithLogger(logging.Discard())),
		Events:     gameevent.NewBus(),
		Logger:     func(string) *logging.Logger { return logging.Discard() },
		HostLogger: logging.Discard(),
	})
	assert.ErrorIs(t, mgr.Load(context.Background(), New()), ErrNoWorld)
}
