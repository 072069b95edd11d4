package commandexample

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
)

func load(t *testing.T) *command.Registry {
	t.Helper()
	reg := command.NewRegistry(command.WithLogger(logging.Discard()))
	mgr := plugin.NewManager(plugin.Deps{
		Commands:   reg,
		Events:     gameevent.NewBus(),
		Logger:     func(string) *logging.Logger { return logging.Discard() },
		HostLogger: logging.Discard(),
	})
	require.NoError(t, mgr.Load(context.Background(), New()))
	t.Cleanup(func() { _ = mgr.Unload() })
	return reg
}

func TestHello(t *testing.T) {
	reg := load(t)
	ctx := context.Background()
	steve := commandtest.NewPlayer("Steve", mgl64.Vec3{})

	require.NoError(t, reg.Dispatch(ctx, steve, "/hello"))
	assert.Equal(t, "Hello, Steve!", steve.Last().Plain())
	assert.Equal(t, text.Green, steve.Last().Color)

	require.NoError(t, reg.Dispatch(ctx, steve, "/hello Alex"))
	assert.Equal(t, "Hello, Alex!", steve.Last().Plain())

	console := commandtest.NewConsole("CONSOLE")
	require.NoError(t, reg.Dispatch(ctx, console, "/hello"))
	assert.Equal(t, "Hello, CONSOLE!", console.Last().Plain())
}

func TestTeleport(t *testing.T) {
	reg := load(t)
	ctx := context.Background()
	steve := commandtest.NewPlayer("Steve", mgl64.Vec3{})

	require.NoError(t, reg.Dispatch(ctx, steve, "/teleport 10 64.3 -3"))
	assert.Equal(t, mgl64.Vec3{10, 64.3, -3}, steve.Location())

	last := steve.Last()
	assert.Equal(t, "Teleported to 10.0, 64.3, -3.0", last.Plain())
	spans := last.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, text.Green, spans[0].Color)
	assert.Equal(t, text.Yellow, spans[1].Color)
}

func TestTeleportErrors(t *testing.T) {
	reg := load(t)
	ctx := context.Background()

	console := commandtest.NewConsole("CONSOLE")
	require.NoError(t, reg.Dispatch(ctx, console, "/teleport 1 2 3"))
	assert.Equal(t, "This command can only be used by players!", console.Last().Plain())
	assert.Equal(t, text.Red, console.Last().Color)

	steve := commandtest.NewPlayer("Steve", mgl64.Vec3{1, 2, 3})
	for _, line := range []string{"/teleport a 2 3", "/teleport 1 NaN 3", "/teleport 1 2 Inf"} {
		require.NoError(t, reg.Dispatch(ctx, steve, line))
		assert.Equal(t, "Invalid coordinates! Please provide numeric values.", steve.Last().Plain(), line)
	}
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, steve.Location())

	steve.FailTeleport = true
	require.NoError(t, reg.Dispatch(ctx, steve, "/teleport 5 5 5"))
	assert.Equal(t, "Failed to teleport: teleport refused", steve.Last().Plain())
	assert.Equal(t, text.Red, steve.Last().Color)

	assert.ErrorIs(t, reg.Dispatch(ctx, steve, "/teleport 1 2"), command.ErrUsage)
	assert.Equal(t, "Usage: /teleport <x> <y> <z>", steve.Last().Plain())
}
