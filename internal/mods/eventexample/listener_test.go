package eventexample

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/command/commandtest"
	"github.com/annel0/blockverse-mods/internal/config"
	"github.com/annel0/blockverse-mods/internal/gameevent"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/plugin"
	"github.com/annel0/blockverse-mods/internal/text"
)

func load(t *testing.T, cfg *config.Config) (*gameevent.Bus, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	bus := gameevent.NewBus()
	mgr := plugin.NewManager(plugin.Deps{
		Commands:   command.NewRegistry(command.WithLogger(logging.Discard())),
		Events:     bus,
		Config:     cfg,
		Logger:     func(name string) *logging.Logger { return logging.NewWriterLogger(name, &logs, logging.TRACE) },
		HostLogger: logging.Discard(),
	})
	require.NoError(t, mgr.Load(context.Background(), New()))
	t.Cleanup(func() { _ = mgr.Unload() })
	return bus, &logs
}

func TestJoinAndQuitMessages(t *testing.T) {
	bus, logs := load(t, config.Default())
	steve := commandtest.NewPlayer("Steve", mgl64.Vec3{})

	join := &gameevent.PlayerJoin{Player: steve}
	bus.Fire(join)
	assert.Equal(t, "Welcome, Steve!", join.JoinMessage.Plain())
	spans := join.JoinMessage.Spans()
	require.Len(t, spans, 3)
	assert.Equal(t, text.Component{Content: "Steve", Color: text.Gold, Bold: true}, spans[1])

	quit := &gameevent.PlayerQuit{Player: steve}
	bus.Fire(quit)
	assert.Equal(t, "Steve has left the game", quit.QuitMessage.Plain())
	assert.Equal(t, text.Gray, quit.QuitMessage.Color)
	assert.Equal(t, text.DarkGray, quit.QuitMessage.Spans()[1].Color)

	assert.Contains(t, logs.String(), "Steve зашёл на сервер")
}

func TestChatFilter(t *testing.T) {
	bus, logs := load(t, config.Default())
	steve := commandtest.NewPlayer("Steve", mgl64.Vec3{})

	ok := &gameevent.PlayerChat{Player: steve, Message: "hello there"}
	bus.Fire(ok)
	assert.False(t, ok.Cancelled())
	assert.Equal(t, "hello there", ok.Message)
	assert.Empty(t, steve.Messages())

	bad := &gameevent.PlayerChat{Player: steve, Message: "you BADWORD you"}
	bus.Fire(bad)
	assert.True(t, bad.Cancelled())
	assert.Equal(t, "Your message was blocked!", steve.Last().Plain())
	assert.Equal(t, text.Red, steve.Last().Color)

	assert.Contains(t, logs.String(), "[CHAT] Steve: you BADWORD you")
	assert.Contains(t, logs.String(), "[WARN]")
}

func TestChatAnnouncement(t *testing.T) {
	bus, _ := load(t, config.Default())
	steve := commandtest.NewPlayer("Steve", mgl64.Vec3{})

	ev := &gameevent.PlayerChat{Player: steve, Message: "!server restarts soon"}
	bus.Fire(ev)
	assert.Equal(t, "[ANNOUNCEMENT] server restarts soon", ev.Message)
	assert.False(t, ev.Cancelled())
}

func TestChatCustomConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.BlockedPatterns = []string{"spam*"}
	cfg.Chat.AnnouncementPrefix = "#"
	bus, _ := load(t, cfg)
	steve := commandtest.NewPlayer("Steve", mgl64.Vec3{})

	spam := &gameevent.PlayerChat{Player: steve, Message: "Spam and eggs"}
	bus.Fire(spam)
	assert.True(t, spam.Cancelled())

	mid := &gameevent.PlayerChat{Player: steve, Message: "no spam here"}
	bus.Fire(mid)
	assert.False(t, mid.Cancelled(), "шаблон привязан к началу строки")

	ann := &gameevent.PlayerChat{Player: steve, Message: "#hi"}
	bus.Fire(ann)
	assert.Equal(t, "[ANNOUNCEMENT] hi", ann.Message)

	bang := &gameevent.PlayerChat{Player: steve, Message: "!hi"}
	bus.Fire(bang)
	assert.Equal(t, "!hi", bang.Message)
}

func TestInvalidPatternFailsSetup(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.BlockedPatterns = []string{"[unclosed"}
	mgr := plugin.NewManager(plugin.Deps{
		Commands:   command.NewRegistry(command.WithLogger(logging.Discard())),
		Events:     gameevent.NewBus(),
		Config:     cfg,
		Logger:     func(string) *logging.Logger { return logging.Discard() },
		HostLogger: logging.Discard(),
	})
	assert.Error(t, mgr.Load(context.Background(), New()))
}

func TestMoveBelowZero(t *testing.T) {
	bus, logs := load(t, config.Default())
	steve := commandtest.NewPlayer("Steve", mgl64.Vec3{})

	down := &gameevent.PlayerMove{Player: steve, From: mgl64.Vec3{1, 0.5, 1}, To: mgl64.Vec3{1, -0.5, 1}}
	bus.Fire(down)
	assert.True(t, down.Cancelled())
	assert.Equal(t, "You cannot go below Y=0!", steve.Last().Plain())

	across := &gameevent.PlayerMove{Player: steve, From: mgl64.Vec3{15.9, 64, 0}, To: mgl64.Vec3{16.1, 64, -0.1}}
	bus.Fire(across)
	assert.False(t, across.Cancelled())
	assert.Contains(t, logs.String(), "Steve перешёл в чанк [1, -1]")
}

func TestChunkOf(t *testing.T) {
	cases := map[float64]int{0: 0, 15.99: 0, 16: 1, -0.01: -1, -16: -1, -16.5: -2}
	for v, want := range cases {
		assert.Equal(t, want, chunkOf(v), "%v", v)
	}
}

var _ command.Player = (*commandtest.Player)(nil)
