package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/command/commandtest"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/text"
)

func newRegistry(t *testing.T) (*command.Registry, *command.Metrics) {
	t.Helper()
	m := command.NewMetrics(prometheus.NewRegistry())
	return command.NewRegistry(command.WithMetrics(m), command.WithLogger(logging.Discard())), m
}

func TestUsage(t *testing.T) {
	cases := []struct {
		cmd  *command.Command
		want string
	}{
		{command.New("setblock", "").WithRequiredArg("x").WithRequiredArg("y").WithRequiredArg("z").WithRequiredArg("blockType"),
			"/setblock <x> <y> <z> <blockType>"},
		{command.New("/hello", "").WithOptionalArg("player"), "/hello [player]"},
		{command.New("Top", ""), "/top"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.cmd.Usage())
	}
}

func TestRegisterValidation(t *testing.T) {
	reg, _ := newRegistry(t)
	noop := func(context.Context, command.Sender, command.Args) error { return nil }

	require.NoError(t, reg.Register(command.New("hello", "greet").Handle(noop)))

	err := reg.Register(command.New("HELLO", "again").Handle(noop))
	assert.ErrorIs(t, err, command.ErrDuplicateCommand)

	err = reg.Register(command.New("nohandler", ""))
	assert.ErrorIs(t, err, command.ErrInvalidCommand)

	err = reg.Register(command.New("bad", "").WithOptionalArg("a").WithRequiredArg("b").Handle(noop))
	assert.ErrorIs(t, err, command.ErrInvalidCommand)

	err = reg.Register(command.New("", "").Handle(noop))
	assert.ErrorIs(t, err, command.ErrInvalidCommand)
}

func TestDispatchBindsArguments(t *testing.T) {
	reg, m := newRegistry(t)
	var got []string
	var target string
	var present bool
	require.NoError(t, reg.Register(command.New("say", "").
		WithRequiredArg("who").WithOptionalArg("what").
		Handle(func(ctx context.Context, s command.Sender, args command.Args) error {
			got = args.Raw()
			target, present = args.Get("what")
			return nil
		})))

	sender := commandtest.NewConsole("console")
	require.NoError(t, reg.Dispatch(context.Background(), sender, `/say Steve "hello world"`))
	assert.Equal(t, []string{"Steve", "hello world"}, got)
	assert.True(t, present)
	assert.Equal(t, "hello world", target)

	require.NoError(t, reg.Dispatch(context.Background(), sender, "SAY Alex"))
	assert.Equal(t, []string{"Alex"}, got)
	assert.False(t, present)

	assert.Equal(t, 2.0, testutil.ToFloat64(command.ExecutedCounter(m, "say", "ok")))
	assert.Empty(t, sender.Messages())
}

func TestDispatchErrors(t *testing.T) {
	reg, m := newRegistry(t)
	boom := errors.New("boom")
	require.NoError(t, reg.Register(command.New("tp", "").
		WithRequiredArg("x").
		Handle(func(context.Context, command.Sender, command.Args) error { return boom })))

	sender := commandtest.NewConsole("console")
	ctx := context.Background()

	err := reg.Dispatch(ctx, sender, "/nope")
	assert.ErrorIs(t, err, command.ErrUnknownCommand)
	assert.Equal(t, "Unknown command: /nope", sender.Last().Plain())
	assert.Equal(t, text.Red, sender.Last().Color)

	err = reg.Dispatch(ctx, sender, "/tp")
	assert.ErrorIs(t, err, command.ErrUsage)
	assert.Equal(t, "Usage: /tp <x>", sender.Last().Plain())

	err = reg.Dispatch(ctx, sender, "/tp 1 2")
	assert.ErrorIs(t, err, command.ErrUsage)

	err = reg.Dispatch(ctx, sender, "/tp 1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "An internal error occurred", sender.Last().Plain())
	assert.Equal(t, text.Red, sender.Last().Color)

	assert.ErrorIs(t, reg.Dispatch(ctx, sender, "   "), command.ErrUnknownCommand)

	assert.Equal(t, 1.0, testutil.ToFloat64(command.ExecutedCounter(m, "nope", "unknown")))
	assert.Equal(t, 2.0, testutil.ToFloat64(command.ExecutedCounter(m, "tp", "usage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(command.ExecutedCounter(m, "tp", "error")))
}

func TestUnregisterAndList(t *testing.T) {
	reg, _ := newRegistry(t)
	noop := func(context.Context, command.Sender, command.Args) error { return nil }
	for _, n := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, reg.Register(command.New(n, "").Handle(noop)))
	}

	var names []string
	for _, c := range reg.Commands() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)

	assert.True(t, reg.Unregister("/MID"))
	assert.False(t, reg.Unregister("mid"))
	_, ok := reg.Lookup("mid")
	assert.False(t, ok)
	_, ok = reg.Lookup("/Alpha")
	assert.True(t, ok)
}

func TestAsPlayer(t *testing.T) {
	_, ok := command.AsPlayer(commandtest.NewConsole("console"))
	assert.False(t, ok)

	p, ok := command.AsPlayer(commandtest.NewPlayer("Steve", [3]float64{1, 2, 3}))
	require.True(t, ok)
	assert.Equal(t, "Steve", p.Name())
}
