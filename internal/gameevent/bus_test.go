package gameevent

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/blockverse-mods/internal/command/commandtest"
)

func TestPriorityOrder(t *testing.T) {
	bus := NewBus()
	var order []string

	Subscribe(bus, PriorityLate, func(e *PlayerChat) { order = append(order, "late") })
	Subscribe(bus, PriorityEarly, func(e *PlayerChat) { order = append(order, "early") })
	Subscribe(bus, PriorityNormal, func(e *PlayerChat) { order = append(order, "normal") })

	bus.Fire(&PlayerChat{Player: commandtest.NewPlayer("Steve", mgl64.Vec3{}), Message: "hi"})

	assert.Equal(t, []string{"early", "normal", "late"}, order)
}

func TestCancellationVisibleToLaterHandlers(t *testing.T) {
	bus := NewBus()
	var sawCancelled bool

	Subscribe(bus, PriorityEarly, func(e *PlayerMove) {
		if e.To.Y() < 0 {
			e.SetCancelled(true)
		}
	})
	Subscribe(bus, PriorityLate, func(e *PlayerMove) { sawCancelled = e.Cancelled() })

	ev := &PlayerMove{Player: commandtest.NewPlayer("Steve", mgl64.Vec3{}), To: mgl64.Vec3{0, -1, 0}}
	bus.Fire(ev)

	assert.True(t, ev.Cancelled())
	assert.True(t, sawCancelled)
}

func TestHandlersOnlySeeTheirType(t *testing.T) {
	bus := NewBus()
	joins, quits := 0, 0
	Subscribe(bus, PriorityNormal, func(*PlayerJoin) { joins++ })
	Subscribe(bus, PriorityNormal, func(*PlayerQuit) { quits++ })

	p := commandtest.NewPlayer("Alex", mgl64.Vec3{})
	bus.Fire(&PlayerJoin{Player: p})
	bus.Fire(&PlayerJoin{Player: p})
	bus.Fire(&PlayerQuit{Player: p})

	assert.Equal(t, 2, joins)
	assert.Equal(t, 1, quits)

	// без подписчиков событие просто проходит
	bus.Fire(&PlayerChat{Player: p})
}

func TestUnsubscribeAndScope(t *testing.T) {
	bus := NewBus()
	direct, scoped := 0, 0

	unsub := Subscribe(bus, PriorityNormal, func(*PlayerJoin) { direct++ })
	scope := bus.Scope()
	Subscribe(scope, PriorityNormal, func(*PlayerJoin) { scoped++ })
	require.Equal(t, 1, scope.Len())

	p := commandtest.NewPlayer("Alex", mgl64.Vec3{})
	bus.Fire(&PlayerJoin{Player: p})

	unsub()
	unsub()
	scope.Close()
	bus.Fire(&PlayerJoin{Player: p})

	assert.Equal(t, 1, direct)
	assert.Equal(t, 1, scoped)
	assert.Zero(t, scope.Len())

	// подписка в закрытой области сразу неактивна
	Subscribe(scope, PriorityNormal, func(*PlayerJoin) { scoped++ })
	bus.Fire(&PlayerJoin{Player: p})
	assert.Equal(t, 1, scoped)
}

func TestScopeCloseRemovesHandlers(t *testing.T) {
	bus := NewBus()
	mgr := bus.EventManager()

	for i := 0; i < 100; i++ {
		scope := bus.Scope()
		Subscribe(scope, PriorityEarly, func(*PlayerChat) {})
		Subscribe(scope, PriorityLate, func(*PlayerMove) {})
		require.True(t, mgr.HasSubscriber(&PlayerChat{}))
		scope.Close()
		require.False(t, mgr.HasSubscriber(&PlayerChat{}, &PlayerMove{}), "после Close обработчики сняты с менеджера")
	}

	unsub := Subscribe(bus, PriorityNormal, func(*PlayerJoin) {})
	unsub()
	assert.False(t, mgr.HasSubscriber(&PlayerJoin{}))
	assert.Zero(t, mgr.UnsubscribeAll(&PlayerChat{}, &PlayerMove{}, &PlayerJoin{}), "мёртвых подписчиков не осталось")
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "EARLY", PriorityEarly.String())
	assert.Equal(t, "LATE", PriorityLate.String())
	assert.Equal(t, "CUSTOM", Priority(5).String())
}
