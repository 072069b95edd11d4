package gameevent

import (
	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/text"
	"github.com/go-gl/mathgl/mgl64"
)

// Cancellable событие, которое обработчик может отменить
type Cancellable interface {
	Cancelled() bool
	SetCancelled(bool)
}

type cancellable struct {
	cancelled bool
}

func (c *cancellable) Cancelled() bool     { return c.cancelled }
func (c *cancellable) SetCancelled(v bool) { c.cancelled = v }

// PlayerJoin игрок вошёл в мир. JoinMessage рассылается всем после обработчиков.
type PlayerJoin struct {
	Player      command.Player
	JoinMessage text.Component
}

// PlayerQuit игрок вышел
type PlayerQuit struct {
	Player      command.Player
	QuitMessage text.Component
}

// PlayerChat сообщение в чат. Обработчики могут переписать Message или отменить отправку.
type PlayerChat struct {
	cancellable
	Player  command.Player
	Message string
}

// PlayerMove перемещение игрока из From в To. Отмена оставляет игрока на месте.
type PlayerMove struct {
	cancellable
	Player command.Player
	From   mgl64.Vec3
	To     mgl64.Vec3
}

var (
	_ Cancellable = (*PlayerChat)(nil)
	_ Cancellable = (*PlayerMove)(nil)
)
