// Package commandtest содержит отправителей команд для тестов.
package commandtest

import (
	"errors"
	"sync"

	"github.com/annel0/blockverse-mods/internal/text"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Console отправитель без позиции, запоминающий сообщения
type Console struct {
	name string
	mu   sync.Mutex
	msgs []text.Component
}

// NewConsole создаёт консольного отправителя
func NewConsole(name string) *Console {
	return &Console{name: name}
}

func (c *Console) Name() string { return c.name }

func (c *Console) SendMessage(msg text.Component) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

// Messages полученные сообщения
func (c *Console) Messages() []text.Component {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]text.Component, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Texts полученные сообщения без форматирования
func (c *Console) Texts() []string {
	msgs := c.Messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Plain()
	}
	return out
}

// Last последнее сообщение или пустой компонент
func (c *Console) Last() text.Component {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.msgs) == 0 {
		return text.Component{}
	}
	return c.msgs[len(c.msgs)-1]
}

// ErrTeleportRefused возвращается Player.Teleport при FailTeleport
var ErrTeleportRefused = errors.New("teleport refused")

// Player игрок с позицией в памяти
type Player struct {
	*Console
	id  uuid.UUID
	pos mgl64.Vec3

	// FailTeleport заставляет Teleport вернуть ErrTeleportRefused
	FailTeleport bool
}

// NewPlayer создаёт игрока в позиции pos
func NewPlayer(name string, pos mgl64.Vec3) *Player {
	return &Player{Console: NewConsole(name), id: uuid.New(), pos: pos}
}

func (p *Player) ID() uuid.UUID { return p.id }

func (p *Player) Location() mgl64.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *Player) Teleport(pos mgl64.Vec3) error {
	if p.FailTeleport {
		return ErrTeleportRefused
	}
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
	return nil
}
