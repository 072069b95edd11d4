package command

import (
	"github.com/annel0/blockverse-mods/internal/text"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Sender источник команды: игрок или консоль
type Sender interface {
	Name() string
	SendMessage(msg text.Component)
}

// Player отправитель, находящийся в мире
type Player interface {
	Sender
	ID() uuid.UUID
	Location() mgl64.Vec3
	Teleport(pos mgl64.Vec3) error
}

// AsPlayer возвращает игрока, если команду отправил игрок
func AsPlayer(s Sender) (Player, bool) {
	p, ok := s.(Player)
	return p, ok
}
