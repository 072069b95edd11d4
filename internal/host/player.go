package host

import (
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/text"
)

// playerNamespace пространство имён для UUID игроков демо-хоста
var playerNamespace = uuid.MustParse("6f1e3c2a-8d4b-4f3e-9a51-0c7d2b9e4a10")

// PlayerID постоянный идентификатор игрока по имени без учёта регистра.
// Один и тот же ник получает тот же UUID в каждой сессии.
func PlayerID(name string) uuid.UUID {
	return uuid.NewSHA1(playerNamespace, []byte(strings.ToLower(name)))
}

// Player игрок демо-хоста. Сообщения выводятся в консоль хоста.
type Player struct {
	id   uuid.UUID
	name string
	out  *output

	mu  sync.RWMutex
	pos mgl64.Vec3
}

var _ command.Player = (*Player)(nil)

func newPlayer(name string, pos mgl64.Vec3, out *output) *Player {
	return &Player{id: PlayerID(name), name: name, pos: pos, out: out}
}

func (p *Player) ID() uuid.UUID { return p.id }

func (p *Player) Name() string { return p.name }

// SendMessage печатает сообщение с пометкой адресата
func (p *Player) SendMessage(msg text.Component) {
	p.out.printf("→ %s: %s\n", p.name, p.out.render(msg))
}

func (p *Player) Location() mgl64.Vec3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pos
}

// Teleport перемещает игрока без событий перемещения
func (p *Player) Teleport(pos mgl64.Vec3) error {
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
	return nil
}

// consoleSender отправитель команд от имени консоли
type consoleSender struct {
	out *output
}

var _ command.Sender = (*consoleSender)(nil)

func (c *consoleSender) Name() string { return ConsoleName }

func (c *consoleSender) SendMessage(msg text.Component) {
	c.out.printf("%s\n", c.out.render(msg))
}
