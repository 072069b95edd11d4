package eventexample

import (
	"math"
	"strings"

	"github.com/annel0/blockverse-mods/internal/gameevent"
	"github.com/annel0/blockverse-mods/internal/text"
)

func (p *Plugin) onJoin(e *gameevent.PlayerJoin) {
	name := e.Player.Name()
	p.logger.Info("%s зашёл на сервер", name)

	e.JoinMessage = text.Colored("Welcome, ", text.Yellow).Append(
		text.Colored(name, text.Gold).Bolded(),
		text.Colored("!", text.Yellow),
	)
}

func (p *Plugin) onQuit(e *gameevent.PlayerQuit) {
	name := e.Player.Name()
	p.logger.Info("%s покинул сервер", name)

	e.QuitMessage = text.Colored(name, text.Gray).Append(
		text.Colored(" has left the game", text.DarkGray),
	)
}

// onChat модерация чата, вызывается раньше остальных обработчиков
func (p *Plugin) onChat(e *gameevent.PlayerChat) {
	name := e.Player.Name()
	p.logger.Info("[CHAT] %s: %s", name, e.Message)

	lower := strings.ToLower(e.Message)
	for _, g := range p.blocked {
		if g.Match(lower) {
			e.SetCancelled(true)
			e.Player.SendMessage(text.Colored("Your message was blocked!", text.Red))
			p.logger.Warn("Сообщение от %s заблокировано", name)
			break
		}
	}

	if p.prefix != "" && strings.HasPrefix(e.Message, p.prefix) {
		e.Message = "[ANNOUNCEMENT] " + strings.TrimPrefix(e.Message, p.prefix)
	}
}

// onMove проверка перемещения, вызывается после остальных обработчиков
func (p *Plugin) onMove(e *gameevent.PlayerMove) {
	name := e.Player.Name()
	if e.To.Y() < 0 {
		e.SetCancelled(true)
		e.Player.SendMessage(text.Colored("You cannot go below Y=0!", text.Red))
		p.logger.Info("%s не пущен ниже Y=0", name)
	}

	fromX, fromZ := chunkOf(e.From.X()), chunkOf(e.From.Z())
	toX, toZ := chunkOf(e.To.X()), chunkOf(e.To.Z())
	if fromX != toX || fromZ != toZ {
		p.logger.Info("%s перешёл в чанк [%d, %d]", name, toX, toZ)
	}
}

func chunkOf(v float64) int {
	return int(math.Floor(v / 16))
}
