// Package host демонстрационный хост: игроки, консоль, автосохранение.
// Заменяет настоящий игровой сервер ровно настолько, чтобы моды можно было запустить.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/eventbus"
	"github.com/annel0/blockverse-mods/internal/gameevent"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/storage"
	"github.com/annel0/blockverse-mods/internal/text"
	"github.com/annel0/blockverse-mods/internal/util"
	"github.com/annel0/blockverse-mods/internal/worldedit"
)

const (
	// ConsoleName имя отправителя для команд консоли
	ConsoleName = "CONSOLE"

	// EventSource источник конвертов хоста
	EventSource = "host"
	// EventPlayerJoin тип конверта входа игрока
	EventPlayerJoin = "PlayerJoin"
	// EventPlayerQuit тип конверта выхода игрока
	EventPlayerQuit = "PlayerQuit"

	// fallbackSpawnY высота появления, если колонка спавна пуста
	fallbackSpawnY = 64
)

var (
	ErrAlreadyOnline = errors.New("player already online")
	ErrNotOnline     = errors.New("player not online")
	ErrInvalidName   = errors.New("invalid player name")
)

// Session полезная нагрузка конвертов PlayerJoin/PlayerQuit
type Session struct {
	PlayerID uuid.UUID  `json:"player_id"`
	Name     string     `json:"name"`
	Position mgl64.Vec3 `json:"position"`
}

// Deps зависимости хоста
type Deps struct {
	Commands  *command.Registry
	Events    *gameevent.Bus
	WorldEdit *worldedit.Service
	Positions storage.PositionRepo
	// Bus шина конвертов; nil означает глобальную eventbus.Global()
	Bus    eventbus.EventBus
	Out    io.Writer // по умолчанию os.Stdout
	Color  bool      // ANSI-цвета в выводе
	Logger *logging.Logger
}

type output struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

func (o *output) render(msg text.Component) string {
	if o.color {
		return msg.ANSI()
	}
	return msg.Plain()
}

func (o *output) printf(format string, args ...interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.w, format, args...)
}

// Host держит онлайн-игроков и связывает их с командами, событиями и миром
type Host struct {
	deps    Deps
	out     *output
	console *consoleSender
	logger  *logging.Logger

	mu      sync.Mutex
	players map[string]*Player // ключ: ник в нижнем регистре
	active  *Player
}

// New создаёт хост
func New(deps Deps) *Host {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Logger == nil {
		deps.Logger = logging.GetHostLogger()
	}
	if deps.Positions == nil {
		deps.Positions = storage.NewMemoryPositionRepo()
	}
	out := &output{w: deps.Out, color: deps.Color}
	return &Host{
		deps:    deps,
		out:     out,
		console: &consoleSender{out: out},
		logger:  deps.Logger,
		players: make(map[string]*Player),
	}
}

// Console отправитель команд от имени консоли
func (h *Host) Console() command.Sender { return h.console }

// Player онлайн-игрок по нику
func (h *Host) Player(name string) (*Player, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.players[strings.ToLower(name)]
	return p, ok
}

// Players онлайн-игроки, отсортированные по нику
func (h *Host) Players() []*Player {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Player, 0, len(h.players))
	for _, p := range h.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Active игрок, от имени которого консоль выполняет команды и пишет в чат
func (h *Host) Active() *Player {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// SetActive делает игрока name активным
func (h *Host) SetActive(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.players[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOnline, name)
	}
	h.active = p
	return nil
}

// Broadcast рассылает сообщение всем онлайн-игрокам
func (h *Host) Broadcast(msg text.Component) {
	if msg.IsEmpty() {
		return
	}
	h.out.printf("[broadcast] %s\n", h.out.render(msg))
}

// Join вводит игрока в мир: восстанавливает сохранённую позицию или ставит
// на верхний твёрдый блок колонки (0, 0).
func (h *Host) Join(ctx context.Context, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	key := strings.ToLower(name)

	h.mu.Lock()
	_, online := h.players[key]
	h.mu.Unlock()
	if online {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOnline, name)
	}

	pos, found, err := h.deps.Positions.Load(ctx, PlayerID(name))
	if err != nil {
		return nil, fmt.Errorf("load position of %s: %w", name, err)
	}
	if !found {
		if pos, err = h.spawnPoint(ctx); err != nil {
			return nil, err
		}
	}

	p := newPlayer(name, pos, h.out)
	h.mu.Lock()
	if _, online := h.players[key]; online {
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOnline, name)
	}
	h.players[key] = p
	if h.active == nil {
		h.active = p
	}
	h.mu.Unlock()

	ev := &gameevent.PlayerJoin{
		Player:      p,
		JoinMessage: text.Colored(name+" joined the game", text.Yellow),
	}
	h.fire(ev)
	h.Broadcast(ev.JoinMessage)

	if err := h.deps.Positions.Save(ctx, p.ID(), pos); err != nil {
		h.logger.Warn("Не удалось сохранить позицию %s: %v", name, err)
	}
	h.publish(ctx, EventPlayerJoin, p)
	h.logger.Info("👤 %s вошёл в [%.1f, %.1f, %.1f]", name, pos.X(), pos.Y(), pos.Z())
	return p, nil
}

// spawnPoint точка над верхним твёрдым блоком колонки (0, 0)
func (h *Host) spawnPoint(ctx context.Context) (mgl64.Vec3, error) {
	if h.deps.WorldEdit == nil {
		return mgl64.Vec3{0, fallbackSpawnY, 0}, nil
	}
	y, found, err := h.deps.WorldEdit.HighestSolid(ctx, 0, 0)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("spawn point: %w", err)
	}
	if !found {
		return mgl64.Vec3{0, fallbackSpawnY, 0}, nil
	}
	return mgl64.Vec3{0, float64(y + 1), 0}, nil
}

// Quit выводит игрока, сохраняя его позицию
func (h *Host) Quit(ctx context.Context, name string) error {
	key := strings.ToLower(name)

	h.mu.Lock()
	p, ok := h.players[key]
	if ok {
		delete(h.players, key)
		if h.active == p {
			h.active = nil
			for _, other := range h.players {
				if h.active == nil || other.name < h.active.name {
					h.active = other
				}
			}
		}
	}
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOnline, name)
	}

	ev := &gameevent.PlayerQuit{
		Player:      p,
		QuitMessage: text.Colored(p.name+" left the game", text.Yellow),
	}
	h.fire(ev)
	h.Broadcast(ev.QuitMessage)

	var saveErr error
	if err := h.deps.Positions.Save(ctx, p.ID(), p.Location()); err != nil {
		saveErr = fmt.Errorf("save position of %s: %w", p.name, err)
	}
	h.publish(ctx, EventPlayerQuit, p)
	h.logger.Info("👋 %s вышел", p.name)
	return saveErr
}

// Chat отправляет сообщение игрока. false, если обработчик отменил отправку.
func (h *Host) Chat(p *Player, message string) bool {
	ev := &gameevent.PlayerChat{Player: p, Message: message}
	h.fire(ev)
	if ev.Cancelled() {
		return false
	}
	h.Broadcast(text.Of("<" + p.name + "> " + ev.Message))
	return true
}

// Move перемещает игрока в to. false, если обработчик отменил перемещение.
func (h *Host) Move(p *Player, to mgl64.Vec3) (bool, error) {
	ev := &gameevent.PlayerMove{Player: p, From: p.Location(), To: to}
	h.fire(ev)
	if ev.Cancelled() {
		return false, nil
	}
	if err := p.Teleport(ev.To); err != nil {
		return false, err
	}
	return true, nil
}

// Dispatch выполняет командную строку от имени sender
func (h *Host) Dispatch(ctx context.Context, sender command.Sender, line string) error {
	if h.deps.Commands == nil {
		return command.ErrUnknownCommand
	}
	return h.deps.Commands.Dispatch(ctx, sender, line)
}

// SavePositions сохраняет позиции всех онлайн-игроков одной пачкой
func (h *Host) SavePositions(ctx context.Context) error {
	players := h.Players()
	if len(players) == 0 {
		return nil
	}
	batch := make(map[uuid.UUID]mgl64.Vec3, len(players))
	for _, p := range players {
		batch[p.ID()] = p.Location()
	}
	return h.deps.Positions.BatchSave(ctx, batch)
}

// Save сохраняет изменённые чанки и позиции игроков
func (h *Host) Save(ctx context.Context) error {
	var errs []error
	if h.deps.WorldEdit != nil {
		n, err := h.deps.WorldEdit.World().SaveDirty(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("save chunks: %w", err))
		} else if n > 0 {
			h.logger.Debug("💾 Сохранено чанков: %d", n)
		}
	}
	if err := h.SavePositions(ctx); err != nil {
		errs = append(errs, fmt.Errorf("save positions: %w", err))
	}
	return errors.Join(errs...)
}

// Autosave сохраняет мир каждые interval до отмены ctx.
// Неудачное сохранение повторяется с фибоначчиевой задержкой.
func (h *Host) Autosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := util.Retry(ctx, 3, interval/10, func(ctx context.Context) error {
				return h.Save(ctx)
			})
			if err != nil && ctx.Err() == nil {
				h.logger.Error("❌ Автосохранение не удалось: %v", err)
			}
		}
	}
}

// Shutdown выводит всех игроков и сохраняет мир
func (h *Host) Shutdown(ctx context.Context) error {
	var errs []error
	for _, p := range h.Players() {
		if err := h.Quit(ctx, p.name); err != nil {
			errs = append(errs, err)
		}
	}
	if err := h.Save(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (h *Host) fire(e any) {
	if h.deps.Events != nil {
		h.deps.Events.Fire(e)
	}
}

func (h *Host) publish(ctx context.Context, eventType string, p *Player) {
	ev, err := eventbus.NewEnvelope(EventSource, eventType, Session{
		PlayerID: p.ID(),
		Name:     p.name,
		Position: p.Location(),
	})
	if err != nil {
		h.logger.Warn("Конверт %s не создан: %v", eventType, err)
		return
	}
	if h.deps.Bus != nil {
		err = h.deps.Bus.Publish(ctx, ev)
	} else {
		err = eventbus.Publish(ctx, ev)
	}
	if err != nil {
		h.logger.Warn("Конверт %s не опубликован: %v", eventType, err)
	}
}
