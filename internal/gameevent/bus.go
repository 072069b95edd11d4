// Package gameevent синхронная шина игровых событий с приоритетами обработчиков.
package gameevent

import (
	"sync"

	"github.com/robinbraemer/event"
)

// Priority порядок вызова обработчиков: больший приоритет вызывается раньше
type Priority int

const (
	PriorityLate   Priority = -100
	PriorityNormal Priority = 0
	PriorityEarly  Priority = 100
)

func (p Priority) String() string {
	switch p {
	case PriorityEarly:
		return "EARLY"
	case PriorityNormal:
		return "NORMAL"
	case PriorityLate:
		return "LATE"
	default:
		return "CUSTOM"
	}
}

// Source то, на что можно подписаться: шина или область мода
type Source interface {
	EventManager() event.Manager
}

type tracker interface {
	track(unsubscribe func())
}

// Bus шина событий процесса
type Bus struct {
	mgr event.Manager
}

// NewBus создаёт пустую шину
func NewBus() *Bus {
	return &Bus{mgr: event.New()}
}

// EventManager нижележащий менеджер событий
func (b *Bus) EventManager() event.Manager { return b.mgr }

// Fire вызывает обработчики в текущей горутине и возвращается после всех.
// Событие передаётся указателем, чтобы обработчики могли его менять.
func (b *Bus) Fire(e any) {
	b.mgr.Fire(e)
}

// Scope создаёт область подписок, которую можно закрыть целиком
func (b *Bus) Scope() *Scope {
	return &Scope{bus: b}
}

// Subscribe подписывает fn на события типа E (обычно указатель на событие).
// Возвращает функцию отписки; повторный вызов безопасен.
func Subscribe[E any](src Source, p Priority, fn func(E)) (unsubscribe func()) {
	unsubscribe = event.Subscribe(src.EventManager(), int(p), fn)
	if t, ok := src.(tracker); ok {
		t.track(unsubscribe)
	}
	return unsubscribe
}

// Scope набор подписок одного владельца (например, мода)
type Scope struct {
	bus    *Bus
	mu     sync.Mutex
	unsubs []func()
	closed bool
}

// EventManager менеджер родительской шины
func (s *Scope) EventManager() event.Manager { return s.bus.mgr }

func (s *Scope) track(unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		unsubscribe()
		return
	}
	s.unsubs = append(s.unsubs, unsubscribe)
}

// Len число активных подписок области
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unsubs)
}

// Close снимает все подписки области
func (s *Scope) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.closed = true
	s.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}
