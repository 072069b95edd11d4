package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/buildkite/shellwords"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/text"
)

// Метки результата для commands_executed_total
const (
	resultOK      = "ok"
	resultUnknown = "unknown"
	resultUsage   = "usage"
	resultError   = "error"
)

// Registry реестр команд. Безопасен для конкурентного использования.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	logger   *logging.Logger
	metrics  *Metrics
	tracer   trace.Tracer
}

// Option настраивает Registry
type Option func(*Registry)

// WithLogger логгер ошибок обработчиков
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithMetrics включает счётчик команд
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithTracer задаёт трейсер вместо глобального
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) { r.tracer = t }
}

// NewRegistry создаёт пустой реестр
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		logger:   logging.Default(),
		tracer:   otel.Tracer("github.com/annel0/blockverse-mods/command"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register добавляет команду
func (r *Registry) Register(cmd *Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: nil", ErrInvalidCommand)
	}
	if err := cmd.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[cmd.name]; exists {
		return fmt.Errorf("%w: /%s", ErrDuplicateCommand, cmd.name)
	}
	r.commands[cmd.name] = cmd
	r.logger.Debug("Зарегистрирована команда %s", cmd.Usage())
	return nil
}

// Unregister удаляет команду. Возвращает false, если её не было.
func (r *Registry) Unregister(name string) bool {
	name = normalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[name]; !ok {
		return false
	}
	delete(r.commands, name)
	return true
}

// Lookup ищет команду по имени (регистр и ведущий '/' не важны)
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[normalizeName(name)]
	return cmd, ok
}

// Commands все команды, отсортированные по имени
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	out := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Dispatch разбирает строку и выполняет команду от имени sender.
// Пользователь получает красное сообщение при неизвестной команде, неверных
// аргументах и внутренней ошибке; сама ошибка возвращается вызывающему.
func (r *Registry) Dispatch(ctx context.Context, sender Sender, line string) error {
	ctx, span := r.tracer.Start(ctx, "command.dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("command.sender", sender.Name()))

	line = strings.TrimPrefix(strings.TrimSpace(line), "/")
	tokens, perr := shellwords.SplitPosix(line)
	if perr != nil {
		sender.SendMessage(text.Colored("Invalid command syntax: "+perr.Error(), text.Red))
		r.metrics.inc("", resultUsage)
		span.SetStatus(codes.Error, "syntax")
		return fmt.Errorf("%w: %v", ErrUsage, perr)
	}
	if len(tokens) == 0 {
		r.metrics.inc("", resultUnknown)
		span.SetStatus(codes.Error, "empty")
		return fmt.Errorf("%w: пустая строка", ErrUnknownCommand)
	}

	name := normalizeName(tokens[0])
	span.SetAttributes(attribute.String("command.name", name))
	cmd, ok := r.Lookup(name)
	if !ok {
		sender.SendMessage(text.Colored("Unknown command: /"+name, text.Red))
		r.metrics.inc(name, resultUnknown)
		span.SetStatus(codes.Error, "unknown")
		return fmt.Errorf("%w: /%s", ErrUnknownCommand, name)
	}

	args, ok := cmd.bind(tokens[1:])
	if !ok {
		sender.SendMessage(text.Colored("Usage: "+cmd.Usage(), text.Red))
		r.metrics.inc(name, resultUsage)
		span.SetStatus(codes.Error, "usage")
		return fmt.Errorf("%w: %s", ErrUsage, cmd.Usage())
	}

	if herr := cmd.handler(ctx, sender, args); herr != nil {
		sender.SendMessage(text.Colored("An internal error occurred", text.Red))
		r.logger.Error("Команда /%s от %s завершилась ошибкой: %v", name, sender.Name(), herr)
		r.metrics.inc(name, resultError)
		span.RecordError(herr)
		span.SetStatus(codes.Error, herr.Error())
		return fmt.Errorf("command /%s: %w", name, herr)
	}

	r.metrics.inc(name, resultOK)
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
}
