// Package command описывает команды чата, их аргументы и реестр с разбором строки.
package command

import (
	"context"
	"fmt"
	"strings"
)

// Handler выполняет команду. Ошибки пользователя обработчик сообщает сам
// через sender; возвращаемая ошибка считается внутренней.
type Handler func(ctx context.Context, sender Sender, args Args) error

// Argument описание позиционного аргумента
type Argument struct {
	Name     string
	Required bool
}

// Command определение команды. Собирается цепочкой New(...).WithRequiredArg(...).Handle(...).
type Command struct {
	name        string
	description string
	args        []Argument
	handler     Handler
	err         error
}

// New создаёт команду с именем без ведущего '/'
func New(name, description string) *Command {
	return &Command{
		name:        strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/")),
		description: description,
	}
}

// WithRequiredArg добавляет обязательный аргумент.
// Обязательные аргументы не могут следовать за необязательными.
func (c *Command) WithRequiredArg(name string) *Command {
	if c.OptionalCount() > 0 && c.err == nil {
		c.err = fmt.Errorf("обязательный аргумент %q после необязательного", name)
	}
	c.args = append(c.args, Argument{Name: name, Required: true})
	return c
}

// WithOptionalArg добавляет необязательный аргумент
func (c *Command) WithOptionalArg(name string) *Command {
	c.args = append(c.args, Argument{Name: name})
	return c
}

// Handle задаёт обработчик
func (c *Command) Handle(h Handler) *Command {
	c.handler = h
	return c
}

// Name имя команды
func (c *Command) Name() string { return c.name }

// Description описание команды
func (c *Command) Description() string { return c.description }

// Arguments копия списка аргументов
func (c *Command) Arguments() []Argument {
	out := make([]Argument, len(c.args))
	copy(out, c.args)
	return out
}

// RequiredCount число обязательных аргументов
func (c *Command) RequiredCount() int {
	n := 0
	for _, a := range c.args {
		if a.Required {
			n++
		}
	}
	return n
}

// OptionalCount число необязательных аргументов
func (c *Command) OptionalCount() int {
	return len(c.args) - c.RequiredCount()
}

// Usage строка использования: /setblock <x> <y> <z> <blockType>, необязательные в [скобках]
func (c *Command) Usage() string {
	var sb strings.Builder
	sb.WriteString("/")
	sb.WriteString(c.name)
	for _, a := range c.args {
		if a.Required {
			fmt.Fprintf(&sb, " <%s>", a.Name)
		} else {
			fmt.Fprintf(&sb, " [%s]", a.Name)
		}
	}
	return sb.String()
}

func (c *Command) validate() error {
	if c.name == "" || strings.ContainsAny(c.name, " \t") {
		return fmt.Errorf("%w: некорректное имя %q", ErrInvalidCommand, c.name)
	}
	if c.handler == nil {
		return fmt.Errorf("%w: /%s без обработчика", ErrInvalidCommand, c.name)
	}
	if c.err != nil {
		return fmt.Errorf("%w: /%s: %v", ErrInvalidCommand, c.name, c.err)
	}
	return nil
}

// bind сопоставляет токены аргументам
func (c *Command) bind(tokens []string) (Args, bool) {
	if len(tokens) < c.RequiredCount() || len(tokens) > len(c.args) {
		return Args{}, false
	}
	args := Args{values: make(map[string]string, len(tokens)), raw: tokens}
	for i, tok := range tokens {
		args.values[c.args[i].Name] = tok
	}
	return args, true
}

// Args значения аргументов конкретного вызова
type Args struct {
	values map[string]string
	raw    []string
}

// Get возвращает значение аргумента и признак его наличия
func (a Args) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// String возвращает значение аргумента или пустую строку
func (a Args) String(name string) string {
	return a.values[name]
}

// Len число переданных аргументов
func (a Args) Len() int { return len(a.raw) }

// Raw аргументы в порядке ввода
func (a Args) Raw() []string {
	out := make([]string, len(a.raw))
	copy(out, a.raw)
	return out
}
