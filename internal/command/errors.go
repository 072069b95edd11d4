package command

import "errors"

var (
	// ErrUnknownCommand команда не зарегистрирована
	ErrUnknownCommand = errors.New("command: unknown command")
	// ErrUsage неверное число аргументов или синтаксис строки
	ErrUsage = errors.New("command: usage")
	// ErrDuplicateCommand команда с таким именем уже есть
	ErrDuplicateCommand = errors.New("command: duplicate command")
	// ErrInvalidCommand определение команды неполное
	ErrInvalidCommand = errors.New("command: invalid definition")
)
