package editor

import (
	"fmt"

	"github.com/annel0/blockverse-mods/internal/vec"
)

// Имена операций редактора, используются в ошибках, логах и метриках
const (
	OpFill        = "fill"
	OpHollow      = "hollow"
	OpReplace     = "replace"
	OpClearColumn = "clear_column"
	OpHighest     = "highest_solid"
	OpIsSafe      = "is_safe"
)

// AccessError ошибка чтения или записи блока, прервавшая операцию
type AccessError struct {
	Op  string   // операция редактора
	Pos vec.Vec3 // позиция, на которой произошёл сбой
	Err error    // исходная ошибка доступа
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("editor %s: access at %s failed: %v", e.Op, e.Pos, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}
