package storage

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ErrPositionNotFound позиция игрока не сохранялась
var ErrPositionNotFound = errors.New("позиция не найдена")

// PositionRepo определяет интерфейс для сохранения и загрузки позиций игроков.
// Позиции привязаны к постоянному UUID игрока, что позволяет
// восстанавливать позицию между сессиями.
type PositionRepo interface {
	// Save сохраняет позицию игрока в хранилище.
	Save(ctx context.Context, playerID uuid.UUID, pos mgl64.Vec3) error

	// Load загружает позицию игрока из хранилища.
	// found == false, если игрок входит впервые.
	Load(ctx context.Context, playerID uuid.UUID) (pos mgl64.Vec3, found bool, err error)

	// Delete удаляет сохраненную позицию игрока.
	// Возвращает ErrPositionNotFound, если удалять нечего.
	Delete(ctx context.Context, playerID uuid.UUID) error

	// BatchSave сохраняет позиции нескольких игроков одновременно (для автосохранения).
	BatchSave(ctx context.Context, positions map[uuid.UUID]mgl64.Vec3) error

	// Close освобождает соединения хранилища.
	Close() error
}

// validatePosition проверяет идентификатор и координаты перед записью
func validatePosition(playerID uuid.UUID, pos mgl64.Vec3) error {
	if playerID == uuid.Nil {
		return fmt.Errorf("недействительный ID игрока: %s", playerID)
	}
	for _, v := range pos {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("недействительная позиция игрока %s: %v", playerID, pos)
		}
	}
	return nil
}
