package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/annel0/blockverse-mods/internal/util"
)

// MariaPositionRepo реализует PositionRepo для базы данных MariaDB/MySQL.
// Использует таблицу player_positions для хранения позиций игроков.
type MariaPositionRepo struct {
	db *sql.DB
}

const upsertPositionQuery = `
	INSERT INTO player_positions (player_id, x, y, z)
	VALUES (?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		x = VALUES(x),
		y = VALUES(y),
		z = VALUES(z),
		updated_at = CURRENT_TIMESTAMP
`

// NewMariaPositionRepo создает новый репозиторий позиций для MariaDB.
// Автоматически создает таблицу, если она не существует.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMariaPositionRepo(ctx context.Context, dsn string) (*MariaPositionRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	// Проверяем соединение
	if err := util.Retry(ctx, 3, 200*time.Millisecond, db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaPositionRepo{db: db}
	if err := repo.createTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}
	return repo, nil
}

// createTable создает таблицу player_positions, если она не существует.
func (r *MariaPositionRepo) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS player_positions (
			player_id  CHAR(36)    PRIMARY KEY,
			x          DOUBLE      NOT NULL,
			y          DOUBLE      NOT NULL,
			z          DOUBLE      NOT NULL,
			updated_at TIMESTAMP   DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE   CURRENT_TIMESTAMP,
			INDEX idx_updated_at (updated_at)
		) ENGINE=InnoDB
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка создания таблицы player_positions: %w", err)
	}
	return nil
}

// Save сохраняет позицию игрока в базе данных.
func (r *MariaPositionRepo) Save(ctx context.Context, playerID uuid.UUID, pos mgl64.Vec3) error {
	if err := validatePosition(playerID, pos); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, upsertPositionQuery, playerID.String(), pos.X(), pos.Y(), pos.Z()); err != nil {
		return fmt.Errorf("ошибка сохранения позиции игрока %s: %w", playerID, err)
	}
	return nil
}

// Load загружает позицию игрока из базы данных.
func (r *MariaPositionRepo) Load(ctx context.Context, playerID uuid.UUID) (mgl64.Vec3, bool, error) {
	query := `SELECT x, y, z FROM player_positions WHERE player_id = ?`

	var pos mgl64.Vec3
	err := r.db.QueryRowContext(ctx, query, playerID.String()).Scan(&pos[0], &pos[1], &pos[2])
	if errors.Is(err, sql.ErrNoRows) {
		// Позиция не найдена - первый вход игрока
		return mgl64.Vec3{}, false, nil
	}
	if err != nil {
		return mgl64.Vec3{}, false, fmt.Errorf("ошибка загрузки позиции игрока %s: %w", playerID, err)
	}
	return pos, true, nil
}

// Delete удаляет сохраненную позицию игрока.
func (r *MariaPositionRepo) Delete(ctx context.Context, playerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM player_positions WHERE player_id = ?`, playerID.String())
	if err != nil {
		return fmt.Errorf("ошибка удаления позиции игрока %s: %w", playerID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества затронутых строк: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrPositionNotFound, playerID)
	}
	return nil
}

// BatchSave сохраняет позиции нескольких игроков в одной транзакции.
func (r *MariaPositionRepo) BatchSave(ctx context.Context, positions map[uuid.UUID]mgl64.Vec3) error {
	if len(positions) == 0 {
		return nil // Нечего сохранять
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback() // Откат в случае ошибки

	stmt, err := tx.PrepareContext(ctx, upsertPositionQuery)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	for playerID, pos := range positions {
		if err := validatePosition(playerID, pos); err != nil {
			return fmt.Errorf("batch: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, playerID.String(), pos.X(), pos.Y(), pos.Z()); err != nil {
			return fmt.Errorf("ошибка сохранения позиции игрока %s в batch: %w", playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой данных.
func (r *MariaPositionRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
