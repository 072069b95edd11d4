package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder хранит журнал в файле SQLite
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder открывает (и при необходимости создаёт) базу по пути path
func NewSQLiteRecorder(ctx context.Context, path string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("audit: создание директории %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: открытие %s: %w", path, err)
	}
	// SQLite не допускает параллельной записи
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS edits (
			id       TEXT PRIMARY KEY,
			ts       INTEGER NOT NULL,
			actor    TEXT NOT NULL,
			op       TEXT NOT NULL,
			min_x    INTEGER, min_y INTEGER, min_z INTEGER,
			max_x    INTEGER, max_y INTEGER, max_z INTEGER,
			block    TEXT,
			from_blk TEXT,
			changed  INTEGER NOT NULL,
			error    TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_edits_ts ON edits(ts);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: создание таблицы: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

// Record добавляет запись в журнал
func (s *SQLiteRecorder) Record(ctx context.Context, rec Record) error {
	rec = normalize(rec)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO edits (id, ts, actor, op, min_x, min_y, min_z, max_x, max_y, max_z, block, from_blk, changed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Time.UnixNano(), rec.Actor, rec.Op,
		rec.Min.X, rec.Min.Y, rec.Min.Z, rec.Max.X, rec.Max.Y, rec.Max.Z,
		rec.Block, rec.From, rec.Changed, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("audit: запись %s: %w", rec.ID, err)
	}
	return nil
}

// Recent возвращает последние записи, новые первыми
func (s *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, actor, op, min_x, min_y, min_z, max_x, max_y, max_z, block, from_blk, changed, error
		FROM edits ORDER BY ts DESC, rowid DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("audit: чтение журнала: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec Record
			id  string
			ts  int64
		)
		if err := rows.Scan(&id, &ts, &rec.Actor, &rec.Op,
			&rec.Min.X, &rec.Min.Y, &rec.Min.Z, &rec.Max.X, &rec.Max.Y, &rec.Max.Z,
			&rec.Block, &rec.From, &rec.Changed, &rec.Error); err != nil {
			return nil, fmt.Errorf("audit: разбор строки: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("audit: неверный id %q: %w", id, err)
		}
		rec.Time = time.Unix(0, ts).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close закрывает базу
func (s *SQLiteRecorder) Close() error {
	return s.db.Close()
}
