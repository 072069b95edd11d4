package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/util"
)

// RedisPositionRepository хранит позиции игроков в Redis
type RedisPositionRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// playerPosition запись позиции в Redis
type playerPosition struct {
	PlayerID  string     `json:"player_id"`
	Position  [3]float64 `json:"position"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей, 0: без ограничения
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "blockverse:pos:",
	}
}

// NewRedisPositionRepository подключается к Redis, повторяя проверку соединения при сбоях
func NewRedisPositionRepository(ctx context.Context, config *RedisConfig) (*RedisPositionRepository, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	// Проверяем подключение
	err := util.Retry(ctx, 3, 200*time.Millisecond, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("🔴 Connected to Redis at %s", config.Addr)
	return &RedisPositionRepository{
		client:    client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

func (r *RedisPositionRepository) key(playerID uuid.UUID) string {
	return r.keyPrefix + playerID.String()
}

func encodePosition(playerID uuid.UUID, pos mgl64.Vec3) ([]byte, error) {
	return json.Marshal(playerPosition{
		PlayerID:  playerID.String(),
		Position:  pos,
		UpdatedAt: time.Now().UTC(),
	})
}

// Save сохраняет позицию игрока
func (r *RedisPositionRepository) Save(ctx context.Context, playerID uuid.UUID, pos mgl64.Vec3) error {
	if err := validatePosition(playerID, pos); err != nil {
		return err
	}
	data, err := encodePosition(playerID, pos)
	if err != nil {
		return fmt.Errorf("failed to marshal position: %w", err)
	}
	if err := r.client.Set(ctx, r.key(playerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// Load получает позицию игрока
func (r *RedisPositionRepository) Load(ctx context.Context, playerID uuid.UUID) (mgl64.Vec3, bool, error) {
	data, err := r.client.Get(ctx, r.key(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return mgl64.Vec3{}, false, nil // Позиция не найдена
	} else if err != nil {
		return mgl64.Vec3{}, false, fmt.Errorf("failed to get position: %w", err)
	}

	var rec playerPosition
	if err := json.Unmarshal(data, &rec); err != nil {
		return mgl64.Vec3{}, false, fmt.Errorf("failed to unmarshal position: %w", err)
	}
	return mgl64.Vec3(rec.Position), true, nil
}

// Delete удаляет позицию игрока
func (r *RedisPositionRepository) Delete(ctx context.Context, playerID uuid.UUID) error {
	n, err := r.client.Del(ctx, r.key(playerID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPositionNotFound, playerID)
	}
	return nil
}

// BatchSave записывает позиции одним пайплайном
func (r *RedisPositionRepository) BatchSave(ctx context.Context, positions map[uuid.UUID]mgl64.Vec3) error {
	if len(positions) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for playerID, pos := range positions {
		if err := validatePosition(playerID, pos); err != nil {
			return fmt.Errorf("batch: %w", err)
		}
		data, err := encodePosition(playerID, pos)
		if err != nil {
			return fmt.Errorf("failed to marshal position for %s: %w", playerID, err)
		}
		pipe.Set(ctx, r.key(playerID), data, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	return nil
}

// Count возвращает количество сохранённых позиций
func (r *RedisPositionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// Close закрывает соединение с Redis
func (r *RedisPositionRepository) Close() error {
	return r.client.Close()
}
