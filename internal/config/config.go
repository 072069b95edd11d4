package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации хоста модов.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	World     WorldConfig     `yaml:"world"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Positions PositionsConfig `yaml:"positions"`
	Audit     AuditConfig     `yaml:"audit"`
	Chat      ChatConfig      `yaml:"chat"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Scripts   ScriptsConfig   `yaml:"scripts"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	RESTPort    int  `yaml:"rest_port"`
	MetricsPort int  `yaml:"metrics_port"`
	RESTEnabled bool `yaml:"rest_enabled"`
}

type WorldConfig struct {
	Seed            int64  `yaml:"seed"`
	DataDir         string `yaml:"data_dir"`
	Generator       string `yaml:"generator"` // perlin | flat
	PreloadRadius   int    `yaml:"preload_radius"`
	AutosaveSeconds int    `yaml:"autosave_seconds"`
	Compression     bool   `yaml:"compression"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // пусто: in-memory шина
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type PositionsConfig struct {
	Backend   string `yaml:"backend"` // memory | redis | maria
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	MariaDSN  string `yaml:"maria_dsn"`
}

type AuditConfig struct {
	Backend       string `yaml:"backend"` // memory | sqlite | mongo
	SQLitePath    string `yaml:"sqlite_path"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

type ChatConfig struct {
	BlockedPatterns    []string `yaml:"blocked_patterns"`
	AnnouncementPrefix string   `yaml:"announcement_prefix"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type ScriptsConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default возвращает конфигурацию по умолчанию: всё в памяти, REST включён.
func Default() *Config {
	return &Config{
		Server: ServerConfig{RESTEnabled: true},
		World: WorldConfig{
			Seed:            1337,
			DataDir:         "data",
			Generator:       "perlin",
			PreloadRadius:   2,
			AutosaveSeconds: 30,
			Compression:     true,
		},
		EventBus: EventBusConfig{
			Stream:    "EVENTS",
			Retention: 24,
			Buffer:    256,
		},
		Positions: PositionsConfig{Backend: "memory", RedisAddr: "localhost:6379"},
		Audit:     AuditConfig{Backend: "memory", SQLitePath: "data/audit.db", MongoDatabase: "blockverse"},
		Chat: ChatConfig{
			BlockedPatterns:    []string{"*badword*"},
			AnnouncementPrefix: "!",
		},
		Telemetry: TelemetryConfig{ServiceName: "modhost"},
		Scripts:   ScriptsConfig{Dir: "scripts"},
		Log:       LogConfig{Level: "info"},
	}
}

// AutosaveInterval возвращает период автосохранения
func (w *WorldConfig) AutosaveInterval() time.Duration {
	if w.AutosaveSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(w.AutosaveSeconds) * time.Second
}

// RetentionDuration возвращает время хранения событий в стриме
func (e *EventBusConfig) RetentionDuration() time.Duration {
	return time.Duration(e.Retention) * time.Hour
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "MODHOST_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "MODHOST_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV MODHOST_CONFIG,
// а если и он пуст: возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("MODHOST_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые нельзя исправить по умолчанию
func (c *Config) Validate() error {
	switch c.Positions.Backend {
	case "memory", "redis", "maria":
	default:
		return fmt.Errorf("positions.backend: неизвестное значение %q", c.Positions.Backend)
	}
	switch c.Audit.Backend {
	case "memory", "sqlite", "mongo":
	default:
		return fmt.Errorf("audit.backend: неизвестное значение %q", c.Audit.Backend)
	}
	switch c.World.Generator {
	case "perlin", "flat":
	default:
		return fmt.Errorf("world.generator: неизвестное значение %q", c.World.Generator)
	}
	if c.World.PreloadRadius < 0 {
		return fmt.Errorf("world.preload_radius не может быть отрицательным: %d", c.World.PreloadRadius)
	}
	return nil
}
