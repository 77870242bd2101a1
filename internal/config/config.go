// Package config читает YAML-конфигурацию инспектора с fallback на переменные окружения.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/annel0/chunk-inspector/internal/players"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации.
type Config struct {
	// Authorized - игроки, которым разрешены команды /chunks (регистр не важен)
	Authorized []string        `yaml:"authorized"`
	Save       SaveConfig      `yaml:"save"`
	Redis      RedisConfig     `yaml:"redis"`
	EventBus   EventBusConfig  `yaml:"eventbus"`
	Server     ServerConfig    `yaml:"server"`
	Logging    LoggingConfig   `yaml:"logging"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`
}

// SaveConfig описывает, откуда брать кирпичи сохранения.
// Path имеет приоритет; иначе используется сохранение Name из хранилища StoreDir.
type SaveConfig struct {
	Path     string `yaml:"path"`
	StoreDir string `yaml:"store_dir"`
	Name     string `yaml:"name"`
}

// RedisConfig включает Redis-локатор игроков
type RedisConfig struct {
	Enabled             bool `yaml:"enabled"`
	players.RedisConfig `yaml:",inline"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // пусто - in-memory шина
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type ServerConfig struct {
	StatusPort int    `yaml:"status_port"`
	JWTSecret  string `yaml:"jwt_secret"` // base64; пусто - API без авторизации
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default возвращает конфигурацию, с которой инспектор работает без файла
func Default() *Config {
	return &Config{
		Save:     SaveConfig{Name: "chunks_save"},
		Redis:    RedisConfig{RedisConfig: players.DefaultRedisConfig()},
		EventBus: EventBusConfig{Stream: "CHUNKS", Retention: 24},
		Logging:  LoggingConfig{Level: "INFO"},
	}
}

// GetStatusPort возвращает порт status API с поддержкой fallback значений
func (s *ServerConfig) GetStatusPort() int {
	return getPortWithEnvFallback(s.StatusPort, "CHUNKS_STATUS_PORT", 8089)
}

// GetJWTSecret возвращает секрет токенов: config -> env CHUNKS_JWT_SECRET
func (s *ServerConfig) GetJWTSecret() string {
	if s.JWTSecret != "" {
		return s.JWTSecret
	}
	return os.Getenv("CHUNKS_JWT_SECRET")
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Validate проверяет согласованность секций
func (c *Config) Validate() error {
	if c.Save.Path == "" && c.Save.Name == "" {
		return fmt.Errorf("save: нужно указать path или name")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis: включён, но addr пуст")
	}
	for i, name := range c.Authorized {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("authorized[%d]: пустое имя", i)
		}
	}
	return nil
}

// Load читает YAML файл поверх Default().
// Если path == "", пытается прочитать из ENV CHUNKS_CONFIG; без файла возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CHUNKS_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
