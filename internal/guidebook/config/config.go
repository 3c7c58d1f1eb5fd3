// Управление конфигурацией сервиса редактора из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений в логах.
//   - Значения по умолчанию и ограничение значений для некоторых параметров.
package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"
)

// Значения по умолчанию
const (
	DefaultListenAddr     = ":8080"
	DefaultMetricsAddr    = ":2112"
	DefaultPreviewFormat  = "pretty"
	DefaultPreviewTimeout = 2000
	DefaultSessionTTL     = 60
	DefaultGlyph          = "⚡"
)

type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`

	PreviewFormat    string `env:"PREVIEW_FORMAT"`
	PreviewTimeoutMs int    `env:"PREVIEW_TIMEOUT_MS"`
	PreviewSanitize  bool   `env:"PREVIEW_SANITIZE"`

	SessionTTLMin int `env:"SESSION_TTL_MIN"`
	MaxSessions   int `env:"MAX_SESSIONS"`

	AffordanceGlyph string `env:"AFFORDANCE_GLYPH"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	return &Config{
		ListenAddr:       DefaultListenAddr,
		MetricsAddr:      DefaultMetricsAddr,
		PreviewFormat:    DefaultPreviewFormat,
		PreviewTimeoutMs: DefaultPreviewTimeout,
		SessionTTLMin:    DefaultSessionTTL,
		AffordanceGlyph:  DefaultGlyph,
	}
}

// ReadConfig загружает конфигурацию из переменных окружения поверх значений по умолчанию и проверяет ее.
func ReadConfig() (*Config, error) {
	config := Default()

	envConfig("env", config)

	if err := config.Normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// Normalize подставляет значения по умолчанию для пустых и недопустимых параметров.
// Неизвестный формат предпросмотра - ошибка.
func (c *Config) Normalize() error {
	switch c.PreviewFormat {
	case "":
		c.PreviewFormat = DefaultPreviewFormat
	case "pretty", "minify", "raw":
	default:
		return fmt.Errorf("PREVIEW_FORMAT incorrect: %q", c.PreviewFormat)
	}

	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.PreviewTimeoutMs <= 0 {
		c.PreviewTimeoutMs = DefaultPreviewTimeout
	}

	if c.SessionTTLMin <= 0 {
		c.SessionTTLMin = DefaultSessionTTL
	}

	if c.MaxSessions < 0 {
		c.MaxSessions = 0
	}

	if c.AffordanceGlyph == "" {
		c.AffordanceGlyph = DefaultGlyph
	}
	return nil
}

func (c *Config) PreviewTimeout() time.Duration {
	return time.Duration(c.PreviewTimeoutMs) * time.Millisecond
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
// Пустая переменная тоже присваивается: METRICS_ADDR="" отключает сервер метрик.
func envConfig(key string, s any) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if fEnvTag == "" || !Exist(fEnvTag) {
			continue
		}

		logValue := maskSecret(fName, GetEnv(fEnvTag))
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(GetEnv(fEnvTag))
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}

// Secure secrets in log
func maskSecret(field, value string) string {
	name := strings.ToLower(field)
	if !strings.Contains(name, "pass") && !strings.Contains(name, "secret") && !strings.Contains(name, "token") {
		return value
	}
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
