// Package config загружает конфигурацию dispatch-сервиса.
//
// Источники (в порядке приоритета):
//   - переменные окружения (DISPATCH_*, DB_URL, RABBITMQ_URL)
//   - TOML файл
//   - значения по умолчанию
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/shaiso/Dispatch/internal/domain"
)

// ErrInvalidConfig — конфигурация не прошла валидацию.
var ErrInvalidConfig = errors.New("invalid config")

// Config — конфигурация сервиса.
type Config struct {
	Referral ReferralConfig `toml:"referral"`
	Job      JobConfig      `toml:"job"`
	Database DatabaseConfig `toml:"database"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Server   ServerConfig   `toml:"server"`
}

// ReferralConfig — доступ к Referral API.
type ReferralConfig struct {
	BaseURL      string `toml:"base_url"`
	CreatePath   string `toml:"create_path"`
	SendPath     string `toml:"send_path"`
	APIKey       string `toml:"api_key"`
	APIKeyHeader string `toml:"api_key_header"`
	TimeoutSec   int    `toml:"timeout_sec"`
}

// JobConfig — расписание и границы задания.
type JobConfig struct {
	Name          string `toml:"name"`
	Cron          string `toml:"cron"`
	Timezone      string `toml:"timezone"`
	MaxIterations int    `toml:"max_iterations"`
	LateAfterSec  int    `toml:"late_after_sec"`
	RunOnStart    bool   `toml:"run_on_start"`
}

// DatabaseConfig — Postgres для истории runs. Пустой URL отключает историю.
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// RabbitMQConfig — брокер для heartbeat-событий и триггеров. Пустой URL отключает MQ.
type RabbitMQConfig struct {
	URL string `toml:"url"`
}

// ServerConfig — HTTP сервер планировщика (/healthz, /metrics, /api/v1).
type ServerConfig struct {
	Port int `toml:"port"`
}

// Default возвращает Config со значениями по умолчанию.
func Default() *Config {
	return &Config{
		Referral: ReferralConfig{
			APIKeyHeader: "X-Api-Key",
			TimeoutSec:   30,
		},
		Job: JobConfig{
			Name:          "questionnaire-dispatch",
			Cron:          "*/15 * * * *",
			Timezone:      "UTC",
			MaxIterations: 10,
			LateAfterSec:  60,
		},
		Server: ServerConfig{
			Port: 8083,
		},
	}
}

// Load читает конфигурацию через Read и валидирует результат.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read читает TOML файл (если path не пустой и файл существует)
// и применяет переменные окружения. Валидация не выполняется.
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// только env + defaults
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv переопределяет значения из окружения.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DISPATCH_BASE_URL":    &c.Referral.BaseURL,
		"DISPATCH_CREATE_PATH": &c.Referral.CreatePath,
		"DISPATCH_SEND_PATH":   &c.Referral.SendPath,
		"DISPATCH_API_KEY":     &c.Referral.APIKey,
		"DISPATCH_CRON":        &c.Job.Cron,
		"DISPATCH_TIMEZONE":    &c.Job.Timezone,
		"DB_URL":               &c.Database.URL,
		"RABBITMQ_URL":         &c.RabbitMQ.URL,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"DISPATCH_MAX_ITERATIONS": &c.Job.MaxIterations,
		"DISPATCH_PORT":           &c.Server.Port,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
		}
		*dst = n
	}
	return nil
}

// Validate проверяет обязательные поля.
func (c *Config) Validate() error {
	var problems []string

	if c.Referral.BaseURL == "" {
		problems = append(problems, "referral.base_url is required")
	} else if u, err := url.Parse(c.Referral.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("referral.base_url %q is not an absolute URL", c.Referral.BaseURL))
	}
	if c.Referral.CreatePath == "" {
		problems = append(problems, "referral.create_path is required")
	}
	if c.Referral.SendPath == "" {
		problems = append(problems, "referral.send_path is required")
	}
	if c.Referral.APIKey == "" {
		problems = append(problems, "referral.api_key is required")
	}
	if c.Job.MaxIterations < 1 {
		problems = append(problems, "job.max_iterations must be >= 1")
	}
	if _, err := cron.ParseStandard(c.Job.Cron); err != nil {
		problems = append(problems, fmt.Sprintf("job.cron %q: %v", c.Job.Cron, err))
	}
	if _, err := time.LoadLocation(c.Job.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("job.timezone %q: %v", c.Job.Timezone, err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Timeout возвращает таймаут запросов к Referral API.
func (c *Config) Timeout() time.Duration {
	if c.Referral.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Referral.TimeoutSec) * time.Second
}

// LateAfter возвращает допустимое опоздание вызова относительно расписания.
func (c *Config) LateAfter() time.Duration {
	return time.Duration(c.Job.LateAfterSec) * time.Second
}

// Location возвращает часовой пояс расписания. Невалидный пояс — UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Job.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RunConfiguration возвращает параметры run.
func (c *Config) RunConfiguration() domain.RunConfiguration {
	return domain.RunConfiguration{
		BaseURL:           c.Referral.BaseURL,
		CreatePath:        c.Referral.CreatePath,
		SendPath:          c.Referral.SendPath,
		MaximumIterations: c.Job.MaxIterations,
		APIKey:            c.Referral.APIKey,
	}
}
