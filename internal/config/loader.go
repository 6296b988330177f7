package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Переменные окружения, перекрывающие значения из YAML
const (
	EnvMSSQLDSN   = "COURSE_SCRAPER_MSSQL_DSN"
	EnvChromePath = "COURSE_SCRAPER_CHROME_PATH"
)

func LoadConfig(filePath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			// Логируем ошибку, но не возвращаем — иначе перезапишем основную ошибку
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvMSSQLDSN); v != "" {
		c.Storage.MSSQLDSN = v
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		c.Rod.ChromePath = v
	}
}

// IsValidTargetURL проверяет, что строка — абсолютный http(s) URL с хостом
func IsValidTargetURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// OverrideTarget заменяет цели из конфига одной целью из CLI.
// Невалидный URL не прерывает запуск: берётся DefaultTargetURL, а вызывающему
// возвращается false, чтобы он мог сообщить пользователю.
func (c *Config) OverrideTarget(rawURL string, count int) bool {
	valid := true
	target := TargetConfig{URL: rawURL, Count: count}

	if rawURL == "" {
		if len(c.Targets) > 0 {
			target.URL = c.Targets[0].URL
		} else {
			target.URL = DefaultTargetURL
		}
	} else if !IsValidTargetURL(rawURL) {
		valid = false
		target.URL = DefaultTargetURL
	}

	if count <= 0 {
		target.Count = 0
		if len(c.Targets) > 0 {
			target.Count = c.Targets[0].Count
		}
	}

	c.Targets = []TargetConfig{target}
	return valid
}
