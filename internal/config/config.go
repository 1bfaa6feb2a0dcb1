package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr = ":8080"
	defaultMetaDSN    = "memory://"
	defaultChunkSize  = 1 << 20
	defaultLogLevel   = "info"
)

type Config struct {
	ListenAddr string   `yaml:"listen_addr" json:"listen_addr"`
	MetaDSN    string   `yaml:"meta_dsn" json:"meta_dsn"`
	Storages   []string `yaml:"storages" json:"storages"`
	ChunkSize  int64    `yaml:"chunk_size" json:"chunk_size"`
	LogLevel   string   `yaml:"log_level" json:"log_level"`
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
// Отсутствующий файл не ошибка: остаются значения по умолчанию и ENV.
func Load() (*Config, error) {
	path := getenv("CONFIG_PATH", "./config.yaml")

	c := Config{
		ListenAddr: defaultListenAddr,
		MetaDSN:    defaultMetaDSN,
		ChunkSize:  defaultChunkSize,
		LogLevel:   defaultLogLevel,
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	// ENV override
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("META_DSN"); v != "" {
		c.MetaDSN = v
	}
	if v := os.Getenv("STORAGES"); v != "" {
		c.Storages = splitComma(v)
	}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CHUNK_SIZE: %w", err)
		}
		c.ChunkSize = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate проверяет согласованность значений.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr is empty")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
