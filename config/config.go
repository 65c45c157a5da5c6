// Package config loads service settings from config.yaml, with .env and
// environment overrides applied on top.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Host           string        `yaml:"host"`
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Model struct {
		Path  string `yaml:"path"`
		Watch bool   `yaml:"watch"`
	} `yaml:"model"`
	// Schema is a preset name (reduced-4, sensors-5, full-12) or a path to a
	// YAML schema file.
	Schema string `yaml:"schema"`
	Cache  struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Audit struct {
		Path string `yaml:"path"`
	} `yaml:"audit"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

// Default returns the settings used when no config file is present.
func Default() *Config {
	c := &Config{}
	c.Http.Host = "0.0.0.0"
	c.Http.Port = 8000
	c.Http.Timeout = 30 * time.Second
	c.Http.MaxBodyBytes = 1 << 20
	c.Http.AllowedOrigins = []string{"*"}
	c.Model.Path = "best_aqi_model.json"
	c.Schema = "sensors-5"
	c.Log.Level = "info"
	c.Log.MaxSizeMB = 100
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	return c
}

// Load reads path over the defaults. A missing file is not an error. The
// .env file in the working directory, if any, is loaded first so that its
// values take part in the environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	config := Default()
	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("AQI_HOST"); v != "" {
		c.Http.Host = v
	}
	if v := os.Getenv("AQI_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AQI_PORT: %w", err)
		}
		c.Http.Port = port
	}
	if v := os.Getenv("AQI_MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("AQI_SCHEMA"); v != "" {
		c.Schema = v
	}
	if v := os.Getenv("AQI_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Http.MaxBodyBytes <= 0 {
		return errors.New("http.max_body_bytes must be positive")
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	if c.Schema == "" {
		return errors.New("schema is required")
	}
	if c.Cache.Size < 0 {
		return errors.New("cache.size must not be negative")
	}
	return nil
}

// Addr is the listen address for the public API.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Http.Host, strconv.Itoa(c.Http.Port))
}
