package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Pool struct {
		Workers       uint   `yaml:"workers" env:"THREADPOOL_WORKERS"`
		Name          string `yaml:"name" env:"THREADPOOL_NAME"`
		RecoverPanics bool   `yaml:"recover_panics" env:"THREADPOOL_RECOVER_PANICS"`
	} `yaml:"pool"`

	Log struct {
		Level  string `yaml:"level" env:"THREADPOOL_LOG_LEVEL"`
		Format string `yaml:"format" env:"THREADPOOL_LOG_FORMAT"`
	} `yaml:"log"`

	MetricsAddr string `yaml:"metrics_addr" env:"THREADPOOL_METRICS_ADDR"`

	Jobs []Job `yaml:"jobs"`
}

// Job is one shell command to run on the pool.
type Job struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Dir     string   `yaml:"dir"`
}

func defaults() Config {
	var cfg Config
	cfg.Pool.Workers = 4
	cfg.Pool.Name = "threadpool"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads the YAML file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read yaml")
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse yaml")
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Pool.Workers == 0 {
		return errors.New("pool.workers must be greater than zero")
	}
	for i, j := range c.Jobs {
		if strings.TrimSpace(j.Command) == "" {
			return errors.Errorf("jobs[%d]: command is required", i)
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format: unsupported value %q", c.Log.Format)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level ("debug", "info", "warn", "error").
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.Wrap(err, "log.level")
	}
	return lvl, nil
}
