package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehmann314159/rango/internal/logging"
)

const (
	DriverSQL  = "sql"
	DriverGORM = "gorm"
)

type Config struct {
	Addr     string         `yaml:"addr"`
	DataDir  string         `yaml:"data_dir"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Log      logging.Config `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

type DatabaseConfig struct {
	// Driver is "sql" (database/sql over SQLite in DataDir) or "gorm".
	Driver string `yaml:"driver"`
	// URL is only read by the gorm driver: postgres://... or sqlite://path.
	URL string `yaml:"url"`
}

type SearchConfig struct {
	Endpoint string        `yaml:"endpoint"`
	KeyFile  string        `yaml:"key_file"`
	Key      string        `yaml:"-"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
}

// LoadConfig reads configPath, falling back to defaults when the file does
// not exist, then applies environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()

	// Resolve relative paths against the config file location
	base := filepath.Dir(configPath)
	if !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(base, cfg.DataDir)
	}
	if cfg.Search.KeyFile != "" && !filepath.IsAbs(cfg.Search.KeyFile) {
		cfg.Search.KeyFile = filepath.Join(base, cfg.Search.KeyFile)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("RANGO_BING_KEY"); v != "" {
		c.Search.Key = v
	}
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQL
	}
	if c.Search.KeyFile == "" {
		c.Search.KeyFile = "bing.key"
	}
	if c.Search.Timeout == 0 {
		c.Search.Timeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	switch c.Database.Driver {
	case DriverSQL:
	case DriverGORM:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the gorm driver")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Search.Timeout < 0 {
		return fmt.Errorf("search.timeout must not be negative")
	}
	return nil
}
