package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Assets   AssetsConfig   `toml:"assets"`
	Movement MovementConfig `toml:"movement"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type EngineConfig struct {
	Name            string        `toml:"name"`
	TickRate        time.Duration `toml:"tick_rate"`
	InitialCapacity int           `toml:"initial_capacity"` // entity storage pre-size
	StartTime       int64         // set at boot, not from config
}

type AssetsConfig struct {
	Root             string `toml:"root"`
	MapsDir          string `toml:"maps_dir"`
	ScriptsDir       string `toml:"scripts_dir"`
	TemplateFile     string `toml:"template_file"`
	ManifestFile     string `toml:"manifest_file"`
	TextureCacheSize int    `toml:"texture_cache_size"` // bytes
}

type MovementConfig struct {
	DefaultSpeed float64 `toml:"default_speed"` // pixels per second
}

// DatabaseConfig is optional: with an empty DSN the engine resolves object
// templates from the YAML table instead of Postgres.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Engine.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration, used when no file is given.
func Default() *Config {
	cfg := defaults()
	cfg.Engine.StartTime = time.Now().Unix()
	return cfg
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Name:            "pokerune",
			TickRate:        50 * time.Millisecond,
			InitialCapacity: 4096,
		},
		Assets: AssetsConfig{
			Root:             "assets",
			MapsDir:          "maps",
			ScriptsDir:       "scripts",
			TemplateFile:     "templates.yaml",
			ManifestFile:     "sprites.yaml",
			TextureCacheSize: 64 << 20,
		},
		Movement: MovementConfig{
			DefaultSpeed: 64,
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    4,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
