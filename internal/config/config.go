// Package config loads server and bot settings from YAML, environment
// variables prefixed HEXLANDS_, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	envPrefix             = "HEXLANDS"
	defaultConfigRelPath  = "configs/server.yml"
	defaultShutdownPeriod = 5 * time.Second
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Game     GameConfig     `mapstructure:"game"`
	Bot      BotConfig      `mapstructure:"bot"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level      zapcore.Level `mapstructure:"level"`
	File       string        `mapstructure:"file"`
	MaxSize    int           `mapstructure:"max_size"`
	MaxBackups int           `mapstructure:"max_backups"`
	MaxAge     int           `mapstructure:"max_age"`
	Compress   bool          `mapstructure:"compress"`
	Dev        bool          `mapstructure:"dev"`
}

// GameConfig holds the defaults for newly created games.
type GameConfig struct {
	VictoryPoints int   `mapstructure:"victory_points"`
	DiscardLimit  int   `mapstructure:"discard_limit"`
	Bots          int   `mapstructure:"bots"`
	FairDice      bool  `mapstructure:"fair_dice"`
	Seed          int64 `mapstructure:"seed"`
}

// BotConfig configures the remote bot runner.
type BotConfig struct {
	Server     string        `mapstructure:"server"`
	Token      string        `mapstructure:"token"`
	Name       string        `mapstructure:"name"`
	GameID     string        `mapstructure:"game_id"`
	Seat       int           `mapstructure:"seat"`
	ThinkDelay time.Duration `mapstructure:"think_delay"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":30000")
	v.SetDefault("server.shutdown_timeout", defaultShutdownPeriod)
	v.SetDefault("database.path", "data/hexlands.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.dev", false)
	v.SetDefault("game.victory_points", 10)
	v.SetDefault("game.discard_limit", 7)
	v.SetDefault("game.bots", 3)
	v.SetDefault("game.fair_dice", false)
	v.SetDefault("game.seed", 0)
	v.SetDefault("bot.server", "ws://localhost:30000/ws")
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.name", "Bot")
	v.SetDefault("bot.game_id", "")
	v.SetDefault("bot.seat", -1)
	v.SetDefault("bot.think_delay", 250*time.Millisecond)
}

// Validate rejects settings no game or server can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is empty"))
	}
	if c.Game.VictoryPoints < 3 {
		errs = append(errs, fmt.Errorf("game.victory_points %d is below 3", c.Game.VictoryPoints))
	}
	if c.Game.DiscardLimit < 1 {
		errs = append(errs, fmt.Errorf("game.discard_limit %d is below 1", c.Game.DiscardLimit))
	}
	if c.Game.Bots < 0 || c.Game.Bots > 3 {
		errs = append(errs, fmt.Errorf("game.bots %d is outside 0..3", c.Game.Bots))
	}
	return errors.Join(errs...)
}

// Loader reads the configuration and, when backed by a file, reloads it on
// change.
type Loader struct {
	v    *viper.Viper
	path string

	mu  sync.Mutex
	cfg *Config
}

// NewLoader reads configuration from path. An empty path searches upward from
// the working directory for configs/server.yml and falls back to defaults and
// environment when none exists.
func NewLoader(path string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = findConfigUpward(wd)
		}
	} else if !fileExist(path) {
		return nil, fmt.Errorf("config file not exist, configPath=%v", path)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	l := &Loader{v: v, path: path}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	return l, nil
}

// Load is NewLoader followed by Config.
func Load(path string) (*Config, error) {
	l, err := NewLoader(path)
	if err != nil {
		return nil, err
	}
	return l.Config(), nil
}

// Path is the file the configuration came from, or empty.
func (l *Loader) Path() string {
	return l.path
}

// Config returns the current configuration.
func (l *Loader) Config() *Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	err := l.v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch calls fn with every valid reload of the config file. Invalid edits
// are reported through fn and leave the current configuration in place.
// Without a file there is nothing to watch.
func (l *Loader) Watch(fn func(*Config, error)) {
	if l.path == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err == nil {
			l.mu.Lock()
			l.cfg = cfg
			l.mu.Unlock()
		}
		fn(cfg, err)
	})
	l.v.WatchConfig()
}

func findConfigUpward(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
