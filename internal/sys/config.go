package sys

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// HomeEnv overrides the data directory (default ~/.vibe-coding-setup).
const HomeEnv = "VIBE_SETUP_HOME"

const dataDirName = ".vibe-coding-setup"

// Interactive modes for ui.interactive.
const (
	InteractiveAuto   = "auto"
	InteractiveAlways = "always"
	InteractiveNever  = "never"
)

// Config holds all configuration for vibe-coding-setup
type Config struct {
	Author struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"author"`

	Project struct {
		GitInit bool `mapstructure:"git_init"`
	} `mapstructure:"project"`

	Templates struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"templates"`

	UI struct {
		Interactive string `mapstructure:"interactive"` // auto|always|never
	} `mapstructure:"ui"`

	History struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"history"`

	Update struct {
		Repo string `mapstructure:"repo"`
	} `mapstructure:"update"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	DataDir string `mapstructure:"-"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"author.name",
	"project.git_init",
	"templates.dir",
	"ui.interactive",
	"history.enabled",
	"update.repo",
	"log.level",
}

// ConfigManager handles loading and saving configuration. Reads go through
// v, which layers VIBE_SETUP_* environment overrides on top of the file.
// Writes go through file, which only knows defaults and config.yaml, so
// overrides never end up persisted.
type ConfigManager struct {
	v       *viper.Viper
	file    *viper.Viper
	dataDir string
}

// DataDir resolves the directory holding config, history and crash logs.
func DataDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home dir: %w", err)
	}
	return filepath.Join(home, dataDirName), nil
}

// NewConfigManager initializes the configuration system in the default data directory.
func NewConfigManager() (*ConfigManager, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return NewConfigManagerAt(dataDir)
}

// NewConfigManagerAt initializes the configuration system rooted at dataDir,
// creating config.yaml with defaults on first use.
func NewConfigManagerAt(dataDir string) (*ConfigManager, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	file := newFileViper(dataDir)
	configPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := file.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("writing initial config: %w", err)
		}
	}
	if err := file.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v := newFileViper(dataDir)
	v.SetEnvPrefix("VIBE_SETUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return &ConfigManager{v: v, file: file, dataDir: dataDir}, nil
}

func newFileViper(dataDir string) *viper.Viper {
	v := viper.New()

	v.SetDefault("author.name", "")
	v.SetDefault("project.git_init", false)
	v.SetDefault("templates.dir", filepath.Join(dataDir, "templates"))
	v.SetDefault("ui.interactive", InteractiveAuto)
	v.SetDefault("history.enabled", true)
	v.SetDefault("update.repo", "contactstevenwarren/vibe-coding-setup")
	v.SetDefault("log.level", "warn")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)
	return v
}

// Load returns the current configuration, environment overrides included.
func (cm *ConfigManager) Load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.DataDir = cm.dataDir
	return &cfg, nil
}

// Get returns the string form of a single key.
func (cm *ConfigManager) Get(key string) (string, error) {
	if !isKnownKey(key) {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	return cm.v.GetString(key), nil
}

// Set validates value and writes only key to config.yaml.
func (cm *ConfigManager) Set(key, value string) error {
	var stored any = value

	switch key {
	case "author.name", "templates.dir":
	case "project.git_init", "history.enabled":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		stored = b
	case "ui.interactive":
		switch value {
		case InteractiveAuto, InteractiveAlways, InteractiveNever:
		default:
			return fmt.Errorf("invalid value for %s: %s (want auto, always or never)", key, value)
		}
	case "update.repo":
		if strings.Count(value, "/") != 1 {
			return fmt.Errorf("invalid value for %s: %s (want owner/name)", key, value)
		}
	case "log.level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("invalid value for %s: %s", key, value)
		}
		stored = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	cm.file.Set(key, stored)
	if err := cm.file.WriteConfig(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := cm.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// GetDataPath returns a path inside the data directory
func (cm *ConfigManager) GetDataPath(subpath string) string {
	return filepath.Join(cm.dataDir, subpath)
}

func isKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value for %s: %s", key, value)
	}
	return b, nil
}
