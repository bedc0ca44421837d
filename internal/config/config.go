// Package config loads the notes server configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/taigrr/notes-mcp/internal/types"
	"github.com/taigrr/notes-mcp/internal/watcher"
	"gopkg.in/yaml.v3"
)

const appName = "notes-mcp"

// Environment variables, applied over the config file.
const (
	EnvConfig    = "NOTES_CONFIG"
	EnvDir       = "NOTES_DIR"
	EnvSuffix    = "NOTES_SUFFIX"
	EnvLogLevel  = "NOTES_LOG_LEVEL"
	EnvLogFormat = "NOTES_LOG_FORMAT"
	EnvLogFile   = "NOTES_LOG_FILE"
	EnvWatch     = "NOTES_WATCH"
)

// Config holds the application configuration.
type Config struct {
	DataDir         string         `yaml:"data_dir"`
	Suffix          string         `yaml:"suffix"`
	IgnoredPatterns []string       `yaml:"ignored_patterns"`
	Log             LogConfig      `yaml:"log"`
	Watch           bool           `yaml:"watch"`
	Watcher         watcher.Config `yaml:"watcher"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// CLIFlags holds parsed CLI flags. Empty values and nil pointers leave the
// configured value untouched.
type CLIFlags struct {
	ConfigFile string
	EnvFile    string
	DataDir    string
	Suffix     string
	LogLevel   string
	LogFormat  string
	LogFile    string
	Watch      *bool
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataDir: dataDir,
		Suffix:  types.DefaultSuffix,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Watcher: watcher.DefaultConfig(),
	}, nil
}

// Load loads configuration with priority: CLI flags > env vars (including a
// .env file) > config file > default.
func Load(flags CLIFlags) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	configPath := flags.ConfigFile
	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}
	explicit := configPath != ""
	if !explicit {
		configPath, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}
	if err := loadConfigFile(configPath, cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyFlags(cfg, flags)

	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the store cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data directory must not be empty")
	}
	if c.Suffix == "" || strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("invalid note suffix %q", c.Suffix)
	}
	if c.Watcher.DebounceWindow < 0 {
		return fmt.Errorf("invalid debounce window %s", c.Watcher.DebounceWindow)
	}
	return nil
}

// PathFilterConfig returns the filename filter settings.
func (c *Config) PathFilterConfig() *types.PathFilterConfig {
	return &types.PathFilterConfig{
		Suffix:          c.Suffix,
		IgnoredPatterns: c.IgnoredPatterns,
	}
}

// DefaultDataDir returns the application-data directory for notes.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// ConfigPath returns the path to the configuration file.
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName, "config.yaml"), nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvSuffix); v != "" {
		cfg.Suffix = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv(EnvWatch); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWatch, err)
		}
		cfg.Watch = watch
	}
	return nil
}

func applyFlags(cfg *Config, flags CLIFlags) {
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}
	if flags.Suffix != "" {
		cfg.Suffix = flags.Suffix
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.LogFile != "" {
		cfg.Log.File = flags.LogFile
	}
	if flags.Watch != nil {
		cfg.Watch = *flags.Watch
	}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
