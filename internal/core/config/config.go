package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "telefetch"

	// DefaultMaxBytes is the payload-size ceiling (~1.9 GB), chosen to
	// stay under the chat transport's upload limit with headroom.
	DefaultMaxBytes int64 = 1_900_000_000
)

// ConfigDir returns the standard config directory for telefetch.
// Windows: %APPDATA%\telefetch\
// macOS/Linux: ~/.config/telefetch/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/telefetch/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// Language for user-facing messages (e.g., "en", "zh")
	Language string `yaml:"language,omitempty"`

	// Output directory for the fetch and serve modes
	OutputDir string `yaml:"output_dir,omitempty"`

	// MaxBytes is the payload-size ceiling; files over it are never
	// delivered
	MaxBytes int64 `yaml:"max_bytes,omitempty"`

	// NoFFmpeg forces single-file ladders even when ffmpeg is present
	NoFFmpeg bool `yaml:"no_ffmpeg,omitempty"`

	// StorePath is where per-chat quality preferences are persisted
	StorePath string `yaml:"store_path,omitempty"`

	// Telegram bot settings
	Telegram TelegramConfig `yaml:"telegram,omitempty"`

	// Instagram session forwarding
	Instagram InstagramConfig `yaml:"instagram,omitempty"`

	// Server configuration for `telefetch serve`
	Server ServerConfig `yaml:"server,omitempty"`
}

// TelegramConfig holds bot transport settings
type TelegramConfig struct {
	// Token is the Bot API token; the BOT_TOKEN env var overrides it
	Token string `yaml:"token,omitempty"`
}

// InstagramConfig holds the optional Instagram session cookie
type InstagramConfig struct {
	// SessionID is the sessionid cookie value from a logged-in browser
	SessionID string `yaml:"session_id,omitempty"`
}

// ServerConfig holds HTTP server settings for `telefetch serve`
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8080)
	Port int `yaml:"port,omitempty"`

	// MaxConcurrent is the max number of concurrent acquisitions (default: 4)
	MaxConcurrent int `yaml:"max_concurrent,omitempty"`

	// APIKey for authentication (optional, if set all requests must include X-API-Key header)
	APIKey string `yaml:"api_key,omitempty"`
}

// DefaultStorePath returns where chat preferences live by default.
func DefaultStorePath() string {
	dir, err := ConfigDir()
	if err != nil {
		return "quality_store.json"
	}
	return filepath.Join(dir, "quality_store.json")
}

// DefaultDownloadDir returns the default output directory for the CLI
// and server modes.
func DefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./downloads"
	}
	switch runtime.GOOS {
	case "darwin", "windows":
		return filepath.Join(home, "Downloads", AppDirName)
	default:
		return filepath.Join(home, "downloads")
	}
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Language:  "en",
		OutputDir: DefaultDownloadDir(),
		MaxBytes:  DefaultMaxBytes,
		StorePath: DefaultStorePath(),
		Server: ServerConfig{
			Port:          8080,
			MaxConcurrent: 4,
		},
	}
}

// Exists checks if config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from ~/.config/telefetch/config.yml
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.OutputDir = expandPath(cfg.OutputDir)
	cfg.StorePath = expandPath(cfg.StorePath)

	return cfg, nil
}

// LoadOrDefault loads config if it exists, otherwise returns defaults.
// Environment overrides apply either way.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg
}

// applyDefaults fills fields a hand-edited config may have left empty.
func applyDefaults(cfg *Config) {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultDownloadDir()
	}
	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStorePath()
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxConcurrent == 0 {
		cfg.Server.MaxConcurrent = 4
	}
}

// applyEnv layers environment variables over the file config, so
// container deployments need no config file at all.
func applyEnv(cfg *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("IG_SESSIONID"); v != "" {
		cfg.Instagram.SessionID = v
	}
	if v := os.Getenv("TELEFETCH_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBytes = n
		}
	}
	if v := os.Getenv("TELEFETCH_NO_FFMPEG"); v == "1" || strings.EqualFold(v, "true") {
		cfg.NoFFmpeg = true
	}
	if v := os.Getenv("TELEFETCH_STORE_PATH"); v != "" {
		cfg.StorePath = expandPath(v)
	}
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// It handles both forward and backward slashes to ensure cross-platform
// compatibility for configuration files.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes the config to ~/.config/telefetch/config.yml
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# telefetch configuration file\n# Run 'telefetch init' to regenerate with defaults\n\n"
	content := header + string(data)

	return os.WriteFile(configPath, []byte(content), 0600)
}

// SavePath returns the path where config will be saved
func SavePath() string {
	if path, err := ConfigPath(); err == nil {
		return path
	}
	return ConfigFileName
}

// Init creates a new config.yml with default values
func Init() error {
	if Exists() {
		path, _ := ConfigPath()
		return fmt.Errorf("%s already exists", path)
	}
	return Save(DefaultConfig())
}
