package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	RipDir   string `toml:"rip_dir"`
	MusicDir string `toml:"music_dir"`
	LogDir   string `toml:"log_dir"`
}

// Ripper contains configuration for the external CD ripping tool.
type Ripper struct {
	Binary     string `toml:"binary"`
	Device     string `toml:"device"`
	RipTimeout int    `toml:"rip_timeout"`
}

// Telegram contains configuration for Telegram notifications.
type Telegram struct {
	Token          string `toml:"token"`
	ChatID         string `toml:"chat_id"`
	RequestTimeout int    `toml:"request_timeout"`
	ParseMode      string `toml:"parse_mode"`
}

// Upload contains configuration for the copyparty upload trigger.
type Upload struct {
	URL          string `toml:"url"`
	Password     string `toml:"password"`
	UnitTemplate string `toml:"unit_template"`
}

// History contains configuration for the rip history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cdrip.
//
// Configuration sections by subsystem:
//   - Paths: scratch, destination, and log directories
//   - Ripper: abcde binary, default drive, and rip timeout
//   - Telegram: bot credentials and request bounds for notifications
//   - Upload: copyparty credentials and the systemd unit template
//   - History: sqlite rip-session log
//   - Logging: log format and level
type Config struct {
	EnvFile  string   `toml:"env_file"`
	Paths    Paths    `toml:"paths"`
	Ripper   Ripper   `toml:"ripper"`
	Telegram Telegram `toml:"telegram"`
	Upload   Upload   `toml:"upload"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cdrip/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved config path, the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cdrip.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for rip operation.
// MusicDir is created on a best-effort basis so a rip can start while
// external storage is temporarily unavailable; relocation creates it again.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.RipDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.MusicDir) != "" {
		_ = os.MkdirAll(c.Paths.MusicDir, 0o755)
	}
	return nil
}

// TelegramConfigured reports whether both bot credentials are present.
func (c *Config) TelegramConfigured() bool {
	return strings.TrimSpace(c.Telegram.Token) != "" && strings.TrimSpace(c.Telegram.ChatID) != ""
}

// UploadConfigured reports whether the copyparty upload trigger is usable.
func (c *Config) UploadConfigured() bool {
	return strings.TrimSpace(c.Upload.URL) != "" && strings.TrimSpace(c.Upload.Password) != ""
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to the given path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading tilde and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
