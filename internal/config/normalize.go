package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

func (c *Config) normalize() error {
	if err := c.loadEnvFile(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRipper()
	c.normalizeTelegram()
	c.normalizeUpload()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

// loadEnvFile merges an optional env file into the process environment
// without overriding variables that are already set.
func (c *Config) loadEnvFile() error {
	path := strings.TrimSpace(c.EnvFile)
	if path == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("env_file: %w", err)
	}
	c.EnvFile = expanded
	if err := godotenv.Load(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", expanded, err)
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.RipDir, err = expandPath(c.Paths.RipDir); err != nil {
		return fmt.Errorf("paths.rip_dir: %w", err)
	}
	if c.Paths.MusicDir, err = expandPath(c.Paths.MusicDir); err != nil {
		return fmt.Errorf("paths.music_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRipper() {
	c.Ripper.Binary = strings.TrimSpace(c.Ripper.Binary)
	if c.Ripper.Binary == "" {
		c.Ripper.Binary = defaultRipperBinary
	}
	c.Ripper.Device = strings.TrimPrefix(strings.TrimSpace(c.Ripper.Device), "/dev/")
	if c.Ripper.Device == "" {
		c.Ripper.Device = defaultDevice
	}
	if c.Ripper.RipTimeout < 0 {
		c.Ripper.RipTimeout = 0
	}
}

// normalizeTelegram honours the environment variable names used by the
// original udev hook script so existing deployments keep working.
func (c *Config) normalizeTelegram() {
	if c.Telegram.Token == "" {
		if value, ok := os.LookupEnv("TELEGRAM_TOKEN"); ok {
			c.Telegram.Token = value
		}
	}
	if c.Telegram.ChatID == "" {
		if value, ok := os.LookupEnv("CHAT_ID"); ok {
			c.Telegram.ChatID = value
		}
	}
	if c.Telegram.RequestTimeout <= 0 {
		c.Telegram.RequestTimeout = defaultTelegramRequestTimeout
	}
	c.Telegram.ParseMode = strings.TrimSpace(c.Telegram.ParseMode)
	if c.Telegram.ParseMode == "" {
		c.Telegram.ParseMode = defaultTelegramParseMode
	}
}

func (c *Config) normalizeUpload() {
	if c.Upload.URL == "" {
		if value, ok := os.LookupEnv("COPYPARTY_URL"); ok {
			c.Upload.URL = value
		}
	}
	if c.Upload.Password == "" {
		if value, ok := os.LookupEnv("COPYPARTY_PASSWORD"); ok {
			c.Upload.Password = value
		}
	}
	c.Upload.UnitTemplate = strings.TrimSpace(c.Upload.UnitTemplate)
	if c.Upload.UnitTemplate == "" {
		c.Upload.UnitTemplate = defaultUploadUnitTemplate
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.LogDir, "history.db")
		return nil
	}
	expanded, err := expandPath(c.History.Path)
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
