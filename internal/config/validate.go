package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRipper(); err != nil {
		return err
	}
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.RipDir) == "" {
		return errors.New("paths.rip_dir must be set")
	}
	if strings.TrimSpace(c.Paths.MusicDir) == "" {
		return errors.New("paths.music_dir must be set")
	}
	if c.Paths.RipDir == c.Paths.MusicDir {
		return errors.New("paths.rip_dir and paths.music_dir must differ")
	}
	return nil
}

func (c *Config) validateRipper() error {
	if strings.Contains(c.Ripper.Device, "/") {
		return fmt.Errorf("ripper.device must be a device short name such as sr0, got %q", c.Ripper.Device)
	}
	return nil
}

func (c *Config) validateTelegram() error {
	switch c.Telegram.ParseMode {
	case "Markdown", "MarkdownV2", "HTML":
		return nil
	default:
		return fmt.Errorf("telegram.parse_mode must be Markdown, MarkdownV2, or HTML, got %q", c.Telegram.ParseMode)
	}
}

func (c *Config) validateUpload() error {
	if !strings.Contains(c.Upload.UnitTemplate, "%s") {
		return fmt.Errorf("upload.unit_template must contain a %%s placeholder for the escaped path, got %q", c.Upload.UnitTemplate)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
