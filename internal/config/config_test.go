package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Ripper.Binary != "abcde" {
		t.Fatalf("default ripper binary = %q", cfg.Ripper.Binary)
	}
	if cfg.Telegram.RequestTimeout != 15 {
		t.Fatalf("default telegram timeout = %d", cfg.Telegram.RequestTimeout)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false for %s", path)
	}
	if cfg.Paths.MusicDir != defaultMusicDir {
		t.Fatalf("music dir = %q, want default", cfg.Paths.MusicDir)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		"[paths]",
		`rip_dir = "` + filepath.Join(dir, "ripping") + `"`,
		`music_dir = "` + filepath.Join(dir, "flac") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[ripper]",
		`device = "/dev/sr1"`,
		"[telegram]",
		`token = "bot-token"`,
		`chat_id = "42"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be detected")
	}
	if cfg.Ripper.Device != "sr1" {
		t.Fatalf("device = %q, want sr1 (normalized from /dev/sr1)", cfg.Ripper.Device)
	}
	if !cfg.TelegramConfigured() {
		t.Fatal("expected telegram to be configured")
	}
	if cfg.History.Path != filepath.Join(dir, "logs", "history.db") {
		t.Fatalf("history path = %q", cfg.History.Path)
	}
}

func TestTelegramEnvFallback(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("CHAT_ID", "env-chat")

	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.Token != "env-token" || cfg.Telegram.ChatID != "env-chat" {
		t.Fatalf("env fallback not applied: %+v", cfg.Telegram)
	}
}

func TestEnvFileSeedsCredentials(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "cdrip.env")
	if err := os.WriteFile(envPath, []byte("COPYPARTY_URL=https://files.example\nCOPYPARTY_PASSWORD=hunter2\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("COPYPARTY_URL", "")
	os.Unsetenv("COPYPARTY_URL")
	t.Setenv("COPYPARTY_PASSWORD", "")
	os.Unsetenv("COPYPARTY_PASSWORD")

	cfg := Default()
	cfg.EnvFile = envPath
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !cfg.UploadConfigured() {
		t.Fatalf("expected upload configured from env file, got %+v", cfg.Upload)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"device with slash", func(c *Config) { c.Ripper.Device = "dev/sr0" }},
		{"bad parse mode", func(c *Config) { c.Telegram.ParseMode = "Plain" }},
		{"unit template without placeholder", func(c *Config) { c.Upload.UnitTemplate = "upload.service" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "yaml" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"same rip and music dir", func(c *Config) { c.Paths.MusicDir = c.Paths.RipDir }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(SampleConfig()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}
