package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Empty path",
			input:    "",
			expected: "",
		},
		{
			name:     "Absolute path",
			input:    "/absolute/path",
			expected: "/absolute/path",
		},
		{
			name:     "Relative path",
			input:    "relative/path",
			expected: "relative/path",
		},
		{
			name:     "Home directory only",
			input:    "~",
			expected: home,
		},
		{
			name:     "Home directory with forward slash",
			input:    "~/downloads",
			expected: filepath.Join(home, "downloads"),
		},
		{
			name:     "Home directory with backslash (simulated)",
			input:    `~\downloads`,
			expected: filepath.Join(home, "downloads"),
		},
		{
			name:     "Invalid tilde use (middle)",
			input:    "/path/~/test",
			expected: "/path/~/test",
		},
		{
			name:     "Invalid tilde use (no separator)",
			input:    "~user",
			expected: "~user", // ~user expansion is not supported
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.expected {
				t.Errorf("expandPath(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.MaxBytes != DefaultMaxBytes {
		t.Errorf("MaxBytes = %d; want %d", cfg.MaxBytes, DefaultMaxBytes)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q; want en", cfg.Language)
	}
	if cfg.Server.Port != 8080 || cfg.Server.MaxConcurrent != 4 {
		t.Errorf("Server defaults = %+v", cfg.Server)
	}
	if cfg.OutputDir == "" || cfg.StorePath == "" {
		t.Error("paths left empty")
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{MaxBytes: 50_000_000, Language: "zh"}
	applyDefaults(cfg)

	if cfg.MaxBytes != 50_000_000 {
		t.Errorf("MaxBytes overwritten: %d", cfg.MaxBytes)
	}
	if cfg.Language != "zh" {
		t.Errorf("Language overwritten: %q", cfg.Language)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:token")
	t.Setenv("TELEFETCH_MAX_BYTES", "42000000")
	t.Setenv("TELEFETCH_NO_FFMPEG", "1")
	t.Setenv("IG_SESSIONID", "sess")

	cfg := DefaultConfig()
	applyEnv(cfg)

	if cfg.Telegram.Token != "123:token" {
		t.Errorf("Token = %q", cfg.Telegram.Token)
	}
	if cfg.MaxBytes != 42_000_000 {
		t.Errorf("MaxBytes = %d", cfg.MaxBytes)
	}
	if !cfg.NoFFmpeg {
		t.Error("NoFFmpeg not set")
	}
	if cfg.Instagram.SessionID != "sess" {
		t.Errorf("SessionID = %q", cfg.Instagram.SessionID)
	}
}

func TestApplyEnvIgnoresBadNumbers(t *testing.T) {
	t.Setenv("TELEFETCH_MAX_BYTES", "many")

	cfg := DefaultConfig()
	applyEnv(cfg)
	if cfg.MaxBytes != DefaultMaxBytes {
		t.Errorf("MaxBytes = %d; want default kept", cfg.MaxBytes)
	}
}
