package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("JWT_ACCESS_SECRET", "0123456789abcdef0123")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Speech.Language != "ru" {
		t.Errorf("expected language ru, got %q", cfg.Speech.Language)
	}
	if cfg.Speech.Recognizer != "whisper" {
		t.Errorf("expected whisper recognizer, got %q", cfg.Speech.Recognizer)
	}
	if !cfg.LLM.RecomputeTotal {
		t.Error("expected RecomputeTotal to default to true")
	}
	if cfg.Pipeline.ExcerptLength != 150 {
		t.Errorf("expected excerpt length 150, got %d", cfg.Pipeline.ExcerptLength)
	}
	if cfg.Pipeline.TranscribeTimeout != 60*time.Second {
		t.Errorf("unexpected transcribe timeout %s", cfg.Pipeline.TranscribeTimeout)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("expected DEBUG log level, got %q", cfg.Log.Level)
	}
	if cfg.Speech.WhisperAPIKey != "test-key" {
		t.Errorf("expected whisper key to fall back to LLM key, got %q", cfg.Speech.WhisperAPIKey)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram must be disabled without BOT_TOKEN")
	}
}

func TestLoadGigaChatTokenAlias(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GIGA_CHAT_TOKEN", "giga")
	t.Setenv("JWT_ACCESS_SECRET", "0123456789abcdef0123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "giga" {
		t.Errorf("expected GIGA_CHAT_TOKEN to be used, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing llm key", env: map[string]string{"LLM_API_KEY": "", "GIGA_CHAT_TOKEN": ""}},
		{name: "check admin without id", env: map[string]string{"CHECK_ADMIN": "true"}},
		{name: "assemblyai without key", env: map[string]string{"RECOGNIZER": "assemblyai", "ASSEMBLYAI_API_KEY": ""}},
		{name: "unknown log level", env: map[string]string{"LOG_LEVEL": "TRACE"}},
		{name: "unknown recognizer", env: map[string]string{"RECOGNIZER": "vosk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadAdminOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CHECK_ADMIN", "true")
	t.Setenv("ADMIN_ID", "42")
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Access.CheckAdmin || cfg.Access.AdminID != 42 {
		t.Errorf("unexpected access config %+v", cfg.Access)
	}
	if !cfg.TelegramEnabled() {
		t.Error("expected telegram to be enabled")
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := cfg.GetDatabaseDSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
