package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hookvoice/hook-service/internal/apperr"
)

const validSettingsJSON = `{
  "api_keys": {"google_gemini": "gemini-key", "fpt_ai": "fpt-key"},
  "gemini_settings": {"prompt": "Write a short hook for this video."},
  "tts_settings": {"voice": "banmai", "speed": 1.0, "max_retries": 3, "retry_delay": 1}
}`

func writeSettings(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	return path
}

func TestLoadSettings_JSON(t *testing.T) {
	path := writeSettings(t, "settings.json", validSettingsJSON)

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() failed: %v", err)
	}

	if s.APIKeys.GoogleGemini != "gemini-key" {
		t.Errorf("Expected gemini key 'gemini-key', got '%s'", s.APIKeys.GoogleGemini)
	}
	if s.APIKeys.FPTAI != "fpt-key" {
		t.Errorf("Expected fpt key 'fpt-key', got '%s'", s.APIKeys.FPTAI)
	}
	if s.Gemini.Prompt != "Write a short hook for this video." {
		t.Errorf("Unexpected prompt '%s'", s.Gemini.Prompt)
	}
	if s.TTS.Voice != "banmai" {
		t.Errorf("Expected voice 'banmai', got '%s'", s.TTS.Voice)
	}
	if s.TTS.Speed != "1.0" {
		t.Errorf("Expected speed '1.0', got '%s'", s.TTS.Speed)
	}
	if s.TTS.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", s.TTS.MaxRetries)
	}
	if s.TTS.RetryDelay != time.Second {
		t.Errorf("Expected retry delay 1s, got %v", s.TTS.RetryDelay)
	}
}

func TestLoadSettings_TOML(t *testing.T) {
	path := writeSettings(t, "settings.toml", `
[api_keys]
google_gemini = "gemini-key"
fpt_ai = "fpt-key"

[gemini_settings]
prompt = "Hook me"

[tts_settings]
voice = "leminh"
speed = "-1"
max_retries = 5
retry_delay = 0.5
`)

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() failed: %v", err)
	}

	if s.TTS.Voice != "leminh" {
		t.Errorf("Expected voice 'leminh', got '%s'", s.TTS.Voice)
	}
	if s.TTS.Speed != "-1" {
		t.Errorf("Expected speed '-1', got '%s'", s.TTS.Speed)
	}
	if s.TTS.MaxRetries != 5 {
		t.Errorf("Expected max retries 5, got %d", s.TTS.MaxRetries)
	}
	if s.TTS.RetryDelay != 500*time.Millisecond {
		t.Errorf("Expected retry delay 500ms, got %v", s.TTS.RetryDelay)
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
	if !apperr.IsKind(err, apperr.KindConfiguration) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
}

func TestParseSettings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{"malformed", `{"api_keys": `, "malformed settings document"},
		{"not an object", `[1, 2, 3]`, "malformed settings document"},
		{"empty object", `{}`, "api_keys.google_gemini"},
		{"missing fpt key", `{
			"api_keys": {"google_gemini": "k"},
			"gemini_settings": {"prompt": "p"},
			"tts_settings": {"voice": "v", "speed": 0, "max_retries": 1, "retry_delay": 1}}`, "api_keys.fpt_ai"},
		{"blank prompt", `{
			"api_keys": {"google_gemini": "k", "fpt_ai": "f"},
			"gemini_settings": {"prompt": "   "},
			"tts_settings": {"voice": "v", "speed": 0, "max_retries": 1, "retry_delay": 1}}`, "gemini_settings.prompt"},
		{"null speed", `{
			"api_keys": {"google_gemini": "k", "fpt_ai": "f"},
			"gemini_settings": {"prompt": "p"},
			"tts_settings": {"voice": "v", "speed": null, "max_retries": 1, "retry_delay": 1}}`, "tts_settings.speed"},
		{"fractional retries", `{
			"api_keys": {"google_gemini": "k", "fpt_ai": "f"},
			"gemini_settings": {"prompt": "p"},
			"tts_settings": {"voice": "v", "speed": 0, "max_retries": 2.5, "retry_delay": 1}}`, "max_retries must be an integer"},
		{"negative retries", `{
			"api_keys": {"google_gemini": "k", "fpt_ai": "f"},
			"gemini_settings": {"prompt": "p"},
			"tts_settings": {"voice": "v", "speed": 0, "max_retries": -1, "retry_delay": 1}}`, "must not be negative"},
		{"negative delay", `{
			"api_keys": {"google_gemini": "k", "fpt_ai": "f"},
			"gemini_settings": {"prompt": "p"},
			"tts_settings": {"voice": "v", "speed": 0, "max_retries": 1, "retry_delay": -2}}`, "non-negative"},
		{"boolean speed", `{
			"api_keys": {"google_gemini": "k", "fpt_ai": "f"},
			"gemini_settings": {"prompt": "p"},
			"tts_settings": {"voice": "v", "speed": true, "max_retries": 1, "retry_delay": 1}}`, "malformed settings document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings([]byte(tt.doc))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !apperr.IsKind(err, apperr.KindConfiguration) {
				t.Errorf("Expected ConfigurationError, got %s", apperr.KindOf(err))
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected message containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestParseSettings_ZeroRetriesAllowed(t *testing.T) {
	s, err := ParseSettings([]byte(`{
		"api_keys": {"google_gemini": "k", "fpt_ai": "f"},
		"gemini_settings": {"prompt": "p"},
		"tts_settings": {"voice": "v", "speed": "", "max_retries": 0, "retry_delay": 0}}`))
	if err != nil {
		t.Fatalf("ParseSettings() failed: %v", err)
	}
	if s.TTS.MaxRetries != 0 || s.TTS.RetryDelay != 0 {
		t.Errorf("Expected zero retries and delay, got %d and %v", s.TTS.MaxRetries, s.TTS.RetryDelay)
	}
	if s.TTS.Speed != "" {
		t.Errorf("Expected empty speed, got '%s'", s.TTS.Speed)
	}
}

func TestLoadSettings_FreshEachCall(t *testing.T) {
	path := writeSettings(t, "settings.json", validSettingsJSON)

	first, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() failed: %v", err)
	}

	updated := strings.Replace(validSettingsJSON, "fpt-key", "rotated-key", 1)
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("failed to rewrite settings: %v", err)
	}

	second, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() failed: %v", err)
	}

	if first.APIKeys.FPTAI != "fpt-key" || second.APIKeys.FPTAI != "rotated-key" {
		t.Errorf("Expected rotated credentials to be picked up, got %q then %q",
			first.APIKeys.FPTAI, second.APIKeys.FPTAI)
	}
}
