package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/hookvoice/hook-service/internal/apperr"
)

// Settings is the per-request view of the settings document.
// It is loaded fresh for every request and never cached or mutated.
type Settings struct {
	APIKeys APIKeys
	Gemini  GeminiSettings
	TTS     TTSSettings
}

type APIKeys struct {
	GoogleGemini string
	FPTAI        string
}

type GeminiSettings struct {
	Prompt string
}

// TTSSettings holds the FPT.AI synthesis and polling tunables
type TTSSettings struct {
	Voice      string
	Speed      string // forwarded verbatim as the "speed" header
	MaxRetries int
	RetryDelay time.Duration
}

// settingsDocument mirrors the on-disk layout. Pointers distinguish an
// absent key from a zero value.
type settingsDocument struct {
	APIKeys *struct {
		GoogleGemini *string `json:"google_gemini"`
		FPTAI        *string `json:"fpt_ai"`
	} `json:"api_keys"`
	GeminiSettings *struct {
		Prompt *string `json:"prompt"`
	} `json:"gemini_settings"`
	TTSSettings *struct {
		Voice      *string      `json:"voice"`
		Speed      *flexText    `json:"speed"`
		MaxRetries *json.Number `json:"max_retries"`
		RetryDelay *json.Number `json:"retry_delay"`
	} `json:"tts_settings"`
}

// flexText accepts either a JSON string or a JSON number and keeps its text
type flexText string

func (f *flexText) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexText(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected a number or string, got %s", string(trimmed))
	}
	*f = flexText(n.String())
	return nil
}

// LoadSettings reads and validates the settings document at path.
// Documents ending in .toml are parsed as TOML, everything else as JSON.
// Every failure is reported as a ConfigurationError.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Configuration(fmt.Sprintf("failed to read settings file %s", path), err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = tomlToJSON(data)
		if err != nil {
			return nil, apperr.Configuration(fmt.Sprintf("failed to parse settings file %s", path), err)
		}
	}

	return ParseSettings(data)
}

// ParseSettings validates a JSON settings document
func ParseSettings(data []byte) (*Settings, error) {
	var doc settingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Configuration("malformed settings document", err)
	}

	return doc.validate()
}

func tomlToJSON(data []byte) ([]byte, error) {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

func (d *settingsDocument) validate() (*Settings, error) {
	var missing []string
	requireText := func(name string, v *string) string {
		if v == nil || strings.TrimSpace(*v) == "" {
			missing = append(missing, name)
			return ""
		}
		return *v
	}

	var s Settings

	if d.APIKeys == nil {
		missing = append(missing, "api_keys.google_gemini", "api_keys.fpt_ai")
	} else {
		s.APIKeys.GoogleGemini = requireText("api_keys.google_gemini", d.APIKeys.GoogleGemini)
		s.APIKeys.FPTAI = requireText("api_keys.fpt_ai", d.APIKeys.FPTAI)
	}

	if d.GeminiSettings == nil {
		missing = append(missing, "gemini_settings.prompt")
	} else {
		s.Gemini.Prompt = requireText("gemini_settings.prompt", d.GeminiSettings.Prompt)
	}

	tts := d.TTSSettings
	if tts == nil {
		missing = append(missing,
			"tts_settings.voice", "tts_settings.speed",
			"tts_settings.max_retries", "tts_settings.retry_delay")
	} else {
		s.TTS.Voice = requireText("tts_settings.voice", tts.Voice)
		if tts.Speed == nil {
			missing = append(missing, "tts_settings.speed")
		} else {
			s.TTS.Speed = string(*tts.Speed)
		}
		if tts.MaxRetries == nil {
			missing = append(missing, "tts_settings.max_retries")
		}
		if tts.RetryDelay == nil {
			missing = append(missing, "tts_settings.retry_delay")
		}
	}

	if len(missing) > 0 {
		return nil, apperr.Configuration(
			fmt.Sprintf("settings missing required fields: %s", strings.Join(missing, ", ")), nil)
	}

	retries, err := tts.MaxRetries.Int64()
	if err != nil {
		return nil, apperr.Configuration("tts_settings.max_retries must be an integer", err)
	}
	if retries < 0 {
		return nil, apperr.Configuration(
			fmt.Sprintf("tts_settings.max_retries must not be negative, got %d", retries), nil)
	}
	s.TTS.MaxRetries = int(retries)

	delay, err := tts.RetryDelay.Float64()
	if err != nil {
		return nil, apperr.Configuration("tts_settings.retry_delay must be a number", err)
	}
	if delay < 0 || math.IsNaN(delay) || math.IsInf(delay, 0) {
		return nil, apperr.Configuration(
			fmt.Sprintf("tts_settings.retry_delay must be a non-negative number of seconds, got %v", delay), nil)
	}
	s.TTS.RetryDelay = time.Duration(delay * float64(time.Second))

	return &s, nil
}
