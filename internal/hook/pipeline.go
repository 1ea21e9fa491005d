// Package hook runs the video → hook text → speech pipeline for one request.
package hook

import (
	"context"
	"time"

	"github.com/hookvoice/hook-service/internal/config"
	"github.com/hookvoice/hook-service/internal/media"
	"github.com/hookvoice/hook-service/internal/observability"
	"github.com/hookvoice/hook-service/internal/tts"
)

// SettingsLoader returns a freshly loaded settings document
type SettingsLoader func() (*config.Settings, error)

// Generator produces hook text from a video
type Generator interface {
	Generate(ctx context.Context, video *media.VideoPayload, prompt, apiKey string) (string, error)
}

// Synthesizer submits text for speech rendering and fetches the result
type Synthesizer interface {
	RequestSynthesis(ctx context.Context, req tts.SynthesisRequest) (tts.JobHandle, error)
	Acquire(ctx context.Context, handle tts.JobHandle, maxRetries int, retryDelay time.Duration) ([]byte, int, error)
}

// Result is the successful outcome of one request
type Result struct {
	HookText string
	Audio    []byte
}

// Pipeline wires the stages together. It holds no per-request state and is
// safe for concurrent use when its collaborators are.
type Pipeline struct {
	loadSettings SettingsLoader
	generator    Generator
	synthesizer  Synthesizer
}

// NewPipeline creates a pipeline
func NewPipeline(loadSettings SettingsLoader, generator Generator, synthesizer Synthesizer) *Pipeline {
	return &Pipeline{
		loadSettings: loadSettings,
		generator:    generator,
		synthesizer:  synthesizer,
	}
}

// Run processes one uploaded video. Settings are loaded once, before any
// outbound call. The result is all-or-nothing.
func (p *Pipeline) Run(ctx context.Context, video *media.VideoPayload, metrics *observability.Metrics) (*Result, error) {
	if metrics == nil {
		metrics = observability.NewRequestMetrics()
	}
	logger := observability.FromContext(ctx)

	metrics.RecordStageStart(observability.StageSettings)
	settings, err := p.loadSettings()
	metrics.RecordStageEnd(observability.StageSettings, err == nil)
	if err != nil {
		return nil, err
	}

	metrics.RecordStageStart(observability.StageGeneration)
	hookText, err := p.generator.Generate(ctx, video, settings.Gemini.Prompt, settings.APIKeys.GoogleGemini)
	metrics.RecordStageEnd(observability.StageGeneration, err == nil)
	if err != nil {
		return nil, err
	}

	metrics.RecordStageStart(observability.StageSynthesis)
	handle, err := p.synthesizer.RequestSynthesis(ctx, tts.SynthesisRequest{
		Text:   hookText,
		Voice:  settings.TTS.Voice,
		Speed:  settings.TTS.Speed,
		APIKey: settings.APIKeys.FPTAI,
	})
	metrics.RecordStageEnd(observability.StageSynthesis, err == nil)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("max_retries", settings.TTS.MaxRetries).
		Dur("retry_delay", settings.TTS.RetryDelay).
		Msg("Polling for synthesized audio")

	metrics.RecordStageStart(observability.StageAcquisition)
	audio, attempts, err := p.synthesizer.Acquire(ctx, handle, settings.TTS.MaxRetries, settings.TTS.RetryDelay)
	metrics.RecordStageEnd(observability.StageAcquisition, err == nil)
	metrics.RecordAcquisitionAttempts(attempts)
	if err != nil {
		return nil, err
	}

	metrics.RecordPayloadBytes("audio_out", len(audio))

	return &Result{HookText: hookText, Audio: audio}, nil
}
