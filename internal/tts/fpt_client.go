package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hookvoice/hook-service/internal/apperr"
	"github.com/hookvoice/hook-service/internal/media"
	"github.com/hookvoice/hook-service/internal/observability"
	"github.com/hookvoice/hook-service/internal/resilience"
)

// HTTP headers understood by the FPT.AI v5 API
const (
	headerAPIKey      = "api-key"
	headerVoice       = "voice"
	headerSpeed       = "speed"
	headerContentType = "Content-Type"
	contentTypeText   = "text/plain; charset=utf-8"
)

// maxErrorBody bounds how much of a failed response is quoted in errors
const maxErrorBody = 512

// FPTClient submits text to FPT.AI and fetches the rendered audio
type FPTClient struct {
	endpoint   string
	httpClient *http.Client
	sleep      resilience.SleepFunc
}

// NewFPTClient creates a new FPT.AI TTS client
func NewFPTClient(endpoint string) *FPTClient {
	return &FPTClient{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		sleep:      resilience.Sleep,
	}
}

// NewFPTClientWithHTTP creates a client with a custom HTTP client and sleep function.
// This constructor is primarily for testing purposes.
func NewFPTClientWithHTTP(endpoint string, httpClient *http.Client, sleep resilience.SleepFunc) *FPTClient {
	c := NewFPTClient(endpoint)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	if sleep != nil {
		c.sleep = sleep
	}
	return c
}

// RequestSynthesis submits text for rendering and returns the job handle.
// It is attempted once: a non-2xx status or a missing async link fails the request.
func (c *FPTClient) RequestSynthesis(ctx context.Context, req SynthesisRequest) (JobHandle, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", apperr.SynthesisRequest("synthesis text is empty", nil)
	}

	logger := observability.FromContext(ctx)
	logger.Info().
		Str("voice", req.Voice).
		Str("speed", req.Speed).
		Int("text_bytes", len(req.Text)).
		Msg("Submitting hook to FPT.AI TTS")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(req.Text))
	if err != nil {
		return "", apperr.SynthesisRequest("failed to create TTS request", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeText)
	httpReq.Header.Set(headerAPIKey, req.APIKey)
	httpReq.Header.Set(headerVoice, req.Voice)
	httpReq.Header.Set(headerSpeed, req.Speed)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperr.SynthesisRequest("failed to reach FPT.AI TTS", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", apperr.SynthesisRequest(
			fmt.Sprintf("FPT.AI TTS returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil).
			WithContext("status", resp.StatusCode)
	}

	var submit SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submit); err != nil {
		return "", apperr.SynthesisRequest("failed to decode FPT.AI TTS response", err)
	}

	if submit.Async == nil || strings.TrimSpace(*submit.Async) == "" {
		msg := "FPT.AI TTS did not return an async download link"
		if submit.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, submit.Message)
		}
		return "", apperr.SynthesisRequest(msg, nil).
			WithContext("provider_error", submit.Error).
			WithContext("request_id", submit.RequestID)
	}

	logger.Info().
		Str("request_id", submit.RequestID).
		Msg("TTS request accepted, waiting for audio")

	return JobHandle(strings.TrimSpace(*submit.Async)), nil
}

// errNotReady is recorded when the job URL answers with a non-200 status
var errNotReady = errors.New("audio not ready")

// Acquire polls the job handle until it answers 200 or maxRetries attempts are spent.
// Any other status, and transport errors, are retried after retryDelay. A 200 ends
// polling even when its body is empty, which is reported as an acquisition failure.
// The number of attempts made is returned alongside the result.
func (c *FPTClient) Acquire(ctx context.Context, handle JobHandle, maxRetries int, retryDelay time.Duration) ([]byte, int, error) {
	if handle == "" {
		return nil, 0, apperr.SynthesisRequest("job handle is empty", nil)
	}

	logger := observability.FromContext(ctx)
	poller := resilience.NewPoller(
		resilience.PollConfig{MaxAttempts: maxRetries, Delay: retryDelay},
		func(ctx context.Context, attempt int) ([]byte, bool, error) {
			audio, err := c.fetch(ctx, handle)
			if err != nil {
				logger.Debug().Int("attempt", attempt).Err(err).Msg("Audio not available yet")
				return nil, false, err
			}
			return audio, true, nil
		},
	).WithSleep(c.sleep)

	audio, err := poller.Run(ctx)
	if err != nil {
		return nil, poller.Attempts(), apperr.AcquisitionTimeout(
			fmt.Sprintf("timed out waiting for audio from FPT.AI after %d attempts", poller.Attempts()), poller.LastErr()).
			WithContext("attempts", poller.Attempts())
	}

	if len(audio) == 0 {
		return nil, poller.Attempts(), apperr.AcquisitionTimeout(
			fmt.Sprintf("FPT.AI returned empty audio after %d attempts", poller.Attempts()), nil).
			WithContext("attempts", poller.Attempts())
	}

	logger.Info().
		Int("attempts", poller.Attempts()).
		Int("bytes", len(audio)).
		Str("audio_type", media.DetectAudioType(audio)).
		Msg("Audio downloaded")

	return audio, poller.Attempts(), nil
}

// fetch performs one GET against the job handle
func (c *FPTClient) fetch(ctx context.Context, handle JobHandle) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(handle), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll request: %w", err)
	}

	// A transport error counts as a pending attempt and is retried like a 404
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to poll job handle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d", errNotReady, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	return audio, nil
}
