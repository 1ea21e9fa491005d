package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hookvoice/hook-service/internal/apperr"
	"github.com/hookvoice/hook-service/internal/hook"
	"github.com/hookvoice/hook-service/internal/media"
	"github.com/hookvoice/hook-service/internal/observability"
)

const headerRequestID = "X-Request-ID"

// Runner executes the pipeline for one decoded video
type Runner interface {
	Run(ctx context.Context, video *media.VideoPayload, metrics *observability.Metrics) (*hook.Result, error)
}

// Handler serves POST /api/process
type Handler struct {
	runner         Runner
	maxUploadBytes int64
}

// NewHandler creates the process handler
func NewHandler(runner Runner, maxUploadBytes int64) *Handler {
	return &Handler{
		runner:         runner,
		maxUploadBytes: maxUploadBytes,
	}
}

// ServeHTTP decodes the upload, runs the pipeline and encodes the outcome.
// Every failure, including a panic in a stage, becomes a JSON error body.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := r.Header.Get(headerRequestID)
	if correlationID == "" {
		correlationID = observability.NewCorrelationID()
	}
	w.Header().Set(headerRequestID, correlationID)

	logger := observability.WithCorrelationID(correlationID)
	ctx := logger.WithContext(r.Context())

	metrics := observability.NewRequestMetrics()
	metrics.RecordRequestStart()

	success := false
	defer func() {
		if rec := recover(); rec != nil {
			h.fail(w, &logger, metrics, apperr.New(apperr.KindInternal, fmt.Sprintf("unexpected failure: %v", rec)))
		}
		metrics.RecordRequestEnd(success)
	}()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, mustEncodeError(fmt.Errorf("method %s not allowed", r.Method)))
		return
	}

	logger.Info().
		Int64("content_length", r.ContentLength).
		Msg("Received hook request")

	body := r.Body
	if h.maxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	video, err := DecodeVideo(body, r.Header.Get("Content-Type"))
	if err != nil {
		h.fail(w, &logger, metrics, err)
		return
	}
	metrics.RecordPayloadBytes("video_in", video.Size())

	result, err := h.runner.Run(ctx, video, metrics)
	if err != nil {
		h.fail(w, &logger, metrics, err)
		return
	}

	payload, err := EncodeSuccess(result.HookText, result.Audio)
	if err != nil {
		h.fail(w, &logger, metrics, apperr.New(apperr.KindInternal, "failed to encode response").WithCause(err))
		return
	}

	success = true
	logger.Info().
		Str("hook_text", result.HookText).
		Int("audio_bytes", len(result.Audio)).
		Msg("Hook request completed")

	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) fail(w http.ResponseWriter, logger *zerolog.Logger, metrics *observability.Metrics, err error) {
	kind := apperr.KindOf(err)

	event := logger.Error().Err(err).Str("kind", string(kind))
	var appErr *apperr.Error
	if errors.As(err, &appErr) && len(appErr.Context) > 0 {
		event = event.Fields(appErr.Context)
	}
	event.Msg("Hook request failed")

	metrics.RecordError(string(kind))

	body, status := EncodeError(err)
	writeJSON(w, status, body)
}

func mustEncodeError(err error) []byte {
	body, _ := EncodeError(err)
	return body
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
