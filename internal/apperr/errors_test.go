package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"configuration", Configuration("bad settings", cause), KindConfiguration},
		{"malformed", MalformedRequest("bad body", cause), KindMalformedRequest},
		{"generation", Generation("no text", cause), KindGeneration},
		{"synthesis", SynthesisRequest("no handle", cause), KindSynthesisRequest},
		{"acquisition", AcquisitionTimeout("timed out", cause), KindAcquisitionTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, tt.err.Kind)
			}
			if tt.err.StatusCode != http.StatusInternalServerError {
				t.Errorf("Expected status 500, got %d", tt.err.StatusCode)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("Expected cause to be reachable through Unwrap")
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := Generation("gemini returned no text", nil)
	if err.Error() != "gemini returned no text" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	err = Generation("gemini call failed", errors.New("quota exceeded"))
	if err.Error() != "gemini call failed: quota exceeded" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("stage failed: %w", SynthesisRequest("no async link", nil))

	if KindOf(wrapped) != KindSynthesisRequest {
		t.Errorf("Expected SynthesisRequestError, got %s", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("Expected plain errors to map to InternalError")
	}
	if !IsKind(wrapped, KindSynthesisRequest) {
		t.Error("Expected IsKind to match wrapped error")
	}
	if IsKind(nil, KindInternal) {
		t.Error("Expected IsKind(nil) to be false")
	}
}

func TestStatusOf(t *testing.T) {
	if StatusOf(errors.New("plain")) != http.StatusInternalServerError {
		t.Error("Expected 500 for unknown errors")
	}
	if StatusOf(MalformedRequest("missing video", nil)) != http.StatusInternalServerError {
		t.Error("Expected 500 for malformed requests")
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := AcquisitionTimeout("timed out after 3 attempts", nil)
	if !errors.Is(err, New(KindAcquisitionTimeout, "")) {
		t.Error("Expected errors.Is to match on kind")
	}
	if errors.Is(err, New(KindGeneration, "")) {
		t.Error("Expected errors.Is to reject a different kind")
	}
}

func TestError_WithContext(t *testing.T) {
	err := SynthesisRequest("rejected", nil).WithContext("status", 401)
	if err.Context["status"] != 401 {
		t.Errorf("Expected context status 401, got %v", err.Context["status"])
	}
}
