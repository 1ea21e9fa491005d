package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/hookvoice/hook-service/internal/apperr"
	"github.com/hookvoice/hook-service/internal/media"
)

// VideoField is the multipart field carrying the upload
const VideoField = "video"

// SuccessBody is the JSON body of a successful response
type SuccessBody struct {
	HookText  string `json:"hookText"`
	AudioData string `json:"audioData"` // standard base64 with padding
}

// ErrorBody is the JSON body of a failed response
type ErrorBody struct {
	Error string `json:"error"`
}

// DecodeVideo extracts the video field from a multipart/form-data body
func DecodeVideo(body io.Reader, contentType string) (*media.VideoPayload, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, apperr.MalformedRequest("invalid Content-Type header", err)
	}
	if mediaType != "multipart/form-data" {
		return nil, apperr.MalformedRequest(fmt.Sprintf("expected multipart/form-data, got %s", mediaType), nil)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, apperr.MalformedRequest("multipart boundary is missing", nil)
	}

	reader := multipart.NewReader(body, boundary)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, apperr.MalformedRequest(fmt.Sprintf("multipart body has no %q field", VideoField), nil)
		}
		if err != nil {
			return nil, malformedRead(err)
		}

		if part.FormName() != VideoField {
			part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, malformedRead(err)
		}
		if len(data) == 0 {
			return nil, apperr.MalformedRequest(fmt.Sprintf("%q field is empty", VideoField), nil)
		}

		mimeType, err := media.DetectVideoType(data, part.Header.Get("Content-Type"))
		if err != nil {
			return nil, apperr.MalformedRequest("uploaded file is not a supported video", err)
		}

		return &media.VideoPayload{
			Data:     data,
			MIMEType: mimeType,
			Filename: part.FileName(),
		}, nil
	}
}

func malformedRead(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.MalformedRequest(fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), nil)
	}
	return apperr.MalformedRequest("failed to read multipart body", err)
}

// EncodeSuccess renders the hook text and audio as the response body
func EncodeSuccess(hookText string, audio []byte) ([]byte, error) {
	return json.Marshal(SuccessBody{
		HookText:  hookText,
		AudioData: base64.StdEncoding.EncodeToString(audio),
	})
}

// EncodeError renders err as the response body and returns the status to send with it
func EncodeError(err error) ([]byte, int) {
	message := "internal error"
	if err != nil {
		message = err.Error()
	}
	body, marshalErr := json.Marshal(ErrorBody{Error: message})
	if marshalErr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	return body, apperr.StatusOf(err)
}
