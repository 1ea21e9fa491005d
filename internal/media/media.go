// Package media identifies uploaded video and synthesized audio content.
package media

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultVideoType is assumed when an upload does not identify itself
const DefaultVideoType = "video/mp4"

// VideoPayload is the uploaded video for one request
type VideoPayload struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Size returns the payload length in bytes
func (v *VideoPayload) Size() int {
	if v == nil {
		return 0
	}
	return len(v.Data)
}

// DetectVideoType resolves the MIME type of an uploaded video.
// A declared video/* type wins; otherwise the content is sniffed. Content
// that is neither declared nor detected as video is rejected.
func DetectVideoType(data []byte, declared string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("video content is empty")
	}

	if declared != "" {
		mediaType, _, err := mime.ParseMediaType(declared)
		if err == nil && strings.HasPrefix(mediaType, "video/") {
			return mediaType, nil
		}
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "video/") {
			return baseType(m.String()), nil
		}
	}

	return "", fmt.Errorf("unsupported video content type %q (detected %s)", declared, detected.String())
}

// DetectAudioType reports the sniffed MIME type of synthesized audio
func DetectAudioType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return baseType(mimetype.Detect(data).String())
}

func baseType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		return strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
