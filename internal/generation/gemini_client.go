package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/hookvoice/hook-service/internal/apperr"
	"github.com/hookvoice/hook-service/internal/media"
	"github.com/hookvoice/hook-service/internal/observability"
)

// ContentModel is the part of the Gemini models API used here. *genai.Models satisfies it.
type ContentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ModelFactory builds a ContentModel for one API key
type ModelFactory func(ctx context.Context, apiKey string) (ContentModel, error)

// GeminiClient produces hook text from a video with a single Gemini call
type GeminiClient struct {
	model      string
	newModel   ModelFactory
	httpClient *http.Client
}

// NewGeminiClient creates a client for the given model name
func NewGeminiClient(model string) *GeminiClient {
	c := &GeminiClient{
		model:      model,
		httpClient: &http.Client{},
	}
	c.newModel = c.genaiModel
	return c
}

// NewGeminiClientWithFactory creates a client with a custom model factory.
// This constructor is primarily for tests.
func NewGeminiClientWithFactory(model string, factory ModelFactory) *GeminiClient {
	return &GeminiClient{
		model:    model,
		newModel: factory,
	}
}

func (c *GeminiClient) Model() string {
	return c.model
}

// genaiModel creates a Gemini API client bound to apiKey. The key comes from the
// per-request settings, so the client is not reused across requests.
func (c *GeminiClient) genaiModel(ctx context.Context, apiKey string) (ContentModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client.Models, nil
}

// Generate sends the prompt and video to Gemini and returns the trimmed hook text.
// It makes exactly one attempt.
func (c *GeminiClient) Generate(ctx context.Context, video *media.VideoPayload, prompt, apiKey string) (string, error) {
	if video == nil || len(video.Data) == 0 {
		return "", apperr.Generation("video payload is empty", nil)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.Generation("generation prompt is empty", nil)
	}

	mimeType := video.MIMEType
	if mimeType == "" {
		mimeType = media.DefaultVideoType
	}

	logger := observability.FromContext(ctx)
	logger.Info().
		Str("model", c.model).
		Str("mime_type", mimeType).
		Int("video_bytes", len(video.Data)).
		Msg("Sending video to Gemini")

	model, err := c.newModel(ctx, apiKey)
	if err != nil {
		return "", apperr.Generation("failed to initialise Gemini", err)
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, c.model, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: &genai.Blob{Data: video.Data, MIMEType: mimeType}},
			},
		},
	}, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Gemini generation failed")
		return "", apperr.Generation("Gemini generation failed", err)
	}

	hook := strings.TrimSpace(extractText(resp))
	if hook == "" {
		return "", apperr.Generation("Gemini returned no hook text", nil).
			WithContext("block_reason", blockReason(resp))
	}

	logger.Info().
		Str("hook_text", hook).
		Dur("latency", time.Since(start)).
		Msg("Gemini produced hook")

	return hook, nil
}

// extractText concatenates the text parts of the first candidate
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || resp.PromptFeedback == nil {
		return ""
	}
	return string(resp.PromptFeedback.BlockReason)
}
