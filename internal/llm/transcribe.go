package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// mimeToExt maps audio MIME types to file extensions the transcription
// endpoint recognizes. Parameters after ";" are stripped before lookup.
var mimeToExt = map[string]string{
	"audio/webm": "webm",
	"audio/wav":  "wav",
	"audio/mpeg": "mp3",
	"audio/mp3":  "mp3",
	"audio/ogg":  "ogg",
	"audio/opus": "opus",
	"audio/m4a":  "m4a",
	"audio/flac": "flac",
}

// WhisperClient transcribes audio via the Groq-hosted Whisper endpoint.
type WhisperClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewWhisperClient creates a transcription client. An empty baseURL selects
// the public Groq endpoint; an empty model selects whisper-large-v3.
func NewWhisperClient(apiKey, baseURL, model string) *WhisperClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = "whisper-large-v3"
	}
	return &WhisperClient{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Transcribe uploads an audio payload and returns the recognized text.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", &ProviderError{Provider: "whisper", Message: "empty audio payload"}
	}

	ext := extensionFor(mimeType)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", "speech."+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	if err := mw.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("failed to write format field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Provider: "whisper", Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider: "whisper",
			Code:     resp.StatusCode,
			Message:  excerpt(respBody),
		}
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return result.Text, nil
}

// extensionFor resolves a MIME type (possibly with parameters) to an
// extension, defaulting to webm.
func extensionFor(mimeType string) string {
	pure, _, _ := strings.Cut(mimeType, ";")
	pure = strings.ToLower(strings.TrimSpace(pure))
	if ext, ok := mimeToExt[pure]; ok {
		return ext
	}
	return "webm"
}
