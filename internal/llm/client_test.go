package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqClientComplete(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "cmpl-1",
			"model": "llama-3.3-70b-versatile",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"type\":\"chat\",\"reply\":\"Hello!\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49}
		}`)
	}))
	defer srv.Close()

	temp := 0.7
	client := NewGroqClient("test-key", srv.URL, "llama-3.3-70b-versatile")
	resp, err := client.Complete(context.Background(), CompletionRequest{
		System:      "You are Valet.",
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens:   1024,
		Temperature: &temp,
		JSONObject:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"chat","reply":"Hello!"}`, resp.Content)
	assert.Equal(t, 42, resp.Usage.InputTokens)
	assert.Equal(t, 7, resp.Usage.OutputTokens)

	// Wire format: system prompt leads the message list, json mode is set.
	msgs := captured["messages"].([]any)
	require.NotEmpty(t, msgs)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	rf := captured["response_format"].(map[string]any)
	assert.Equal(t, "json_object", rf["type"])
	assert.Equal(t, 1024.0, captured["max_tokens"])
	assert.Equal(t, 0.7, captured["temperature"])
}

func TestGroqClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"rate limit reached"}}`)
	}))
	defer srv.Close()

	client := NewGroqClient("k", srv.URL, "m")
	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.Code)
	assert.Contains(t, provErr.Message, "rate limit reached")
}

func TestGroqClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	client := NewGroqClient("k", srv.URL, "m")
	_, err := client.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)
}

func TestGroqClientModelOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "override-model", req["model"])
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer srv.Close()

	client := NewGroqClient("k", srv.URL, "default-model")
	_, err := client.Complete(context.Background(), CompletionRequest{Model: "override-model"})
	require.NoError(t, err)
}

func TestWhisperTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-large-v3", r.FormValue("model"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "speech.wav", header.Filename)

		io.WriteString(w, `{"text":"schedule a meeting tomorrow"}`)
	}))
	defer srv.Close()

	client := NewWhisperClient("k", srv.URL, "")
	text, err := client.Transcribe(context.Background(), []byte("RIFF...."), "audio/wav;codecs=1")
	require.NoError(t, err)
	assert.Equal(t, "schedule a meeting tomorrow", text)
}

func TestWhisperTranscribeEmptyAudio(t *testing.T) {
	client := NewWhisperClient("k", "", "")
	_, err := client.Transcribe(context.Background(), nil, "audio/webm")
	assert.Error(t, err)
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"audio/webm", "webm"},
		{"audio/wav", "wav"},
		{"audio/mpeg", "mp3"},
		{"audio/ogg;codecs=opus", "ogg"},
		{"AUDIO/FLAC", "flac"},
		{"video/mp4", "webm"},
		{"", "webm"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extensionFor(tt.mime), tt.mime)
	}
}

func TestProviderErrorFormat(t *testing.T) {
	err := &ProviderError{Provider: "groq", Message: "rate limited", Code: 429}
	assert.Equal(t, "groq: 429 rate limited", err.Error())

	err2 := &ProviderError{Provider: "whisper", Message: "unreachable"}
	assert.Equal(t, "whisper: unreachable", err2.Error())
}

func TestMockClientRecordsRequests(t *testing.T) {
	mock := &MockClient{}
	_, err := mock.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "first"}},
	})
	require.NoError(t, err)
	require.Len(t, mock.Requests, 1)
	assert.Equal(t, "first", mock.Requests[0].Messages[0].Content)
}
