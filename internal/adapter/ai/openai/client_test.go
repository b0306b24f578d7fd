package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/insights/internal/adapter/ai/openai"
	"github.com/careerpilot/insights/internal/config"
	"github.com/careerpilot/insights/internal/domain"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		ModelAPIKey:    "test-key",
		ModelBaseURL:   baseURL,
		ModelName:      "gpt-4o-mini",
		ModelTimeout:   2 * time.Second,
		ModelMaxTokens: 256,
	}
}

func TestChatJSON_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 2)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"score": 80}`}},
			},
		})
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	out, err := c.ChatJSON(context.Background(), "system", "user", 128)
	require.NoError(t, err)
	assert.Equal(t, `{"score": 80}`, out)
}

func TestChatJSON_MissingKey(t *testing.T) {
	t.Parallel()
	cfg := testConfig("http://127.0.0.1:0")
	cfg.ModelAPIKey = ""
	c := openai.New(cfg)
	_, err := c.ChatJSON(context.Background(), "s", "u", 128)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestChatJSON_Non2xx(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	_, err := c.ChatJSON(context.Background(), "s", "u", 128)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestChatJSON_Timeout(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.ChatJSON(ctx, "s", "u", 128)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestChatJSON_EmptyChoices(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	_, err := c.ChatJSON(context.Background(), "s", "u", 128)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestChatJSON_GarbageBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	_, err := c.ChatJSON(context.Background(), "s", "u", 128)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
