package generation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zhiyi-cms/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func temperature(v float64) *float64 { return &v }

func newClient() *Client {
	return NewClient(nil, zerolog.Nop())
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var genErr *Error
	require.True(t, errors.As(err, &genErr), "expected *generation.Error, got %v", err)
	assert.Equal(t, kind, genErr.Kind)
	return genErr
}

func TestTargetFor(t *testing.T) {
	direct := TargetFor(models.APISettings{
		APIKey:      " sk-test ",
		APIEndpoint: "https://api.anthropic.com/v1/",
		Model:       "claude",
	}, "http://localhost:3001")
	assert.Equal(t, models.ProviderAnthropic, direct.Provider)
	assert.Equal(t, "https://api.anthropic.com/v1", direct.BaseURL)
	assert.Equal(t, "sk-test", direct.APIKey)

	proxied := TargetFor(models.APISettings{
		APIKey:      "k",
		APIEndpoint: "https://generativelanguage.googleapis.com/v1",
		UseProxy:    true,
	}, "http://localhost:3001/")
	assert.Equal(t, models.ProviderGoogle, proxied.Provider)
	assert.Equal(t, "http://localhost:3001/api/google", proxied.BaseURL)
}

func TestComplete_OpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		assert.Equal(t, 20, body.MaxTokens)
		require.NotNil(t, body.Temperature)
		assert.InDelta(t, 0.3, *body.Temperature, 1e-9)

		w.Write([]byte(`{"choices":[{"message":{"content":"  量子计算  "}}]}`))
	}))
	defer srv.Close()

	target := Target{Provider: models.ProviderOpenAI, BaseURL: srv.URL + "/v1", APIKey: "sk-test", Model: "gpt-4o-mini"}
	text, err := newClient().Complete(context.Background(), target, Request{
		Task:        "translate",
		System:      "translator",
		Prompt:      "Quantum computing",
		Temperature: temperature(0.3),
		MaxTokens:   20,
	})

	require.NoError(t, err)
	assert.Equal(t, "量子计算", text)
}

func TestComplete_Anthropic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var body anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "be precise", body.System)
		require.Len(t, body.Messages, 1)

		w.Write([]byte(`{"content":[{"type":"thinking","text":"..."},{"type":"text","text":"definition"}]}`))
	}))
	defer srv.Close()

	target := Target{Provider: models.ProviderAnthropic, BaseURL: srv.URL, APIKey: "sk-ant", Model: "claude"}
	text, err := newClient().Complete(context.Background(), target, Request{System: "be precise", Prompt: "term", MaxTokens: 300})

	require.NoError(t, err)
	assert.Equal(t, "definition", text)
}

func TestComplete_Google(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var body googleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.SystemInstruction)
		assert.Equal(t, 500, body.GenerationConfig.MaxOutputTokens)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"analysis\n"}]}}]}`))
	}))
	defer srv.Close()

	target := Target{Provider: models.ProviderGoogle, BaseURL: srv.URL, APIKey: "g-key", Model: "gemini-pro"}
	text, err := newClient().Complete(context.Background(), target, Request{System: "analyst", Prompt: "sentence", MaxTokens: 500})

	require.NoError(t, err)
	assert.Equal(t, "analysis", text)
}

func TestComplete_NotConfigured(t *testing.T) {
	_, err := newClient().Complete(context.Background(), Target{Provider: models.ProviderOpenAI, BaseURL: "http://unused"}, Request{Prompt: "x"})
	requireKind(t, err, KindNotConfigured)
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	_, err := newClient().Complete(context.Background(), Target{BaseURL: srv.URL, APIKey: "bad"}, Request{Prompt: "x"})

	genErr := requireKind(t, err, KindServer)
	assert.Equal(t, http.StatusUnauthorized, genErr.Status)
	assert.Contains(t, genErr.Message, "Incorrect API key provided")
	assert.Contains(t, genErr.Message, "401")
}

func TestComplete_Malformed(t *testing.T) {
	bodies := []string{`{"choices":[]}`, `not json`, `{"choices":[{"message":{"content":"   "}}]}`}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newClient().Complete(context.Background(), Target{BaseURL: srv.URL, APIKey: "k"}, Request{Prompt: "x"})
			genErr := requireKind(t, err, KindMalformed)
			assert.Equal(t, http.StatusOK, genErr.Status)
			assert.True(t, genErr.Answered())
		})
	}
}

func TestComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newClient().Complete(ctx, Target{BaseURL: srv.URL, APIKey: "k"}, Request{Prompt: "x"})
	requireKind(t, err, KindTimeout)
}

func TestComplete_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newClient().Complete(context.Background(), Target{BaseURL: url, APIKey: "k"}, Request{Prompt: "x"})
	genErr := requireKind(t, err, KindNetwork)
	assert.Contains(t, genErr.Message, "proxy")
}

func TestComplete_NoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer srv.Close()

	_, err := newClient().Complete(context.Background(), Target{BaseURL: srv.URL, APIKey: "k"}, Request{Prompt: "x"})
	requireKind(t, err, KindNoResponse)
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t, "quota", errorDetail(429, []byte(`{"error":{"message":"quota"}}`)))
	assert.Equal(t, "plain", errorDetail(400, []byte(`{"error":"plain"}`)))
	assert.Equal(t, "Bad Gateway", errorDetail(502, nil))
	assert.Equal(t, "upstream down", errorDetail(503, []byte("upstream down")))
}
