package synthesis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"tagline\":\"hi\"}"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL+"/", "test-key", "", srv.Client())
	out, err := o.Generate(context.Background(), Request{
		System:  "be brief",
		User:    "question",
		History: []Turn{{Role: "user", Text: "hello"}, {Role: "model", Text: "hi there"}},
		Schema:  portfolioSchema,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"tagline":"hi"}`, out)

	assert.Equal(t, DefaultOpenAIModel, got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "personalBrandAdvice")
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, chatMessage{Role: "user", Content: "question"}, got.Messages[3])
}

func TestOpenAIErrorsClassifyAsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGateway(NewOpenAI(srv.URL, "k", "m", srv.Client()), time.Second, nil)
	_, err := g.Rewrite(context.Background(), "text")
	requireReason(t, err, ReasonNetwork)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.StatusCode)
}

func TestOpenAINoChoicesIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	g := NewGateway(NewOpenAI(srv.URL, "k", "m", srv.Client()), time.Second, nil)
	_, err := g.Rewrite(context.Background(), "text")
	requireReason(t, err, ReasonEmptyResponse)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), ProviderConfig{Name: "gemini"})
	require.NoError(t, err)
	assert.IsType(t, Unconfigured{}, p)

	p, err = NewProvider(context.Background(), ProviderConfig{Name: "groq", OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = NewProvider(context.Background(), ProviderConfig{Name: "mystery"})
	assert.Error(t, err)
}
