package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_SendsPromptAndAuth(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": `{"table":"test"}`}},
			},
		})
	})

	c := NewClient(srv.URL, "sk-test", "gpt-4o-mini", time.Second)
	out, err := c.Generate(context.Background(), "translate this")
	require.NoError(t, err)

	assert.Equal(t, `{"table":"test"}`, out)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.EqualValues(t, 0, gotBody["temperature"], "translation must be deterministic")

	messages := gotBody["messages"].([]interface{})
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "translate this", msg["content"])
}

func TestGenerate_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"content": "ok"}}},
		})
	})

	c := NewClient(srv.URL, "", "m", time.Second)
	_, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestGenerate_ProviderError(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "invalid api key"},
		})
	})

	c := NewClient(srv.URL, "bad", "m", time.Second)
	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	})

	c := NewClient(srv.URL, "k", "m", time.Second)
	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestGenerate_StripsCodeFence(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "```json\n{\"table\":\"test\"}\n```"}},
			},
		})
	})

	c := NewClient(srv.URL, "k", "m", time.Second)
	out, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, `{"table":"test"}`, out)
}

func TestGenerate_ContextCancelled(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		// The request context only fires once the body has been consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})

	c := NewClient(srv.URL, "k", "m", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, "p")
	require.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                   `{"a":1}`,
		"```json\n{\"a\":1}\n```":     `{"a":1}`,
		"```\n{\"a\":1}\n```":         `{"a":1}`,
		"  ```json\n{\"a\":1}\n```  ": `{"a":1}`,
		"```{\"a\":1}```":             `{"a":1}`,
		"plain text without fences":   "plain text without fences",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripCodeFence(in), "%q", in)
	}
}
