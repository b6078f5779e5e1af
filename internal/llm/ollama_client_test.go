package llm

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

func TestAggregateStreamedResponse(t *testing.T) {
	body := `{"response":"Hel","done":false}
not json
{"response":"lo","done":true}
`
	assert.Equal(t, "Hello", AggregateStreamedResponse(body))
	assert.Equal(t, "single", AggregateStreamedResponse(`{"response":"single","done":true}`))
	assert.Empty(t, AggregateStreamedResponse(""))
}

func TestGenerate(t *testing.T) {
	requests := make(chan generateRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var got generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		requests <- got
		_, _ = w.Write([]byte(`{"response":"Pick option 3","done":true}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/", "", time.Second)
	out, err := c.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "Pick option 3", out)

	got := <-requests
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, "sys", got.System)
	assert.Equal(t, "user", got.Prompt)
	assert.False(t, got.Stream)
}

func serve(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGenerateErrors(t *testing.T) {
	failing := serve(http.StatusInternalServerError, `{"error":"boom"}`)
	defer failing.Close()
	_, err := NewOllamaClient(failing.URL+"/api/generate", "m", time.Second).Generate(context.Background(), "", "p")
	assert.Error(t, err)

	blank := serve(http.StatusOK, `{"response":"  ","done":true}`)
	defer blank.Close()
	c := NewOllamaClient(blank.URL, "m", time.Second)
	_, err = c.Generate(context.Background(), "", "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Generate(ctx, "", "p")
	assert.Error(t, err)
}
