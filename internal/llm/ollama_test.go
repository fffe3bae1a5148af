package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOllamaClientGenerate(t *testing.T) {
	var got generatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"response":"hello"}`)
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL+"/", "llama2:latest", 0.3, discardLogger(),
		WithHTTPClient(srv.Client()),
	)

	res, err := client.Generate(context.Background(), GenerationRequest{Prompt: "say hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)

	assert.Equal(t, "llama2:latest", got.Model)
	assert.Equal(t, "say hello", got.Prompt)
	assert.InDelta(t, 0.3, got.Temperature, 1e-9)
	assert.Equal(t, 512, got.MaxTokens)
}

func TestOllamaClientGenerateNDJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "{\"response\":\"str\"}\n{\"response\":\"eamed\"}\n{\"done\":true}")
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "llama2:latest", 0.3, discardLogger(),
		WithHTTPClient(srv.Client()),
	)

	res, err := client.Generate(context.Background(), GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "streamed", res.Text)
}

func TestOllamaClientRequestOverrides(t *testing.T) {
	var got generatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"response":"ok"}`)
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "llama2:latest", 0.3, discardLogger(),
		WithHTTPClient(srv.Client()),
		WithMaxTokens(1024),
	)

	_, err := client.Generate(context.Background(), GenerationRequest{Prompt: "p", MaxTokens: 64, Temperature: 0.9})
	require.NoError(t, err)
	assert.Equal(t, 64, got.MaxTokens)
	assert.InDelta(t, 0.9, got.Temperature, 1e-9)

	_, err = client.Generate(context.Background(), GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, 1024, got.MaxTokens)
}

func TestOllamaClientNon2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "missing:latest", 0.3, discardLogger(),
		WithHTTPClient(srv.Client()),
	)

	_, err := client.Generate(context.Background(), GenerationRequest{Prompt: "p"})
	require.Error(t, err)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusNotFound, terr.Status)
}

func TestOllamaClientConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewOllamaClient(url, "llama2:latest", 0.3, discardLogger())

	_, err := client.Generate(context.Background(), GenerationRequest{Prompt: "p"})
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.NotNil(t, terr.Unwrap())
}

func TestOllamaClientMalformedBodyIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "the model rambled without any JSON")
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "llama2:latest", 0.3, discardLogger(),
		WithHTTPClient(srv.Client()),
	)

	res, err := client.Generate(context.Background(), GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "the model rambled without any JSON", res.Text)
}
