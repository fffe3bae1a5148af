package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	generatePath     = "/api/generate"
	defaultMaxTokens = 512
	requestTimeout   = 60 * time.Second
)

// OllamaClient talks to an Ollama-compatible completion endpoint over
// plain HTTP. Depending on the server version the response body is a
// single JSON document, an NDJSON stream, or free text; all three
// resolve to a text result through the decoding layer.
type OllamaClient struct {
	host        string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *slog.Logger
}

// Option configures an OllamaClient.
type Option func(*OllamaClient)

// WithHTTPClient replaces the default HTTP client, keeping its timeout
// role with the caller.
func WithHTTPClient(c *http.Client) Option {
	return func(o *OllamaClient) {
		o.client = c
	}
}

// WithMaxTokens sets the token budget used when a request does not
// specify one.
func WithMaxTokens(n int) Option {
	return func(o *OllamaClient) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// NewOllamaClient creates a client for the completion endpoint at host.
func NewOllamaClient(host, model string, temperature float64, logger *slog.Logger, opts ...Option) *OllamaClient {
	c := &OllamaClient{
		host:        strings.TrimRight(host, "/"),
		model:       model,
		temperature: temperature,
		maxTokens:   defaultMaxTokens,
		client:      &http.Client{Timeout: requestTimeout},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generatePayload struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Generate sends one prompt to the completion endpoint and returns the
// decoded text. The only failure mode is a *TransportError; payloads
// that do not parse still produce a best-effort result.
func (c *OllamaClient) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	url := c.host + generatePath
	payload, err := json.Marshal(generatePayload{
		Model:       c.model,
		Prompt:      req.Prompt,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return GenerationResult{}, &TransportError{URL: url, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return GenerationResult{}, &TransportError{URL: url, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return GenerationResult{}, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return GenerationResult{}, &TransportError{URL: url, Err: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return GenerationResult{}, &TransportError{URL: url, Status: resp.StatusCode}
	}

	text := decodeResponse(body)
	c.logger.Debug("model call completed",
		"model", c.model,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"response_bytes", len(body),
	)
	return GenerationResult{Text: text}, nil
}
