package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-agent/internal/core"
	"github.com/sevigo/review-agent/internal/llm"
)

type fakeReviewer struct {
	state   *core.ReviewState
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeReviewer) Review(_ context.Context, code string) (*core.ReviewState, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	state := *f.state
	state.Code = code
	return &state, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReviewHandlerSuccess(t *testing.T) {
	reviewer := &fakeReviewer{
		state: &core.ReviewState{
			Analysis: "looks fine",
			Issues:   []string{"- one", "- two"},
			Report:   "full report",
		},
	}
	h := NewReviewHandler(reviewer, 5, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(`{"code":"func main() {}"}`))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Analysis string   `json:"analysis"`
		Issues   []string `json:"issues"`
		Report   string   `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "looks fine", resp.Analysis)
	assert.Equal(t, []string{"- one", "- two"}, resp.Issues)
	assert.Equal(t, "full report", resp.Report)
}

func TestReviewHandlerBadRequests(t *testing.T) {
	h := NewReviewHandler(&fakeReviewer{state: &core.ReviewState{}}, 5, discardLogger())

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: "{not json"},
		{name: "missing code", body: `{}`},
		{name: "blank code", body: `{"code":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Handle(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestReviewHandlerTransportFailure(t *testing.T) {
	terr := &llm.TransportError{URL: "http://localhost:11434/api/generate", Status: 502}
	h := NewReviewHandler(&fakeReviewer{err: terr}, 5, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(`{"code":"x"}`))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "502")
	// No partial artifacts leak into the error response.
	assert.NotContains(t, rec.Body.String(), "analysis")
}

func TestReviewHandlerCapacityExhausted(t *testing.T) {
	reviewer := &fakeReviewer{
		state:   &core.ReviewState{Report: "r"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := NewReviewHandler(reviewer, 1, discardLogger())

	firstDone := make(chan *httptest.ResponseRecorder)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(`{"code":"x"}`))
		rec := httptest.NewRecorder()
		h.Handle(rec, req)
		firstDone <- rec
	}()

	// Wait until the first review occupies the only slot.
	<-reviewer.started

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(`{"code":"y"}`))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	close(reviewer.release)
	first := <-firstDone
	assert.Equal(t, http.StatusOK, first.Code)
}
