// Package handler provides the HTTP handlers for the review API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/sevigo/review-agent/internal/core"
)

// ReviewHandler accepts code submissions and runs the review pipeline
// synchronously. A weighted semaphore bounds the number of simultaneous
// runs; a saturated service answers 503 instead of queueing.
type ReviewHandler struct {
	reviewer core.Reviewer
	sem      *semaphore.Weighted
	logger   *slog.Logger
}

type reviewRequest struct {
	Code string `json:"code"`
}

type reviewResponse struct {
	Analysis string   `json:"analysis"`
	Issues   []string `json:"issues"`
	Report   string   `json:"report"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewReviewHandler creates a review handler that allows at most
// maxConcurrent pipeline runs at a time.
func NewReviewHandler(reviewer core.Reviewer, maxConcurrent int, logger *slog.Logger) *ReviewHandler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ReviewHandler{
		reviewer: reviewer,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		logger:   logger,
	}
}

// Handle runs a full review for the submitted code and answers with the
// three artifacts, or with a single error message and no partial fields.
func (h *ReviewHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		h.writeError(w, http.StatusBadRequest, "code must not be empty")
		return
	}

	if !h.sem.TryAcquire(1) {
		h.logger.Warn("review capacity exhausted, rejecting request")
		h.writeError(w, http.StatusServiceUnavailable, "too many concurrent reviews, try again later")
		return
	}
	defer h.sem.Release(1)

	state, err := h.reviewer.Review(r.Context(), req.Code)
	if err != nil {
		h.logger.Error("review failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, reviewResponse{
		Analysis: state.Analysis,
		Issues:   state.Issues,
		Report:   state.Report,
	})
}

func (h *ReviewHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}
