package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/habitcards/assistant/internal/models"
	"github.com/habitcards/assistant/internal/parse"
	"github.com/habitcards/assistant/internal/validation"
	"go.uber.org/zap"
)

// ParseHandler handles transcript parsing requests
type ParseHandler struct {
	tier   *parse.GenerativeTier
	logger *zap.Logger
}

// NewParseHandler creates a parse handler backed by the generative tier.
func NewParseHandler(tier *parse.GenerativeTier, logger *zap.Logger) *ParseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParseHandler{tier: tier, logger: logger}
}

type parseRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// Parse handles POST /api/parse. The response body is the mode's structured
// result document, exactly the shape the assistant's backend tier decodes.
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Text = validation.SanitizeTranscript(req.Text)
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.tier.Parse(r.Context(), mode, req.Text)
	if err != nil {
		h.logger.Error("parse_request_failed",
			zap.String("mode", mode.String()),
			zap.Error(err),
		)
		respondError(w, http.StatusBadGateway, "failed to parse transcript")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
