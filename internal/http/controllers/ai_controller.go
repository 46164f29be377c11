package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Lalman888/ai-social-backend/internal/ai"
	httperrors "github.com/Lalman888/ai-social-backend/internal/http/errors"
	"github.com/Lalman888/ai-social-backend/internal/http/helpers"
	"github.com/Lalman888/ai-social-backend/internal/observability/logger"
)

const maxSummarizeChars = 20000

// AIController serves the summarize endpoint. Nil client means the feature
// is not configured and the routes are simply not mounted.
type AIController struct {
	client *ai.Client
}

func NewAIController(client *ai.Client) *AIController {
	return &AIController{client: client}
}

func (c *AIController) Register(r chi.Router) {
	r.Post("/ai/summarize", c.Summarize)
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

func (c *AIController) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := helpers.DecodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("text is required"))
		return
	}
	if len(text) > maxSummarizeChars {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("text is too long"))
		return
	}

	summary, err := c.client.Summarize(r.Context(), text)
	if err != nil {
		logger.From(r.Context()).Warn("summarize failed", logger.Err(err))
		if errors.Is(err, ai.ErrUnavailable) {
			httperrors.WriteError(w, httperrors.ErrUpstreamUnavailable)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}
