package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avelar/gamelens/internal/agent"
	"github.com/avelar/gamelens/internal/analysis"
	"github.com/avelar/gamelens/internal/api/respond"
	"github.com/avelar/gamelens/internal/metrics"
	"github.com/avelar/gamelens/internal/s3util"
	"github.com/avelar/gamelens/internal/store"
)

type askRequest struct {
	VideoID   string `json:"videoId"`
	Question  string `json:"question"`
	SessionID string `json:"sessionId,omitempty"`
}

type askResponse struct {
	VideoID            string                    `json:"videoId"`
	Question           string                    `json:"question"`
	Answer             string                    `json:"answer"`
	Confidence         float64                   `json:"confidence"`
	RelevantTimestamps []agent.RelevantTimestamp `json:"relevantTimestamps"`
	RelatedPlayers     []string                  `json:"relatedPlayers"`
}

// AskQuestion answers a one-shot question about an analyzed video. The
// stored analysis document is reloaded from S3, normalized, and embedded
// in the prompt so the agent answers from factual game data.
// POST /api/query/ask
func (h *Handler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}
	if req.VideoID == "" || req.Question == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "videoId and question are required")
		return
	}
	if err := validateVideoID(req.VideoID); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_VIDEO_ID", err.Error())
		return
	}

	video, err := h.videos.GetVideo(req.VideoID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "VIDEO_NOT_FOUND", "video not found")
		return
	}
	if video.State != store.StateCompleted {
		respond.WriteError(w, http.StatusBadRequest, "ANALYSIS_INCOMPLETE", "video analysis not completed yet")
		return
	}

	var raw analysis.RawAnalysisDocument
	if err := s3util.GetJSON(r.Context(), h.objects, h.cfg.MediaBucket, analysisResultKey(req.VideoID), &raw); err != nil {
		log.Error().Err(err).Str("videoId", req.VideoID).Msg("Failed to load analysis results")
		respond.WriteError(w, http.StatusNotFound, "RESULTS_NOT_FOUND", "analysis results not found")
		return
	}
	result := analysis.Normalize(raw)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	answer, err := h.agent.Invoke(r.Context(), sessionID, agent.BuildQuestionPrompt(result, req.Question), nil)
	if err != nil {
		log.Error().Err(err).Str("videoId", req.VideoID).Msg("Agent Q&A failed")
		respond.WriteError(w, http.StatusBadGateway, "AGENT_FAILED", err.Error())
		return
	}

	metrics.New().
		Dimension("Operation", "query").
		Count("QuestionsAnswered").
		Property("videoId", req.VideoID).
		Flush()

	respond.WriteJSON(w, http.StatusOK, askResponse{
		VideoID:            req.VideoID,
		Question:           req.Question,
		Answer:             answer,
		Confidence:         0.9,
		RelevantTimestamps: agent.ExtractRelevantTimestamps(result, req.Question),
		RelatedPlayers:     agent.ExtractRelatedPlayers(result, req.Question),
	})
}
