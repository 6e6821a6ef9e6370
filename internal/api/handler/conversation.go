package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avelar/gamelens/internal/api/respond"
	"github.com/avelar/gamelens/internal/store"
)

type startConversationRequest struct {
	VideoID string `json:"videoId,omitempty"`
}

type sendMessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	VideoID   string `json:"videoId,omitempty"`
}

type sendMessageResponse struct {
	SessionID string `json:"sessionId"`
	Output    struct {
		Text string `json:"text"`
	} `json:"output"`
}

type endConversationRequest struct {
	SessionID string `json:"sessionId"`
}

// StartConversation mints a session, optionally pinned to a video. The
// video's S3 URI is resolved now so later turns can pass it to the agent.
// POST /api/agent/conversation/start
func (h *Handler) StartConversation(w http.ResponseWriter, r *http.Request) {
	var req startConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}

	s := store.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if req.VideoID != "" {
		if err := validateVideoID(req.VideoID); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_VIDEO_ID", err.Error())
			return
		}
		s.VideoID = req.VideoID
		if video, err := h.videos.GetVideo(req.VideoID); err == nil {
			s.VideoURI = video.S3URI
		}
	}

	if err := h.sessions.PutSession(s); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_FAILED", "could not create session")
		return
	}

	log.Info().Str("sessionId", s.ID).Str("videoId", s.VideoID).Msg("Started conversation session")
	respond.WriteJSON(w, http.StatusOK, map[string]string{"sessionId": s.ID})
}

// SendMessage forwards one message to the agent under an existing session
// and appends both turns to the transcript.
// POST /api/agent/conversation/message
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}
	if err := validateSessionID(req.SessionID); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SESSION_ID", err.Error())
		return
	}
	if req.Message == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "message is required")
		return
	}

	session, err := h.sessions.GetSession(req.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found")
		return
	}

	// The agent's action groups locate the video through these attributes.
	var attrs map[string]string
	if session.VideoURI != "" {
		attrs = map[string]string{
			"videoS3Uri": session.VideoURI,
			"videoId":    session.VideoID,
		}
	}

	output, err := h.agent.Invoke(r.Context(), session.ID, req.Message, attrs)
	if err != nil {
		log.Error().Err(err).Str("sessionId", session.ID).Msg("Agent invocation failed")
		respond.WriteError(w, http.StatusBadGateway, "AGENT_FAILED", err.Error())
		return
	}

	now := time.Now().UTC()
	h.sessions.AppendMessage(session.ID, store.Message{Role: "user", Content: req.Message, Timestamp: now})
	h.sessions.AppendMessage(session.ID, store.Message{Role: "assistant", Content: output, Timestamp: now})

	resp := sendMessageResponse{SessionID: session.ID}
	resp.Output.Text = output
	respond.WriteJSON(w, http.StatusOK, resp)
}

// EndConversation drops a session. Ending an unknown session is not an
// error; the outcome is the same.
// POST /api/agent/conversation/end
func (h *Handler) EndConversation(w http.ResponseWriter, r *http.Request) {
	var req endConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}

	if err := h.sessions.DeleteSession(req.SessionID); err == nil {
		log.Info().Str("sessionId", req.SessionID).Msg("Ended conversation session")
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Conversation ended"})
}
