package handler

import (
	"net/http"
	"time"

	"github.com/avelar/gamelens/internal/api/respond"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	UptimeSec int64             `json:"uptimeSec"`
	Services  map[string]string `json:"services"`
	Videos    int               `json:"videosTracked"`
}

// Root is the liveness endpoint. GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Gameplay Analysis API is running",
		"status":  "healthy",
	})
}

// Health reports service configuration state and tracked counts. GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	agentState := "configured"
	if h.cfg.BedrockAgentID == "" {
		agentState = "unconfigured"
	}

	respond.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UptimeSec: int64(time.Since(h.started).Seconds()),
		Services: map[string]string{
			"bedrockAgent": agentState,
			"storage":      "in-memory + S3",
		},
		Videos: len(h.videos.ListVideos()),
	})
}
