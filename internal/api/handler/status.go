package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelar/gamelens/internal/api/respond"
	"github.com/avelar/gamelens/internal/store"
)

type videoStatusResponse struct {
	VideoID        string `json:"videoId"`
	FileName       string `json:"fileName"`
	ContentType    string `json:"contentType"`
	S3URI          string `json:"s3Uri"`
	AnalysisStatus string `json:"analysisStatus"`
	UploadTime     string `json:"uploadTime"`
	AnalyzedAt     string `json:"analyzedAt,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
}

// VideoStatus reports where a video is in its analysis lifecycle.
// GET /api/video/{videoID}/status
func (h *Handler) VideoStatus(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if err := validateVideoID(videoID); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_VIDEO_ID", err.Error())
		return
	}

	video, err := h.videos.GetVideo(videoID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "VIDEO_NOT_FOUND", "video not found")
		return
	}

	resp := videoStatusResponse{
		VideoID:        video.ID,
		FileName:       video.Filename,
		ContentType:    video.ContentType,
		S3URI:          video.S3URI,
		AnalysisStatus: string(video.State),
		UploadTime:     video.UploadedAt.Format(time.RFC3339),
		ErrorMessage:   video.Error,
	}
	if !video.AnalyzedAt.IsZero() {
		resp.AnalyzedAt = video.AnalyzedAt.Format(time.RFC3339)
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}
