package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avelar/gamelens/internal/api/respond"
	"github.com/avelar/gamelens/internal/s3util"
	"github.com/avelar/gamelens/internal/store"
)

type uploadURLRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3URI     string `json:"s3Uri"`
	VideoID   string `json:"videoId"`
}

// CreateUploadURL issues a presigned PUT URL for a direct browser upload
// and registers the video. POST /api/video/upload-url
func (h *Handler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}
	if req.ContentType == "" {
		req.ContentType = "video/mp4"
	}
	if err := validateFilename(req.FileName); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_FILENAME", err.Error())
		return
	}
	if err := validateContentType(req.ContentType); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_CONTENT_TYPE", err.Error())
		return
	}

	videoID := uuid.NewString()
	key := "videos/" + videoID + "/" + req.FileName

	uploadURL, err := s3util.PresignUpload(r.Context(), h.presign, h.cfg.MediaBucket, key, req.ContentType, h.cfg.UploadURLExpiry)
	if err != nil {
		log.Error().Err(err).Str("videoId", videoID).Msg("Failed to presign upload")
		respond.WriteError(w, http.StatusInternalServerError, "PRESIGN_FAILED", "could not generate upload URL")
		return
	}

	v := store.Video{
		ID:          videoID,
		Filename:    req.FileName,
		ContentType: req.ContentType,
		S3Key:       key,
		S3URI:       s3util.URI(h.cfg.MediaBucket, key),
		State:       store.StateUploaded,
		UploadedAt:  time.Now().UTC(),
	}
	if err := h.videos.PutVideo(v); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_FAILED", "could not register video")
		return
	}

	log.Info().Str("videoId", videoID).Str("key", key).Msg("Generated upload URL")
	respond.WriteJSON(w, http.StatusOK, uploadURLResponse{
		UploadURL: uploadURL,
		S3URI:     v.S3URI,
		VideoID:   videoID,
	})
}
