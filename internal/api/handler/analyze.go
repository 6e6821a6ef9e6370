package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/avelar/gamelens/internal/analysis"
	"github.com/avelar/gamelens/internal/api/respond"
	"github.com/avelar/gamelens/internal/metrics"
	"github.com/avelar/gamelens/internal/s3util"
	"github.com/avelar/gamelens/internal/store"
)

type analyzeResponse struct {
	VideoID  string                    `json:"videoId"`
	Status   string                    `json:"status"`
	Results  analysis.NormalizedResult `json:"results"`
	Metadata analyzeMetadata           `json:"metadata"`
	Message  string                    `json:"message"`
}

type analyzeMetadata struct {
	AnalysisTime       string  `json:"analysisTime"`
	ProcessingDuration float64 `json:"processingDuration"`
	VideoFileName      string  `json:"videoFileName"`
}

// AnalyzeVideo runs Data Automation over an uploaded video and returns the
// normalized result. The call is synchronous: it blocks until the job
// finishes or the analysis timeout elapses.
// POST /api/video/analyze/{videoID} (and the /api/analyze-video/{videoID} alias)
func (h *Handler) AnalyzeVideo(w http.ResponseWriter, r *http.Request) {
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
	if video.S3URI == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_S3_URI", "video has no S3 location")
		return
	}

	h.videos.UpdateVideo(videoID, func(v *store.Video) {
		v.State = store.StateAnalyzing
		v.Error = ""
	})

	log.Info().Str("videoId", videoID).Str("s3Uri", video.S3URI).Msg("Starting synchronous analysis")
	start := time.Now()

	raw, err := h.analyzer.Analyze(r.Context(), video.S3URI)
	if err != nil {
		log.Error().Err(err).Str("videoId", videoID).Msg("Analysis failed")
		h.videos.UpdateVideo(videoID, func(v *store.Video) {
			v.State = store.StateFailed
			v.Error = err.Error()
			v.AnalyzedAt = time.Now().UTC()
		})
		metrics.New().
			Dimension("Operation", "analyze").
			Count("AnalysisFailed").
			Property("videoId", videoID).
			Flush()
		respond.WriteError(w, http.StatusBadGateway, "ANALYSIS_FAILED", err.Error())
		return
	}

	// The raw document is kept in S3 so Q&A can reload it later.
	if err := s3util.PutJSON(r.Context(), h.objects, h.cfg.MediaBucket, analysisResultKey(videoID), raw); err != nil {
		log.Error().Err(err).Str("videoId", videoID).Msg("Failed to store analysis results")
		respond.WriteError(w, http.StatusInternalServerError, "STORE_FAILED", "could not store analysis results")
		return
	}

	result := analysis.Normalize(raw)
	end := time.Now()
	duration := end.Sub(start)

	h.videos.UpdateVideo(videoID, func(v *store.Video) {
		v.State = store.StateCompleted
		v.Result = &result
		v.AnalyzedAt = end.UTC()
	})

	metrics.New().
		Dimension("Operation", "analyze").
		Count("AnalysisCompleted").
		Duration("AnalysisLatency", duration).
		Metric("HighlightsCount", float64(result.GameStats.HighlightsCount), metrics.UnitCount).
		Property("videoId", videoID).
		Flush()

	log.Info().
		Str("videoId", videoID).
		Dur("duration", duration).
		Int("highlights", result.GameStats.HighlightsCount).
		Msg("Completed analysis")

	respond.WriteJSON(w, http.StatusOK, analyzeResponse{
		VideoID: videoID,
		Status:  "completed",
		Results: result,
		Metadata: analyzeMetadata{
			AnalysisTime:       end.UTC().Format(time.RFC3339),
			ProcessingDuration: duration.Seconds(),
			VideoFileName:      video.Filename,
		},
		Message: fmt.Sprintf("Analysis completed in %.1f seconds", duration.Seconds()),
	})
}
