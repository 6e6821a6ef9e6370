// Package store holds the service's runtime state: uploaded videos, their
// analysis lifecycle, and active agent conversations. State is process-local;
// a restart starts fresh.
package store

import (
	"errors"
	"time"

	"github.com/avelar/gamelens/internal/analysis"
)

// ErrNotFound is returned when a video or session id is unknown.
var ErrNotFound = errors.New("store: not found")

// AnalysisState tracks where a video is in its analysis lifecycle.
type AnalysisState string

const (
	StateUploaded  AnalysisState = "uploaded"
	StateAnalyzing AnalysisState = "analyzing"
	StateCompleted AnalysisState = "completed"
	StateFailed    AnalysisState = "failed"
)

// Video is one uploaded gameplay video and its analysis outcome.
type Video struct {
	ID          string
	Filename    string
	ContentType string
	S3Key       string
	S3URI       string
	State       AnalysisState
	Error       string
	Result      *analysis.NormalizedResult
	UploadedAt  time.Time
	AnalyzedAt  time.Time
}

// Message is a single turn in an agent conversation.
type Message struct {
	Role      string // "user" or "assistant"
	Content   string
	Timestamp time.Time
}

// Session is an active agent conversation about one video.
type Session struct {
	ID        string
	VideoID   string
	VideoURI  string
	Messages  []Message
	CreatedAt time.Time
}

// VideoStore tracks uploaded videos and their analysis state.
type VideoStore interface {
	PutVideo(v Video) error
	GetVideo(id string) (Video, error)
	// UpdateVideo applies fn to the stored video under the store's lock and
	// persists the result. Returns ErrNotFound for unknown ids.
	UpdateVideo(id string, fn func(*Video)) (Video, error)
	ListVideos() []Video
}

// SessionStore tracks agent conversations.
type SessionStore interface {
	PutSession(s Session) error
	GetSession(id string) (Session, error)
	AppendMessage(id string, m Message) (Session, error)
	DeleteSession(id string) error
}
