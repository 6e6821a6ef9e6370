// Package handler implements the HTTP operations of the gameplay analysis
// API. Handlers depend on small interfaces so tests can substitute fakes
// for the AWS collaborators.
package handler

import (
	"context"
	"time"

	"github.com/avelar/gamelens/internal/analysis"
	"github.com/avelar/gamelens/internal/config"
	"github.com/avelar/gamelens/internal/s3util"
	"github.com/avelar/gamelens/internal/store"
)

// Analyzer runs one Data Automation job to completion. Implemented by
// *bda.Runner.
type Analyzer interface {
	Analyze(ctx context.Context, videoURI string) (analysis.RawAnalysisDocument, error)
}

// AgentInvoker forwards one message to the Bedrock Agent. Implemented by
// *agent.Client.
type AgentInvoker interface {
	Invoke(ctx context.Context, sessionID, input string, attrs map[string]string) (string, error)
}

// Handler carries the dependencies shared by all HTTP operations.
type Handler struct {
	cfg      *config.Config
	presign  s3util.Presigner
	objects  s3util.ObjectStore
	videos   store.VideoStore
	sessions store.SessionStore
	analyzer Analyzer
	agent    AgentInvoker
	started  time.Time
}

// New wires a handler set.
func New(cfg *config.Config, presign s3util.Presigner, objects s3util.ObjectStore, videos store.VideoStore, sessions store.SessionStore, analyzer Analyzer, agent AgentInvoker) *Handler {
	return &Handler{
		cfg:      cfg,
		presign:  presign,
		objects:  objects,
		videos:   videos,
		sessions: sessions,
		analyzer: analyzer,
		agent:    agent,
		started:  time.Now(),
	}
}

// analysisResultKey is where a video's raw analysis document is stored.
func analysisResultKey(videoID string) string {
	return "analysis/" + videoID + "/results.json"
}
