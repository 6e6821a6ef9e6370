package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/avelar/gamelens/internal/analysis"
	"github.com/avelar/gamelens/internal/api"
	"github.com/avelar/gamelens/internal/api/handler"
	"github.com/avelar/gamelens/internal/config"
	"github.com/avelar/gamelens/internal/store"
)

// --- fakes ---

type fakePresigner struct {
	lastKey         string
	lastContentType string
	err             error
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastKey = aws.ToString(params.Key)
	f.lastContentType = aws.ToString(params.ContentType)
	return &v4.PresignedHTTPRequest{
		URL:    "https://media.s3.amazonaws.com/" + f.lastKey + "?signed",
		Method: http.MethodPut,
	}, nil
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

type fakeAnalyzer struct {
	doc analysis.RawAnalysisDocument
	err error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, videoURI string) (analysis.RawAnalysisDocument, error) {
	return f.doc, f.err
}

type fakeAgent struct {
	answer    string
	err       error
	lastInput string
	lastAttrs map[string]string
}

func (f *fakeAgent) Invoke(ctx context.Context, sessionID, input string, attrs map[string]string) (string, error) {
	f.lastInput = input
	f.lastAttrs = attrs
	return f.answer, f.err
}

// --- harness ---

type env struct {
	router   http.Handler
	mem      *store.Memory
	presign  *fakePresigner
	objects  *fakeObjects
	analyzer *fakeAnalyzer
	agent    *fakeAgent
}

func newEnv() *env {
	cfg := &config.Config{
		MediaBucket:      "media",
		UploadURLExpiry:  time.Hour,
		CORSAllowOrigins: []string{"*"},
		BedrockAgentID:   "AGENT123",
	}
	e := &env{
		mem:      store.NewMemory(),
		presign:  &fakePresigner{},
		objects:  newFakeObjects(),
		analyzer: &fakeAnalyzer{},
		agent:    &fakeAgent{answer: "Sam Reinhart scored at 15 seconds."},
	}
	h := handler.New(cfg, e.presign, e.objects, e.mem, e.mem, e.analyzer, e.agent)
	e.router = api.NewRouter(h, cfg)
	return e
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = strings.NewReader("{}")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v\nBody: %s", err, rec.Body.String())
	}
}

func seedVideo(e *env, state store.AnalysisState) store.Video {
	v := store.Video{
		ID:          uuid.NewString(),
		Filename:    "game.mp4",
		ContentType: "video/mp4",
		State:       state,
		UploadedAt:  time.Now().UTC(),
	}
	v.S3Key = "videos/" + v.ID + "/game.mp4"
	v.S3URI = "s3://media/" + v.S3Key
	e.mem.PutVideo(v)
	return v
}

func goalDocument() analysis.RawAnalysisDocument {
	return analysis.RawAnalysisDocument{
		Chapters: []analysis.RawChapter{{
			StartTimestampMillis: 15000,
			EndTimestampMillis:   30000,
			DurationMillis:       15000,
			InferenceResult: analysis.ChapterInference{
				PlayerActions: analysis.PlayerAction{
					ActionType:  "goal",
					Description: "Deflection in front of the net",
					PlayerName:  "Sam Reinhart",
				},
			},
		}},
	}
}

// --- tests ---

func TestCreateUploadURL(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodPost, "/api/video/upload-url", map[string]string{
		"fileName":    "game.mp4",
		"contentType": "video/mp4",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		UploadURL string `json:"uploadUrl"`
		S3URI     string `json:"s3Uri"`
		VideoID   string `json:"videoId"`
	}
	decode(t, rec, &resp)

	if _, err := uuid.Parse(resp.VideoID); err != nil {
		t.Errorf("videoId is not a UUID: %s", resp.VideoID)
	}
	wantKey := "videos/" + resp.VideoID + "/game.mp4"
	if e.presign.lastKey != wantKey {
		t.Errorf("presigned key %q, want %q", e.presign.lastKey, wantKey)
	}
	if e.presign.lastContentType != "video/mp4" {
		t.Errorf("presigned content type %q", e.presign.lastContentType)
	}
	if resp.S3URI != "s3://media/"+wantKey {
		t.Errorf("unexpected s3Uri: %s", resp.S3URI)
	}

	v, err := e.mem.GetVideo(resp.VideoID)
	if err != nil {
		t.Fatalf("video not registered: %v", err)
	}
	if v.State != store.StateUploaded {
		t.Errorf("expected uploaded state, got %s", v.State)
	}
}

func TestCreateUploadURL_Validation(t *testing.T) {
	e := newEnv()

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "path traversal", body: map[string]string{"fileName": "../escape.mp4", "contentType": "video/mp4"}},
		{name: "missing filename", body: map[string]string{"contentType": "video/mp4"}},
		{name: "bad content type", body: map[string]string{"fileName": "game.mp4", "contentType": "application/zip"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/video/upload-url", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAnalyzeVideo(t *testing.T) {
	e := newEnv()
	e.analyzer.doc = goalDocument()
	v := seedVideo(e, store.StateUploaded)

	rec := e.do(t, http.MethodPost, "/api/video/analyze/"+v.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		VideoID string                    `json:"videoId"`
		Status  string                    `json:"status"`
		Results analysis.NormalizedResult `json:"results"`
		Message string                    `json:"message"`
	}
	decode(t, rec, &resp)

	if resp.Status != "completed" {
		t.Errorf("status %q, want completed", resp.Status)
	}
	if resp.Results.GameStats.TotalGoals != 1 {
		t.Errorf("totalGoals = %d, want 1", resp.Results.GameStats.TotalGoals)
	}
	if len(resp.Results.Highlights) != 1 || resp.Results.Highlights[0].Type != "player_goal" {
		t.Errorf("unexpected highlights: %+v", resp.Results.Highlights)
	}

	// Raw document persisted for later Q&A.
	if _, ok := e.objects.objects["analysis/"+v.ID+"/results.json"]; !ok {
		t.Error("raw analysis document was not stored in S3")
	}

	stored, _ := e.mem.GetVideo(v.ID)
	if stored.State != store.StateCompleted {
		t.Errorf("video state %s, want completed", stored.State)
	}
	if stored.Result == nil {
		t.Error("normalized result not attached to video")
	}
}

func TestAnalyzeVideo_CompatAlias(t *testing.T) {
	e := newEnv()
	e.analyzer.doc = goalDocument()
	v := seedVideo(e, store.StateUploaded)

	rec := e.do(t, http.MethodPost, "/api/analyze-video/"+v.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("compat alias status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeVideo_NotFound(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/api/video/analyze/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestAnalyzeVideo_InvalidID(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/api/video/analyze/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestAnalyzeVideo_JobFailure(t *testing.T) {
	e := newEnv()
	e.analyzer.err = errors.New("job failed: input video is corrupt")
	v := seedVideo(e, store.StateUploaded)

	rec := e.do(t, http.MethodPost, "/api/video/analyze/"+v.ID, nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status %d, want 502: %s", rec.Code, rec.Body.String())
	}

	stored, _ := e.mem.GetVideo(v.ID)
	if stored.State != store.StateFailed {
		t.Errorf("video state %s, want failed", stored.State)
	}
	if stored.Error == "" {
		t.Error("failure reason not recorded")
	}
}

func TestVideoStatus(t *testing.T) {
	e := newEnv()
	v := seedVideo(e, store.StateAnalyzing)

	rec := e.do(t, http.MethodGet, "/api/video/"+v.ID+"/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		VideoID        string `json:"videoId"`
		AnalysisStatus string `json:"analysisStatus"`
		FileName       string `json:"fileName"`
	}
	decode(t, rec, &resp)
	if resp.AnalysisStatus != "analyzing" || resp.FileName != "game.mp4" {
		t.Errorf("unexpected status response: %+v", resp)
	}
}

func TestConversationFlow(t *testing.T) {
	e := newEnv()
	v := seedVideo(e, store.StateCompleted)

	// Start pinned to the video.
	rec := e.do(t, http.MethodPost, "/api/agent/conversation/start", map[string]string{"videoId": v.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("start status %d: %s", rec.Code, rec.Body.String())
	}
	var started struct {
		SessionID string `json:"sessionId"`
	}
	decode(t, rec, &started)
	if _, err := uuid.Parse(started.SessionID); err != nil {
		t.Fatalf("sessionId is not a UUID: %s", started.SessionID)
	}

	// Send a message; the video location must ride along as attributes.
	rec = e.do(t, http.MethodPost, "/api/agent/conversation/message", map[string]string{
		"sessionId": started.SessionID,
		"message":   "Who scored?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("message status %d: %s", rec.Code, rec.Body.String())
	}
	var msg struct {
		SessionID string `json:"sessionId"`
		Output    struct {
			Text string `json:"text"`
		} `json:"output"`
	}
	decode(t, rec, &msg)
	if msg.Output.Text != "Sam Reinhart scored at 15 seconds." {
		t.Errorf("unexpected agent output: %q", msg.Output.Text)
	}
	if e.agent.lastAttrs["videoS3Uri"] != v.S3URI || e.agent.lastAttrs["videoId"] != v.ID {
		t.Errorf("session attributes not forwarded: %v", e.agent.lastAttrs)
	}

	// Both turns land in the transcript.
	session, err := e.mem.GetSession(started.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(session.Messages) != 2 || session.Messages[0].Role != "user" || session.Messages[1].Role != "assistant" {
		t.Errorf("unexpected transcript: %+v", session.Messages)
	}

	// End is idempotent.
	for i := 0; i < 2; i++ {
		rec = e.do(t, http.MethodPost, "/api/agent/conversation/end", map[string]string{"sessionId": started.SessionID})
		if rec.Code != http.StatusOK {
			t.Fatalf("end status %d: %s", rec.Code, rec.Body.String())
		}
	}
	if _, err := e.mem.GetSession(started.SessionID); !errors.Is(err, store.ErrNotFound) {
		t.Error("session should be gone after end")
	}
}

func TestSendMessage_UnknownSession(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/api/agent/conversation/message", map[string]string{
		"sessionId": uuid.NewString(),
		"message":   "hello",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestAskQuestion(t *testing.T) {
	e := newEnv()
	v := seedVideo(e, store.StateCompleted)

	// The stored raw document is what Q&A reloads.
	body, _ := json.Marshal(goalDocument())
	e.objects.objects["analysis/"+v.ID+"/results.json"] = body

	rec := e.do(t, http.MethodPost, "/api/query/ask", map[string]string{
		"videoId":  v.ID,
		"question": "Who scored the goal",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Answer             string   `json:"answer"`
		Confidence         float64  `json:"confidence"`
		RelatedPlayers     []string `json:"relatedPlayers"`
		RelevantTimestamps []struct {
			TimestampMs int64 `json:"timestamp"`
		} `json:"relevantTimestamps"`
	}
	decode(t, rec, &resp)

	if resp.Answer == "" || resp.Confidence != 0.9 {
		t.Errorf("unexpected answer payload: %+v", resp)
	}
	if len(resp.RelatedPlayers) != 1 || resp.RelatedPlayers[0] != "Sam Reinhart" {
		t.Errorf("relatedPlayers = %v", resp.RelatedPlayers)
	}
	if len(resp.RelevantTimestamps) == 0 || resp.RelevantTimestamps[0].TimestampMs != 15000 {
		t.Errorf("relevantTimestamps = %+v", resp.RelevantTimestamps)
	}
	if !strings.Contains(e.agent.lastInput, "Who scored the goal") {
		t.Error("question missing from agent prompt")
	}
	if !strings.Contains(e.agent.lastInput, "Player Actions") {
		t.Error("game context missing from agent prompt")
	}
}

func TestAskQuestion_AnalysisIncomplete(t *testing.T) {
	e := newEnv()
	v := seedVideo(e, store.StateUploaded)

	rec := e.do(t, http.MethodPost, "/api/query/ask", map[string]string{
		"videoId":  v.ID,
		"question": "Who scored?",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	e := newEnv()
	seedVideo(e, store.StateUploaded)

	rec := e.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var resp struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
		Videos   int               `json:"videosTracked"`
	}
	decode(t, rec, &resp)
	if resp.Status != "healthy" || resp.Videos != 1 {
		t.Errorf("unexpected health: %+v", resp)
	}
	if resp.Services["bedrockAgent"] != "configured" {
		t.Errorf("agent should be configured: %v", resp.Services)
	}
}
