package analysis

// NormalizedResult is the flat, frontend-ready summary produced from a
// RawAnalysisDocument. Highlights and crowd reactions carry millisecond
// timestamps for the timeline; scenes and chapters carry seconds.
type NormalizedResult struct {
	Highlights         []Highlight      `json:"highlights"`
	CrowdReactions     []CrowdReaction  `json:"crowdReactions"`
	Scenes             []Scene          `json:"scenes"`
	Chapters           []ChapterSummary `json:"chapters"`
	GameStats          GameStats        `json:"gameStats"`
	GameContext        GameContext      `json:"gameContext"`
	AnalysisConfidence float64          `json:"analysisConfidence"`
	AnalysisTimestamp  string           `json:"analysisTimestamp"`
}

// Highlight is a single timestamped, user-facing event on the timeline.
// Type is the category-prefixed composite the frontend keys icons and
// colors off, e.g. "player_goal" or "scene_locker_celebration".
type Highlight struct {
	Type           string  `json:"type"`
	TimestampMs    int64   `json:"timestampMs"`
	EndTimestampMs int64   `json:"endTimestampMs"`
	Description    string  `json:"description"`
	Timecode       string  `json:"timecode"`
	PlayerName     string  `json:"playerName,omitempty"`
	Confidence     float64 `json:"confidence"`
}

// CrowdReaction mirrors a spectator-reaction highlight; Type here is the
// bare reaction type without the crowd_ prefix.
type CrowdReaction struct {
	Type           string `json:"type"`
	TimestampMs    int64  `json:"timestampMs"`
	EndTimestampMs int64  `json:"endTimestampMs"`
	Description    string `json:"description"`
	Timecode       string `json:"timecode"`
}

// Scene is an off-ice segment (locker room or team bus), in seconds.
type Scene struct {
	Type         string  `json:"type"`
	StartTimeSec float64 `json:"startTimeSec"`
	EndTimeSec   float64 `json:"endTimeSec"`
	Description  string  `json:"description"`
}

// ChapterSummary is the per-chapter record for the chapter list.
type ChapterSummary struct {
	Index        int     `json:"index"`
	StartTimeSec float64 `json:"startTimeSec"`
	EndTimeSec   float64 `json:"endTimeSec"`
	DurationSec  float64 `json:"durationSec"`
	Timecode     string  `json:"timecode"`
	Summary      string  `json:"summary"`
}

// GameStats aggregates counters across the whole video.
//
// TotalPenalties is always zero: no blueprint category feeds it. The field
// is kept so the frontend contract stays stable if a penalties category is
// added to the blueprint later.
type GameStats struct {
	TotalGoals       int      `json:"totalGoals"`
	TotalPenalties   int      `json:"totalPenalties"`
	KeyPlayers       []string `json:"keyPlayers"`
	TotalDurationSec float64  `json:"totalDurationSec"`
	HighlightsCount  int      `json:"highlightsCount"`
}

// GameContext is the video-level context extracted by the blueprint.
type GameContext struct {
	Location       string   `json:"location"`
	Atmosphere     string   `json:"atmosphere"`
	Advertisements []string `json:"advertisements"`
}
