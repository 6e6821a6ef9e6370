// Package analysis defines the Bedrock Data Automation result document for
// gameplay video and the normalizer that flattens it into the summary shape
// the frontend consumes.
package analysis

// RawAnalysisDocument is the custom output of a completed Data Automation
// job run against a gameplay video with the game-analysis blueprint.
//
// Every field is optional: the blueprint emits only the sections it matched,
// and partial documents are routine. Zero values stand in for anything
// absent, so the document can be unmarshalled from arbitrary job output
// without pre-validation.
type RawAnalysisDocument struct {
	MatchedBlueprint MatchedBlueprint `json:"matched_blueprint"`
	InferenceResult  GameInference    `json:"inference_result"`
	Chapters         []RawChapter     `json:"chapters"`
}

// MatchedBlueprint identifies which blueprint the Data Automation project
// matched against the video, and how confident the match was.
type MatchedBlueprint struct {
	Name string `json:"name"`
	// Confidence is nil when the blueprint section is missing entirely;
	// the normalizer substitutes 1.0 in that case.
	Confidence *float64 `json:"confidence"`
}

// GameInference is the video-level inference result: where the game was
// played, what the atmosphere was like, and which advertisements were
// visible (as a single comma-separated string, the way the blueprint
// emits it).
type GameInference struct {
	GameLocation   string `json:"game_location"`
	GameAtmosphere string `json:"game_atmosphere"`
	Advertisements string `json:"advertisements"`
}

// RawChapter is one time-bounded segment of the video. Each chapter carries
// at most one inference entry per category.
type RawChapter struct {
	// ChapterIndex is nil when the field is missing; the normalizer falls
	// back to the chapter's position in the traversal.
	ChapterIndex         *int             `json:"chapter_index"`
	StartTimestampMillis int64            `json:"start_timestamp_millis"`
	EndTimestampMillis   int64            `json:"end_timestamp_millis"`
	StartTimecodeSMPTE   string           `json:"start_timecode_smpte"`
	DurationMillis       int64            `json:"duration_millis"`
	InferenceResult      ChapterInference `json:"inference_result"`
}

// ChapterInference holds the per-category entries for a chapter.
type ChapterInference struct {
	PlayerActions      PlayerAction      `json:"player_actions"`
	GameEvents         GameEvent         `json:"game_events"`
	SpectatorReactions SpectatorReaction `json:"spectator_reactions"`
	LockerRoomScenes   SceneObservation  `json:"locker_room_scenes"`
	TeamBusScenes      SceneObservation  `json:"team_bus_scenes"`
}

// PlayerAction describes something a named player did (goal, save, hit...).
type PlayerAction struct {
	ActionType  string `json:"action_type"`
	Description string `json:"description"`
	PlayerName  string `json:"player_name"`
}

// GameEvent describes a game-level occurrence (goal, celebration, fight...).
type GameEvent struct {
	EventType   string `json:"event_type"`
	Description string `json:"description"`
}

// SpectatorReaction describes crowd behavior (cheering, booing...).
type SpectatorReaction struct {
	ReactionType string `json:"reaction_type"`
	Description  string `json:"description"`
}

// SceneObservation describes an off-ice scene (locker room, team bus).
type SceneObservation struct {
	SceneType   string `json:"scene_type"`
	Description string `json:"description"`
}
