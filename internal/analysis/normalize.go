package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Category tags the blueprint section a highlight came from. Classification
// is table-driven (see categoryAttrs) rather than assembled ad hoc at each
// call site, so the prefix and confidence for a category live in one place.
type Category int

const (
	CategoryPlayerAction Category = iota
	CategoryGameEvent
	CategorySpectatorReaction
	CategoryLockerRoomScene
	CategoryTeamBusScene
)

// categoryAttrs maps each category to its composite-type prefix and the
// fixed confidence assigned to highlights from that category. The
// confidences are design constants, not computed scores.
var categoryAttrs = map[Category]struct {
	prefix     string
	confidence float64
}{
	CategoryPlayerAction:      {"player_", 0.9},
	CategoryGameEvent:         {"game_", 0.9},
	CategorySpectatorReaction: {"crowd_", 0.8},
	CategoryLockerRoomScene:   {"scene_locker_", 0.85},
	CategoryTeamBusScene:      {"scene_bus_", 0.85},
}

// HighlightType builds the composite type string the frontend consumes,
// e.g. HighlightType(CategoryPlayerAction, "goal") == "player_goal".
func HighlightType(c Category, subtype string) string {
	return categoryAttrs[c].prefix + subtype
}

// Confidence returns the fixed confidence constant for a category.
func (c Category) Confidence() float64 {
	return categoryAttrs[c].confidence
}

// notApplicable is the sentinel the blueprint emits for "no data".
const notApplicable = "Not applicable"

// included applies the contribution filter: a category entry counts only
// when its type is set and its description is real data.
func included(typ, description string) bool {
	return typ != "" && description != "" && description != notApplicable
}

// Normalize flattens a raw Data Automation document into the summary shape
// the frontend consumes. It never fails: absent fields fall back to zero
// values, and documents with no chapters produce an empty (but fully
// populated) result. Identical input yields identical output except for
// AnalysisTimestamp, which records when normalization ran.
func Normalize(raw RawAnalysisDocument) NormalizedResult {
	return normalizeAt(raw, time.Now().UTC())
}

func normalizeAt(raw RawAnalysisDocument, now time.Time) NormalizedResult {
	res := NormalizedResult{
		Highlights:     []Highlight{},
		CrowdReactions: []CrowdReaction{},
		Scenes:         []Scene{},
		Chapters:       []ChapterSummary{},
		GameContext: GameContext{
			Location:       raw.InferenceResult.GameLocation,
			Atmosphere:     raw.InferenceResult.GameAtmosphere,
			Advertisements: splitAdvertisements(raw.InferenceResult.Advertisements),
		},
		AnalysisConfidence: 1.0,
		AnalysisTimestamp:  now.Format(time.RFC3339),
	}
	if raw.MatchedBlueprint.Confidence != nil {
		res.AnalysisConfidence = *raw.MatchedBlueprint.Confidence
	}

	stats := GameStats{KeyPlayers: []string{}}
	seenPlayers := map[string]bool{}
	addPlayer := func(name string) {
		if name == "" || seenPlayers[name] {
			return
		}
		seenPlayers[name] = true
		stats.KeyPlayers = append(stats.KeyPlayers, name)
	}

	for pos, ch := range raw.Chapters {
		startSec := float64(ch.StartTimestampMillis) / 1000
		endSec := float64(ch.EndTimestampMillis) / 1000
		timecode := ch.StartTimecodeSMPTE
		if timecode == "" {
			timecode = "00:00:00;00"
		}
		if endSec > stats.TotalDurationSec {
			stats.TotalDurationSec = endSec
		}

		index := pos
		if ch.ChapterIndex != nil {
			index = *ch.ChapterIndex
		}
		res.Chapters = append(res.Chapters, ChapterSummary{
			Index:        index,
			StartTimeSec: startSec,
			EndTimeSec:   endSec,
			DurationSec:  float64(ch.DurationMillis) / 1000,
			Timecode:     timecode,
			Summary:      fmt.Sprintf("Chapter %d", index+1),
		})

		addHighlight := func(c Category, subtype, description, playerName string) {
			res.Highlights = append(res.Highlights, Highlight{
				Type:           HighlightType(c, subtype),
				TimestampMs:    ch.StartTimestampMillis,
				EndTimestampMs: ch.EndTimestampMillis,
				Description:    description,
				Timecode:       timecode,
				PlayerName:     playerName,
				Confidence:     c.Confidence(),
			})
		}

		inf := ch.InferenceResult

		// Category order is fixed: player actions, game events, spectator
		// reactions, locker room, team bus. The stable sort below preserves
		// this order for entries sharing a timestamp.
		if pa := inf.PlayerActions; included(pa.ActionType, pa.Description) {
			addHighlight(CategoryPlayerAction, pa.ActionType, pa.Description, pa.PlayerName)
			if strings.EqualFold(pa.ActionType, "goal") {
				stats.TotalGoals++
			}
			addPlayer(pa.PlayerName)
		}

		if ge := inf.GameEvents; included(ge.EventType, ge.Description) {
			addHighlight(CategoryGameEvent, ge.EventType, ge.Description, "")
			// Goals reported as game events count again on purpose: the two
			// categories are not de-duplicated against each other.
			if strings.EqualFold(ge.EventType, "goal") {
				stats.TotalGoals++
			}
		}

		if sr := inf.SpectatorReactions; included(sr.ReactionType, sr.Description) {
			res.CrowdReactions = append(res.CrowdReactions, CrowdReaction{
				Type:           sr.ReactionType,
				TimestampMs:    ch.StartTimestampMillis,
				EndTimestampMs: ch.EndTimestampMillis,
				Description:    sr.Description,
				Timecode:       timecode,
			})
			addHighlight(CategorySpectatorReaction, sr.ReactionType, sr.Description, "")
		}

		if ls := inf.LockerRoomScenes; included(ls.SceneType, ls.Description) {
			res.Scenes = append(res.Scenes, Scene{
				Type:         "locker_" + ls.SceneType,
				StartTimeSec: startSec,
				EndTimeSec:   endSec,
				Description:  ls.Description,
			})
			addHighlight(CategoryLockerRoomScene, ls.SceneType, ls.Description, "")
		}

		if bs := inf.TeamBusScenes; included(bs.SceneType, bs.Description) {
			res.Scenes = append(res.Scenes, Scene{
				Type:         "bus_" + bs.SceneType,
				StartTimeSec: startSec,
				EndTimeSec:   endSec,
				Description:  bs.Description,
			})
			addHighlight(CategoryTeamBusScene, bs.SceneType, bs.Description, "")
		}
	}

	sort.SliceStable(res.Highlights, func(i, j int) bool {
		return res.Highlights[i].TimestampMs < res.Highlights[j].TimestampMs
	})
	sort.SliceStable(res.CrowdReactions, func(i, j int) bool {
		return res.CrowdReactions[i].TimestampMs < res.CrowdReactions[j].TimestampMs
	})

	stats.HighlightsCount = len(res.Highlights)
	res.GameStats = stats
	return res
}

// splitAdvertisements parses the blueprint's comma-separated advertisements
// string into trimmed pieces. An empty or whitespace-only string yields an
// empty slice.
func splitAdvertisements(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	ads := make([]string, 0, len(parts))
	for _, p := range parts {
		ads = append(ads, strings.TrimSpace(p))
	}
	return ads
}
