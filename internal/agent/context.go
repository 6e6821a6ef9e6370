package agent

import (
	"fmt"
	"strings"

	"github.com/avelar/gamelens/internal/analysis"
)

// contextSampleSize caps how many events of each kind the prompt quotes.
const contextSampleSize = 5

// maxRelevantTimestamps caps the timestamp hits returned with an answer.
const maxRelevantTimestamps = 5

// RelevantTimestamp is one analysis moment matched against a question.
type RelevantTimestamp struct {
	TimestampMs int64   `json:"timestamp"`
	Description string  `json:"description"`
	Relevance   float64 `json:"relevance"`
}

// BuildGameContext renders a normalized analysis into the textual context
// block the agent receives ahead of a question. The agent answers from
// this factual summary rather than re-watching the video.
func BuildGameContext(res analysis.NormalizedResult) string {
	var parts []string

	gameEvents := filterHighlights(res.Highlights, "game_")
	if len(gameEvents) > 0 {
		parts = append(parts, fmt.Sprintf("Game Events (%d total):", len(gameEvents)))
		for _, h := range sample(gameEvents) {
			parts = append(parts, fmt.Sprintf("- %s at %dms: %s", h.Type, h.TimestampMs, h.Description))
		}
	}

	playerActions := filterHighlights(res.Highlights, "player_")
	if len(playerActions) > 0 {
		parts = append(parts, fmt.Sprintf("\nPlayer Actions (%d total):", len(playerActions)))
		for _, h := range sample(playerActions) {
			parts = append(parts, fmt.Sprintf("- %s %s at %dms", h.PlayerName, h.Type, h.TimestampMs))
		}
	}

	if res.GameContext.Location != "" || res.GameContext.Atmosphere != "" {
		parts = append(parts, "\nGame Context:")
		if res.GameContext.Location != "" {
			parts = append(parts, "- Location: "+res.GameContext.Location)
		}
		if res.GameContext.Atmosphere != "" {
			parts = append(parts, "- Atmosphere: "+res.GameContext.Atmosphere)
		}
	}

	parts = append(parts, "\nAnalysis Metadata:")
	parts = append(parts, fmt.Sprintf("- Total Chapters: %d", len(res.Chapters)))
	parts = append(parts, fmt.Sprintf("- Blueprint Confidence: %g", res.AnalysisConfidence))

	return strings.Join(parts, "\n")
}

// BuildQuestionPrompt wraps a question in the game context so a standalone
// (sessionless) agent call can answer it.
func BuildQuestionPrompt(res analysis.NormalizedResult, question string) string {
	return fmt.Sprintf(`
Hockey Game Analysis Context:
%s

User Question: %s

Please answer the question based on the structured game analysis data provided above.
Include specific timestamps, player names, and confidence scores when available.
If the data doesn't contain relevant information for the question, please indicate that clearly.
`, BuildGameContext(res), question)
}

// ExtractRelevantTimestamps returns up to maxRelevantTimestamps analysis
// moments whose text shares a word with the question. Game events score
// higher than player actions.
func ExtractRelevantTimestamps(res analysis.NormalizedResult, question string) []RelevantTimestamp {
	words := strings.Fields(strings.ToLower(question))
	out := []RelevantTimestamp{}

	for _, h := range filterHighlights(res.Highlights, "game_") {
		if matchesAny(strings.ToLower(h.Type+" "+h.Description), words) {
			out = append(out, RelevantTimestamp{
				TimestampMs: h.TimestampMs,
				Description: h.Type + ": " + h.Description,
				Relevance:   0.9,
			})
		}
	}
	for _, h := range filterHighlights(res.Highlights, "player_") {
		if matchesAny(strings.ToLower(h.PlayerName+" "+h.Type), words) {
			out = append(out, RelevantTimestamp{
				TimestampMs: h.TimestampMs,
				Description: h.PlayerName + " " + h.Type,
				Relevance:   0.8,
			})
		}
	}

	if len(out) > maxRelevantTimestamps {
		out = out[:maxRelevantTimestamps]
	}
	return out
}

// ExtractRelatedPlayers returns the players whose actions overlap the
// question, deduplicated in first-seen order.
func ExtractRelatedPlayers(res analysis.NormalizedResult, question string) []string {
	questionLower := strings.ToLower(question)
	words := strings.Fields(questionLower)

	seen := map[string]bool{}
	out := []string{}
	for _, h := range filterHighlights(res.Highlights, "player_") {
		if h.PlayerName == "" || seen[h.PlayerName] {
			continue
		}
		actionText := strings.ToLower(h.PlayerName + " " + h.Type)
		nameWords := strings.Fields(strings.ToLower(h.PlayerName))
		if matchesAny(actionText, words) || matchesAny(questionLower, nameWords) {
			seen[h.PlayerName] = true
			out = append(out, h.PlayerName)
		}
	}
	return out
}

func filterHighlights(hs []analysis.Highlight, prefix string) []analysis.Highlight {
	out := []analysis.Highlight{}
	for _, h := range hs {
		if strings.HasPrefix(h.Type, prefix) {
			out = append(out, h)
		}
	}
	return out
}

func sample(hs []analysis.Highlight) []analysis.Highlight {
	if len(hs) > contextSampleSize {
		return hs[:contextSampleSize]
	}
	return hs
}

func matchesAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
