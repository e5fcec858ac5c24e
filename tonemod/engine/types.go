package engine

import "log/slog"

// one unit of text to classify or rewrite. ID uniqueness is the caller's
// responsibility.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Suggestion string

const (
	SuggestKeep    = Suggestion("keep")
	SuggestHide    = Suggestion("hide")
	SuggestRewrite = Suggestion("rewrite")
)

type ClassificationResult struct {
	Suggest Suggestion `json:"suggest"`
}

// StrictnessLevel controls how aggressively heuristic hits escalate to
// hiding content.
type StrictnessLevel string

const (
	LevelRelaxed  = StrictnessLevel("relaxed")
	LevelModerate = StrictnessLevel("moderate")
	LevelStrict   = StrictnessLevel("strict")
)

// ParseLevel maps a request-supplied level string to a StrictnessLevel,
// falling back to moderate for anything unrecognized.
func ParseLevel(raw string) StrictnessLevel {
	switch StrictnessLevel(raw) {
	case LevelRelaxed, LevelModerate, LevelStrict:
		return StrictnessLevel(raw)
	case "":
		return LevelModerate
	default:
		slog.Warn("unknown strictness level, using moderate", "level", raw)
		return LevelModerate
	}
}
