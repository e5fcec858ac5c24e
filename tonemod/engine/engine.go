// Decision engine for feed text: classifies each item as keep, hide, or
// rewrite using learned preference tokens plus built-in heuristic rules,
// gated by a strictness level.
//
// Classification is synchronous and local: no network calls, no blocking
// I/O. It is the always-available safety net and must keep working when the
// completion service does not.
package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/loofah-social/loofah/tonemod/keyword"
	"github.com/loofah-social/loofah/tonemod/prefstore"
)

type Engine struct {
	Logger *slog.Logger
	// learned preference sets, merged in to every classification call.
	// Optional: a nil store classifies from request tokens alone.
	Prefs prefstore.PrefStore
}

func NewEngine(prefs prefstore.PrefStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Logger: logger.With("system", "engine"),
		Prefs:  prefs,
	}
}

// Classify evaluates a batch of items under one strictness level. Request
// tokens are merged with the learned sets; dislike always wins over like.
// Every input id appears in the output exactly once.
func (eng *Engine) Classify(ctx context.Context, items []Item, level StrictnessLevel, likeTokens, dislikeTokens []string) map[string]ClassificationResult {
	like, dislike := eng.mergeTokens(ctx, likeTokens, dislikeTokens)

	out := make(map[string]ClassificationResult, len(items))
	for _, item := range items {
		out[item.ID] = ClassificationResult{Suggest: eng.classifyText(item.Text, level, like, dislike)}
	}
	return out
}

func (eng *Engine) mergeTokens(ctx context.Context, likeTokens, dislikeTokens []string) ([]string, []string) {
	var like, dislike []string
	if eng.Prefs != nil {
		learnedLike, learnedDislike, err := eng.Prefs.Export(ctx)
		if err != nil {
			// best-effort: classify from request tokens alone
			eng.Logger.Error("reading learned preferences failed", "err", err)
		} else {
			like = append(like, learnedLike...)
			dislike = append(dislike, learnedDislike...)
		}
	}
	for _, tok := range likeTokens {
		if norm := keyword.NormalizeToken(tok); norm != "" {
			like = append(like, norm)
		}
	}
	for _, tok := range dislikeTokens {
		if norm := keyword.NormalizeToken(tok); norm != "" {
			dislike = append(dislike, norm)
		}
	}
	return like, dislike
}

// classifyText is a pure function of (text, level, preference sets), in
// strict priority order: dislike hit, heuristic policy, like hit, keep.
func (eng *Engine) classifyText(text string, level StrictnessLevel, like, dislike []string) (sugg Suggestion) {
	// similar to an HTTP server, recover any panics from rule evaluation
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("classification rule exception", "err", r)
			sugg = SuggestKeep
		}
	}()

	folded := keyword.Fold(text)

	// dislike has absolute priority, independent of level
	if containsAny(folded, dislike) {
		itemsClassified.WithLabelValues(string(SuggestHide)).Inc()
		return SuggestHide
	}

	hits := evalHeuristics(text, folded)
	for _, cat := range hits {
		heuristicHits.WithLabelValues(string(cat)).Inc()
	}
	if action := applyPolicy(level, hits); action != "" {
		itemsClassified.WithLabelValues(string(action)).Inc()
		return action
	}

	// a like hit flags text the user wants transformed or highlighted;
	// lower priority than every safety rule
	if containsAny(folded, like) {
		itemsClassified.WithLabelValues(string(SuggestRewrite)).Inc()
		return SuggestRewrite
	}

	itemsClassified.WithLabelValues(string(SuggestKeep)).Inc()
	return SuggestKeep
}

func containsAny(folded string, tokens []string) bool {
	if folded == "" {
		return false
	}
	for _, tok := range tokens {
		if tok != "" && strings.Contains(folded, tok) {
			return true
		}
	}
	return false
}
