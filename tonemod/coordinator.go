package tonemod

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loofah-social/loofah/tonemod/engine"
	"github.com/loofah-social/loofah/tonemod/rewrite"
)

// Coordinator fans a request's item list out to classification or rewrite
// work and assembles the output mapping. Its one hard guarantee: every id
// present in the input appears in the output exactly once, even when the
// unit of work for it failed.
type Coordinator struct {
	Logger *slog.Logger
	Engine *engine.Engine
	Orch   *rewrite.Orchestrator
}

func NewCoordinator(eng *engine.Engine, orch *rewrite.Orchestrator, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		Logger: logger.With("system", "coordinator"),
		Engine: eng,
		Orch:   orch,
	}
}

// normalizeItems drops nothing: items with a missing id get a generated one.
// A missing id is a caller contract violation, so it is logged, not silently
// absorbed. Duplicate ids collapse to the last occurrence (the output is a
// mapping), also logged.
func (c *Coordinator) normalizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = fmt.Sprintf("auto-%d", i)
			c.Logger.Warn("item missing id, generated one", "id", item.ID)
		}
		if seen[item.ID] {
			c.Logger.Warn("duplicate item id in request", "id", item.ID)
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}

// Classify runs the decision engine over the batch. An empty item list
// yields an empty mapping, not an error.
func (c *Coordinator) Classify(ctx context.Context, items []Item, level StrictnessLevel, likeTokens, dislikeTokens []string) map[string]ClassificationResult {
	items = c.normalizeItems(items)
	out := c.Engine.Classify(ctx, items, level, likeTokens, dislikeTokens)

	// the engine upholds this already; re-check so a regression there can't
	// break the response contract
	for _, item := range items {
		if _, ok := out[item.ID]; !ok {
			c.Logger.Error("classification missing item, defaulting to keep", "id", item.ID)
			out[item.ID] = ClassificationResult{Suggest: SuggestKeep}
		}
	}
	return out
}

// Rewrite runs the orchestrator over the batch, with the same totality
// backstop: ids the orchestrator somehow dropped come back as the original
// text.
func (c *Coordinator) Rewrite(ctx context.Context, items []Item, styleSpec string) map[string]RewriteResult {
	items = c.normalizeItems(items)
	out := c.Orch.Rewrite(ctx, items, styleSpec)

	for _, item := range items {
		if _, ok := out[item.ID]; !ok {
			c.Logger.Error("rewrite missing item, passing original through", "id", item.ID)
			out[item.ID] = RewriteResult{Text: item.Text, Source: SourcePassthrough}
		}
	}
	return out
}
