// Rewrite orchestration: builds style-specific prompts for the external
// completion service and falls back to the deterministic local transform
// chain whenever that service is unavailable or unconfigured. Every input
// item gets an output; a failure on one item never blocks its siblings.
package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/loofah-social/loofah/tonemod/completion"
	"github.com/loofah-social/loofah/tonemod/engine"
	"github.com/loofah-social/loofah/tonemod/softener"
	"github.com/loofah-social/loofah/tonemod/styles"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// which path served an item
const (
	SourceRemote      = "remote"
	SourceLocal       = "local"
	SourcePassthrough = "passthrough"
)

type Result struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type Orchestrator struct {
	Logger *slog.Logger
	// nil means no completion service is configured; all items take the
	// local fallback path
	Client *completion.Client
	// bound on concurrent completion calls per batch
	Workers     int
	Temperature float64
	MaxTokens   int

	cache *lru.Cache[string, string]
}

func NewOrchestrator(client *completion.Client, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	cache, _ := lru.New[string, string](2048)
	return &Orchestrator{
		Logger:      logger.With("system", "rewrite"),
		Client:      client,
		Workers:     4,
		Temperature: 0.8,
		MaxTokens:   512,
		cache:       cache,
	}
}

// Rewrite transforms a batch of items in to the requested style. The output
// mapping contains every input id exactly once, regardless of completion
// order or per-item failures.
func (o *Orchestrator) Rewrite(ctx context.Context, items []engine.Item, styleSpec string) map[string]Result {
	profile := styles.Resolve(styleSpec)
	if spec := strings.TrimSpace(styleSpec); spec != "" && profile.SpecKey() != spec {
		o.Logger.Warn("unknown style spec, using default", "style", styleSpec, "fallback", profile.Key)
	}

	out := make(map[string]Result, len(items))
	var mu sync.Mutex

	workers := o.Workers
	if workers < 1 {
		workers = 1
	}
	eg := new(errgroup.Group)
	eg.SetLimit(workers)
	for _, item := range items {
		item := item
		eg.Go(func() error {
			res := o.rewriteOne(ctx, item, &profile)
			mu.Lock()
			out[item.ID] = res
			mu.Unlock()
			return nil
		})
	}
	// workers never return errors; the wait is for completion only
	_ = eg.Wait()

	counts := make(map[string]int, 3)
	for _, res := range out {
		counts[res.Source]++
		rewritesServed.WithLabelValues(res.Source, profile.Key).Inc()
	}
	o.Logger.Info("rewrite batch done", "style", profile.Key, "items", len(items),
		"remote", counts[SourceRemote], "local", counts[SourceLocal], "passthrough", counts[SourcePassthrough])
	return out
}

func (o *Orchestrator) rewriteOne(ctx context.Context, item engine.Item, profile *styles.Profile) (res Result) {
	// recover panics per item so one bad unit can't take down the batch
	defer func() {
		if r := recover(); r != nil {
			o.Logger.Error("rewrite exception", "err", r, "id", item.ID)
			res = o.fallback(item.Text, profile)
		}
	}()

	if strings.TrimSpace(item.Text) == "" {
		// never synthesize content the caller didn't write
		return Result{Text: item.Text, Source: SourcePassthrough}
	}

	cacheKey := profile.Key + "\x00" + item.Text
	if cached, ok := o.cache.Get(cacheKey); ok {
		return Result{Text: cached, Source: SourceRemote}
	}

	if o.Client != nil {
		msgs := buildMessages(profile, item.Text)
		text, err := o.Client.Complete(ctx, msgs, o.Temperature, o.MaxTokens)
		if err == nil && text != "" {
			o.cache.Add(cacheKey, text)
			return Result{Text: text, Source: SourceRemote}
		}
		o.Logger.Warn("completion unavailable, using local fallback", "err", err, "id", item.ID)
	}

	return o.fallback(item.Text, profile)
}

// The deterministic local chain: soften for the polish family, stylize for
// jokes, and stylize with the dialect's particle pool for dialects (a tone
// approximation; real dialect transfer needs the remote path). Original
// text is the absolute last resort.
func (o *Orchestrator) fallback(text string, profile *styles.Profile) Result {
	var out string
	switch profile.Family {
	case styles.FamilyJoke:
		out = softener.Stylize(text, nil)
	case styles.FamilyDialect:
		out = softener.Stylize(text, profile.Particles)
	default:
		out = softener.Soften(text)
	}
	if strings.TrimSpace(out) == "" {
		out = text
	}
	if out == text {
		return Result{Text: text, Source: SourcePassthrough}
	}
	return Result{Text: out, Source: SourceLocal}
}

// buildMessages assembles the completion request: system instruction with
// the style constraints, few-shot pairs when the profile has them, then the
// original text as the user turn.
func buildMessages(profile *styles.Profile, text string) []completion.Message {
	var sys strings.Builder
	sys.WriteString(profile.Instruction)
	sys.WriteString("\n制約:\n")
	sys.WriteString("- URL・メンション(@名前)・ハッシュタグは変更しないこと\n")
	sys.WriteString("- 入力文をそのまま繰り返さないこと\n")
	sys.WriteString("- 対象の文体・方言のみで出力し、説明や前置きを付けないこと\n")
	if len(profile.Particles) > 0 {
		sys.WriteString(fmt.Sprintf("- 特徴的な語尾の例: %s\n", strings.Join(profile.Particles, " ")))
	}

	msgs := []completion.Message{{Role: "system", Content: sys.String()}}
	for _, ex := range profile.Examples {
		msgs = append(msgs,
			completion.Message{Role: "user", Content: ex.Original},
			completion.Message{Role: "assistant", Content: ex.Transformed},
		)
	}
	return append(msgs, completion.Message{Role: "user", Content: text})
}
