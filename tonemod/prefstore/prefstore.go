// Durable storage for learned like/dislike preference tokens.
//
// Stores are the only cross-request mutable state in the system. Mutations
// are append-only token-set unions (except an explicit reset), guarded by a
// dirty flag so that bursts of learn calls amortize to one durable write via
// the background flusher.
package prefstore

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/loofah-social/loofah/tonemod/keyword"
)

// cap on tokens accepted per learn call, so one oversized request can't grow
// the stored sets without bound
const MaxBatchTokens = 200

type PrefStore interface {
	// Load reads durable state if present. Absent prior state is not an
	// error: the store starts empty and dirty, so an empty baseline gets
	// persisted by the next flush.
	Load(ctx context.Context) error
	AddLike(ctx context.Context, tokens []string) error
	AddDislike(ctx context.Context, tokens []string) error
	// Export returns both sets as sorted slices.
	Export(ctx context.Context) (like []string, dislike []string, err error)
	// Reset clears both sets and persists immediately.
	Reset(ctx context.Context) error
	// Flush persists a full snapshot if dirty; a no-op otherwise.
	Flush(ctx context.Context) error
}

// durable record layout shared by backends
type prefRecord struct {
	Like    []string  `json:"like"`
	Dislike []string  `json:"dislike"`
	SavedAt time.Time `json:"saved_at"`
}

func normalizeTokens(tokens []string) []string {
	if len(tokens) > MaxBatchTokens {
		slog.Warn("truncating oversized preference token batch", "count", len(tokens), "max", MaxBatchTokens)
		tokens = tokens[:MaxBatchTokens]
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		norm := keyword.NormalizeToken(tok)
		if norm == "" {
			continue
		}
		out = append(out, norm)
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RunFlusher periodically flushes the store until ctx is cancelled, then
// performs one final flush. Flush errors are logged, not fatal: the request
// path keeps serving from the in-memory snapshot.
func RunFlusher(ctx context.Context, store PrefStore, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := store.Flush(ctx); err != nil {
				logger.Error("preference flush failed", "err", err)
			}
		case <-ctx.Done():
			if err := store.Flush(context.Background()); err != nil {
				logger.Error("final preference flush failed", "err", err)
			}
			return
		}
	}
}
