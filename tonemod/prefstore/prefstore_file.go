package prefstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FilePrefStore persists both token sets as a single JSON record, written
// atomically (temp file + rename). Reads always observe either the pre- or
// post-flush snapshot, never a partial file.
type FilePrefStore struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	like    map[string]bool
	dislike map[string]bool
	dirty   bool
}

func NewFilePrefStore(path string, logger *slog.Logger) *FilePrefStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilePrefStore{
		path:    path,
		logger:  logger.With("system", "prefstore"),
		like:    make(map[string]bool),
		dislike: make(map[string]bool),
	}
}

func (s *FilePrefStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("no prior preference state, starting empty", "path", s.path)
		s.dirty = true
		return nil
	} else if err != nil {
		return fmt.Errorf("reading preference state: %w", err)
	}

	var rec prefRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		// a corrupt record is best-effort territory, not fatal
		s.logger.Error("corrupt preference state, starting empty", "path", s.path, "err", err)
		s.dirty = true
		return nil
	}

	s.like = make(map[string]bool, len(rec.Like))
	for _, tok := range rec.Like {
		s.like[tok] = true
	}
	s.dislike = make(map[string]bool, len(rec.Dislike))
	for _, tok := range rec.Dislike {
		s.dislike[tok] = true
	}
	s.logger.Info("loaded preference state", "like", len(s.like), "dislike", len(s.dislike), "savedAt", rec.SavedAt)
	return nil
}

func (s *FilePrefStore) addTokens(set map[string]bool, tokens []string) {
	for _, tok := range normalizeTokens(tokens) {
		if !set[tok] {
			set[tok] = true
			s.dirty = true
		}
	}
}

func (s *FilePrefStore) AddLike(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTokens(s.like, tokens)
	return nil
}

func (s *FilePrefStore) AddDislike(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTokens(s.dislike, tokens)
	return nil
}

func (s *FilePrefStore) Export(ctx context.Context) ([]string, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.like), sortedKeys(s.dislike), nil
}

func (s *FilePrefStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.like = make(map[string]bool)
	s.dislike = make(map[string]bool)
	s.dirty = true
	s.mu.Unlock()
	return s.Flush(ctx)
}

func (s *FilePrefStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	rec := prefRecord{
		Like:    sortedKeys(s.like),
		Dislike: sortedKeys(s.dislike),
		SavedAt: time.Now().UTC(),
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.writeRecord(&rec); err != nil {
		// leave the snapshot for the next flush attempt
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	s.logger.Debug("flushed preference state", "like", len(rec.Like), "dislike", len(rec.Dislike))
	return nil
}

func (s *FilePrefStore) writeRecord(rec *prefRecord) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing preference state: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*.tmp")
	if err != nil {
		return fmt.Errorf("writing preference state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing preference state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing preference state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing preference state: %w", err)
	}
	return nil
}
