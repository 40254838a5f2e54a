// Package store persists per-chat quality preferences across restarts.
package store

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/telefetch/telefetch/internal/core/format"
)

// Store is the per-chat preference store the bot reads and writes.
type Store interface {
	// Get returns the saved tier for a chat, or ok=false if none was
	// ever saved.
	Get(chatID int64) (tier format.Tier, ok bool)

	// Set saves the tier for a chat and flushes to disk best-effort.
	Set(chatID int64, tier format.Tier)
}

// FileStore keeps preferences in a flat JSON document, chat id to
// quality string. A missing or corrupt file is treated as empty, and
// writes are best-effort: the host filesystem may be ephemeral.
type FileStore struct {
	path  string
	mu    sync.Mutex
	prefs map[string]string
}

// NewFileStore loads the store at path, tolerating absence and
// corruption.
func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path, prefs: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s.prefs); err != nil {
		log.Printf("[store] ignoring corrupt preference file %s: %v", path, err)
		s.prefs = map[string]string{}
	}
	return s
}

func (s *FileStore) Get(chatID int64) (format.Tier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.prefs[strconv.FormatInt(chatID, 10)]
	if !ok {
		return 0, false
	}
	tier, err := format.ParseTier(q)
	if err != nil {
		return 0, false
	}
	return tier, true
}

func (s *FileStore) Set(chatID int64, tier format.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[strconv.FormatInt(chatID, 10)] = strconv.Itoa(tier.Height())
	s.flushLocked()
}

func (s *FileStore) flushLocked() {
	data, err := json.MarshalIndent(s.prefs, "", "  ")
	if err != nil {
		return
	}
	if dir := filepath.Dir(s.path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		log.Printf("[store] could not flush preferences: %v", err)
	}
}
