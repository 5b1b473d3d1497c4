// Package store holds the process-wide credential state: the mapping from
// Telegram users to via API tokens and from Telegram group chats to via
// group ids. It is loaded from a JSON snapshot at startup and flushed back
// on graceful shutdown and on a schedule.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/SijmenSchoon/pimpybot/internal/logging"
)

// snapshot is the persisted layout: two string-keyed mappings, exactly as
// the deployment's database.json has always looked.
type snapshot struct {
	UserTokens map[string]string `json:"user_tokens"`
	GroupIDs   map[string]int    `json:"group_ids"`
}

// Store is the in-memory credential state. Mutations are rare (onboarding,
// runtime group mapping); reads happen on every inbound event.
type Store struct {
	mu         sync.RWMutex
	userTokens map[int64]string
	groupIDs   map[int64]int
	dirty      bool
}

// Defaults are the compiled-in mappings used when no snapshot exists.
type Defaults struct {
	UserTokens map[int64]string
	GroupIDs   map[int64]int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		userTokens: make(map[int64]string),
		groupIDs:   make(map[int64]int),
	}
}

// Load populates the store from the snapshot at path. A missing snapshot is
// not an error: the store falls back to the compiled-in defaults.
func Load(path string, defaults Defaults) (*Store, error) {
	s := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.WithComponent("store").Info("No snapshot found, using configured defaults")
			s.applyDefaults(defaults)
			return s, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	if len(snap.UserTokens) == 0 && len(snap.GroupIDs) == 0 {
		s.applyDefaults(defaults)
		return s, nil
	}

	for key, token := range snap.UserTokens {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q in snapshot: %w", key, err)
		}
		s.userTokens[id] = token
	}
	for key, groupID := range snap.GroupIDs {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q in snapshot: %w", key, err)
		}
		s.groupIDs[id] = groupID
	}

	return s, nil
}

func (s *Store) applyDefaults(defaults Defaults) {
	for id, token := range defaults.UserTokens {
		s.userTokens[id] = token
	}
	for id, groupID := range defaults.GroupIDs {
		s.groupIDs[id] = groupID
	}
}

// Token resolves a user's stored API token.
func (s *Store) Token(userID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.userTokens[userID]
	return token, ok
}

// Onboard stores a user's token. Last write wins; the caller must have
// validated the token against the remote service first.
func (s *Store) Onboard(userID int64, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userTokens[userID] = token
	s.dirty = true
}

// GroupID resolves the via group mapped to a Telegram chat. Absence means
// the bot is not enabled for that chat.
func (s *Store) GroupID(chatID int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groupID, ok := s.groupIDs[chatID]
	return groupID, ok
}

// MapGroup maps a Telegram chat onto a via group. A chat maps to at most
// one group; remapping replaces the previous entry.
func (s *Store) MapGroup(chatID int64, groupID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupIDs[chatID] = groupID
	s.dirty = true
}

// Counts returns the number of onboarded users and mapped groups.
func (s *Store) Counts() (users, groups int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.userTokens), len(s.groupIDs)
}

// Dirty reports whether the store has unflushed mutations.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush writes the snapshot to path atomically (temp file plus rename) and
// clears the dirty flag.
func (s *Store) Flush(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		UserTokens: make(map[string]string, len(s.userTokens)),
		GroupIDs:   make(map[string]int, len(s.groupIDs)),
	}
	for id, token := range s.userTokens {
		snap.UserTokens[strconv.FormatInt(id, 10)] = token
	}
	for id, groupID := range s.groupIDs {
		snap.GroupIDs[strconv.FormatInt(id, 10)] = groupID
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	s.dirty = false
	return nil
}
