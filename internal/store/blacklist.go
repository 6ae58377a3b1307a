package store

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// blacklistID decodes one blacklist entry. Entries may be JSON numbers or
// numeric strings; json.Number keeps snowflakes exact either way.
func blacklistID(raw json.RawMessage) (string, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	id := n.String()
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", false
	}
	return id, true
}

// Blacklist returns the blacklisted user IDs. Entries that are not user IDs
// are logged and skipped.
func (s *Store) Blacklist() ([]string, error) {
	var raw []json.RawMessage
	if err := s.readJSON(BlacklistFile, &raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for i, entry := range raw {
		id, ok := blacklistID(entry)
		if !ok {
			s.logger().Warnw("Skipping invalid blacklist entry", "index", i, "entry", string(entry))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AddToBlacklist reports false if the user was already listed.
func (s *Store) AddToBlacklist(userID string) (bool, error) {
	if _, err := strconv.ParseUint(userID, 10, 64); err != nil {
		return false, errors.Errorf("invalid user id %q", userID)
	}
	added := true
	err := s.updateBlacklist(func(entries []json.RawMessage) []json.RawMessage {
		for _, entry := range entries {
			if id, ok := blacklistID(entry); ok && id == userID {
				added = false
				return entries
			}
		}
		return append(entries, json.RawMessage(userID))
	})
	return added, err
}

// RemoveFromBlacklist reports false if the user was not listed. Entries that
// are not user IDs are kept as they are.
func (s *Store) RemoveFromBlacklist(userID string) (bool, error) {
	var removed bool
	err := s.updateBlacklist(func(entries []json.RawMessage) []json.RawMessage {
		kept := entries[:0]
		for _, entry := range entries {
			if id, ok := blacklistID(entry); ok && id == userID {
				removed = true
				continue
			}
			kept = append(kept, entry)
		}
		return kept
	})
	return removed, err
}

func (s *Store) updateBlacklist(fn func([]json.RawMessage) []json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := []json.RawMessage{}
	if err := s.readJSON(BlacklistFile, &entries); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		entries = []json.RawMessage{}
	}
	entries = fn(entries)
	if entries == nil {
		entries = []json.RawMessage{}
	}
	return s.writeJSON(BlacklistFile, entries)
}
