package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

const Lifetime = "lifetime"

// ExpiryLayout matches the naive ISO-8601 timestamps already in np_users.json.
const ExpiryLayout = "2006-01-02T15:04:05.000000"

// NoPrefixUser is one np_users.json entry. Entries are judged one at a time,
// so a bad entry only affects its own user.
type NoPrefixUser struct {
	// Active follows the truthiness of the "active" field.
	Active bool
	// ExpiresAt is Lifetime when the entry has no expires_at.
	ExpiresAt string
	// Malformed is set when the entry is not an object or its expires_at is
	// not a string.
	Malformed bool
}

type noPrefixRecord struct {
	Active    bool   `json:"active"`
	ExpiresAt string `json:"expires_at"`
}

func decodeNoPrefixUser(data json.RawMessage) NoPrefixUser {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return NoPrefixUser{Malformed: true}
	}

	user := NoPrefixUser{Active: truthy(fields["active"]), ExpiresAt: Lifetime}
	if raw, ok := fields["expires_at"]; ok {
		var expires *string
		if err := json.Unmarshal(raw, &expires); err != nil || expires == nil {
			user.ExpiresAt = ""
			user.Malformed = true
		} else {
			user.ExpiresAt = *expires
		}
	}
	return user
}

// truthy reports whether a JSON value would count as true in a condition:
// false, null, 0, "" and empty containers do not.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	return true
}

func (s *Store) readNoPrefix() (map[string]json.RawMessage, error) {
	raw := map[string]json.RawMessage{}
	if err := s.readJSON(NoPrefixFile, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}

// NoPrefixUsers returns every entry of np_users.json. Only a file that is not
// a JSON object is reported as a decode error.
func (s *Store) NoPrefixUsers() (map[string]NoPrefixUser, error) {
	raw, err := s.readNoPrefix()
	if err != nil {
		return nil, err
	}
	users := make(map[string]NoPrefixUser, len(raw))
	for id, data := range raw {
		users[id] = decodeNoPrefixUser(data)
	}
	return users, nil
}

// DeactivateNoPrefix sets active to false on the user's entry and leaves its
// other fields untouched.
func (s *Store) DeactivateNoPrefix(userID string) error {
	return s.updateNoPrefix(func(raw map[string]json.RawMessage) error {
		data, ok := raw[userID]
		if !ok {
			return nil
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
			return nil
		}
		fields["active"] = json.RawMessage("false")
		updated, err := json.Marshal(fields)
		if err != nil {
			return errors.Wrapf(err, "encoding no-prefix entry %s", userID)
		}
		raw[userID] = updated
		return nil
	})
}

// GrantNoPrefix gives userID the no-prefix privilege. A zero duration grants it
// for life.
func (s *Store) GrantNoPrefix(userID string, d time.Duration, now time.Time) (NoPrefixUser, error) {
	record := noPrefixRecord{Active: true, ExpiresAt: Lifetime}
	if d > 0 {
		record.ExpiresAt = now.Add(d).Format(ExpiryLayout)
	}
	err := s.updateNoPrefix(func(raw map[string]json.RawMessage) error {
		data, err := json.Marshal(record)
		if err != nil {
			return errors.Wrapf(err, "encoding no-prefix entry %s", userID)
		}
		raw[userID] = data
		return nil
	})
	return NoPrefixUser{Active: record.Active, ExpiresAt: record.ExpiresAt}, err
}

// RevokeNoPrefix removes userID's entry and reports whether one existed.
func (s *Store) RevokeNoPrefix(userID string) (bool, error) {
	var found bool
	err := s.updateNoPrefix(func(raw map[string]json.RawMessage) error {
		_, found = raw[userID]
		delete(raw, userID)
		return nil
	})
	return found, err
}

func (s *Store) updateNoPrefix(fn func(map[string]json.RawMessage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readNoPrefix()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		raw = map[string]json.RawMessage{}
	}
	if err := fn(raw); err != nil {
		return err
	}
	return s.writeJSON(NoPrefixFile, raw)
}
