package store

import (
	"os"

	"github.com/pkg/errors"
)

func (s *Store) Prefixes() (map[string]string, error) {
	prefixes := map[string]string{}
	if err := s.readJSON(PrefixesFile, &prefixes); err != nil {
		return nil, err
	}
	return prefixes, nil
}

func (s *Store) SetPrefix(guildID, prefix string) error {
	return s.updatePrefixes(func(prefixes map[string]string) {
		prefixes[guildID] = prefix
	})
}

func (s *Store) ResetPrefix(guildID string) error {
	return s.updatePrefixes(func(prefixes map[string]string) {
		delete(prefixes, guildID)
	})
}

func (s *Store) updatePrefixes(fn func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefixes, err := s.Prefixes()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		prefixes = map[string]string{}
	}
	fn(prefixes)
	return s.writeJSON(PrefixesFile, prefixes)
}
