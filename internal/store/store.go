// Package store reads and writes the bot's flat JSON data files.
//
// Every call goes to disk. Nothing is cached, so edits made by hand or by
// other processes are picked up on the next message.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	NoPrefixFile  = "np_users.json"
	PrefixesFile  = "prefixes.json"
	BlacklistFile = "blacklist.json"
	UsersFile     = "users.json"
)

type Store struct {
	dir string

	// Logger reports entries skipped while reading. Defaults to a no-op.
	Logger *zap.SugaredLogger

	// guards read-modify-write cycles started from this process
	mu sync.Mutex
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) logger() *zap.SugaredLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop().Sugar()
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// EnsureDataFiles creates the data directory and an empty users file if they
// are missing.
func (s *Store) EnsureDataFiles() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "creating data directory")
	}

	_, err := os.Stat(s.path(UsersFile))
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "checking %s", UsersFile)
	}
	return s.writeJSON(UsersFile, map[string]any{})
}

// readJSON returns an error wrapping os.ErrNotExist when the file is absent
// and a *DecodeError when it is not valid JSON.
func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &DecodeError{File: name, Err: err}
	}
	return nil
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "creating data directory")
	}
	return s.replaceFile(name, data)
}

// replaceFile writes data to a temporary file next to name and renames it into
// place, so readers see either the old file or the new one.
func (s *Store) replaceFile(name string, data []byte) (err error) {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "syncing %s", name)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	if err = os.Rename(tmp.Name(), s.path(name)); err != nil {
		return errors.Wrapf(err, "replacing %s", name)
	}
	return nil
}

type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return "decoding " + e.File + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err means the file is missing or malformed,
// the two cases callers fall back to defaults for.
func IsUnavailable(err error) bool {
	var decodeErr *DecodeError
	return errors.Is(err, os.ErrNotExist) || errors.As(err, &decodeErr)
}
