// Package access holds the global checks every command passes through.
package access

import (
	"os"

	"cxbot/internal/command"
	"cxbot/internal/store"

	"github.com/pkg/errors"
)

var ErrBlacklisted = errors.New("user is blacklisted")

// GuildOnly blocks commands sent in direct messages.
func GuildOnly(ctx *command.Context) error {
	if ctx.GuildID() == "" {
		return command.ErrNoPrivateMessage
	}
	return nil
}

// NotBlacklisted denies blacklisted users and tells them why. A missing
// blacklist file allows everyone; an unreadable one fails the check.
func NotBlacklisted(s *store.Store, supportURL string) command.Check {
	return func(ctx *command.Context) error {
		ids, err := s.Blacklist()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}

		author := ctx.Author().ID
		for _, id := range ids {
			if id != author {
				continue
			}
			if _, err := ctx.Send("🚫 You are banned from using this bot. Join support for help: " + supportURL); err != nil {
				ctx.Logger.Warnw("Failed to send ban notice", "error", err)
			}
			return ErrBlacklisted
		}
		return nil
	}
}

// Install adds the global checks in order: the DM block first, then the
// blacklist.
func Install(r *command.Router, s *store.Store, supportURL string) {
	r.AddCheck("guild_only", GuildOnly)
	r.AddCheck("blacklist", NotBlacklisted(s, supportURL))
}
