package cog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cxbot/internal/command"
	"cxbot/internal/store"

	"github.com/pkg/errors"
)

func init() {
	Register("owner", func() Cog { return &OwnerCog{} })
}

type OwnerConfig struct {
	Enabled bool `json:"Enabled"`
}

// OwnerCog manages the blacklist and the no-prefix privilege.
type OwnerCog struct {
	Config *OwnerConfig

	store *store.Store
	now   func() time.Time
}

func (m *OwnerCog) Name() string {
	return "OwnerCog"
}

func (m *OwnerCog) Init(env *Env) error {
	var cfg OwnerConfig
	if err := env.Config(&cfg); err != nil {
		return err
	}
	m.Config = &cfg
	m.store = env.Store
	m.now = env.now

	if !cfg.Enabled {
		env.Logger.Infoln("Owner commands disabled in configs")
		return nil
	}

	return env.Router.Register(
		&command.Command{
			Name:        "blacklist",
			Aliases:     []string{"bl"},
			Description: "Adds, removes or lists blacklisted users.",
			Params:      []command.Param{{Name: "add|remove|list"}, {Name: "user", Optional: true}},
			OwnerOnly:   true,
			Run:         m.blacklist,
		},
		&command.Command{
			Name:        "noprefix",
			Aliases:     []string{"np"},
			Description: "Grants or revokes the no-prefix privilege. Durations look like 30d or 12h.",
			Params:      []command.Param{{Name: "grant|revoke"}, {Name: "user"}, {Name: "duration", Optional: true}},
			OwnerOnly:   true,
			Run:         m.noPrefix,
		},
	)
}

func (m *OwnerCog) blacklist(ctx *command.Context) error {
	action := strings.ToLower(ctx.Arg(0))
	if action == "list" {
		ids, err := m.store.Blacklist()
		if err != nil && !store.IsUnavailable(err) {
			return err
		}
		if len(ids) == 0 {
			_, err := ctx.Send("The blacklist is empty.")
			return err
		}
		mentions := make([]string, 0, len(ids))
		for _, id := range ids {
			mentions = append(mentions, "<@"+id+">")
		}
		_, err = ctx.Send("Blacklisted: " + strings.Join(mentions, ", "))
		return err
	}

	userID, err := ParseUserID(ctx.Arg(1))
	if err != nil {
		_, sendErr := ctx.Send("Give me a user mention or ID.")
		return sendErr
	}

	switch action {
	case "add":
		added, err := m.store.AddToBlacklist(userID)
		if err != nil {
			return err
		}
		if !added {
			_, err = ctx.Send(fmt.Sprintf("<@%s> is already blacklisted.", userID))
			return err
		}
		ctx.Logger.Infow("User blacklisted", "user", userID)
		_, err = ctx.Send(fmt.Sprintf("🚫 <@%s> has been blacklisted.", userID))
		return err
	case "remove":
		removed, err := m.store.RemoveFromBlacklist(userID)
		if err != nil {
			return err
		}
		if !removed {
			_, err = ctx.Send(fmt.Sprintf("<@%s> is not blacklisted.", userID))
			return err
		}
		ctx.Logger.Infow("User removed from blacklist", "user", userID)
		_, err = ctx.Send(fmt.Sprintf("✅ <@%s> has been removed from the blacklist.", userID))
		return err
	default:
		_, err := ctx.Send("Use `add`, `remove` or `list`.")
		return err
	}
}

func (m *OwnerCog) noPrefix(ctx *command.Context) error {
	userID, err := ParseUserID(ctx.Arg(1))
	if err != nil {
		_, sendErr := ctx.Send("Give me a user mention or ID.")
		return sendErr
	}

	switch strings.ToLower(ctx.Arg(0)) {
	case "grant":
		d, err := ParseDuration(ctx.Arg(2))
		if err != nil {
			_, sendErr := ctx.Send("Invalid duration. Try `30d`, `12h` or `lifetime`.")
			return sendErr
		}
		entry, err := m.store.GrantNoPrefix(userID, d, m.now())
		if err != nil {
			return err
		}
		ctx.Logger.Infow("No-prefix granted", "user", userID, "expires_at", entry.ExpiresAt)
		until := "for life"
		if entry.ExpiresAt != store.Lifetime {
			until = "until " + entry.ExpiresAt
		}
		_, err = ctx.Send(fmt.Sprintf("✅ <@%s> can use commands without a prefix %s.", userID, until))
		return err
	case "revoke":
		found, err := m.store.RevokeNoPrefix(userID)
		if err != nil {
			return err
		}
		if !found {
			_, err = ctx.Send(fmt.Sprintf("<@%s> does not have no-prefix.", userID))
			return err
		}
		ctx.Logger.Infow("No-prefix revoked", "user", userID)
		_, err = ctx.Send(fmt.Sprintf("✅ Revoked no-prefix from <@%s>.", userID))
		return err
	default:
		_, err := ctx.Send("Use `grant` or `revoke`.")
		return err
	}
}

// ParseUserID accepts a raw snowflake or a user mention.
func ParseUserID(s string) (string, error) {
	id := strings.TrimSuffix(strings.TrimPrefix(s, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", errors.Errorf("invalid user %q", s)
	}
	return id, nil
}

// ParseDuration extends time.ParseDuration with a day unit, as in "7d" or
// "1d12h". Empty and "lifetime" mean no expiry and return 0.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == store.Lifetime {
		return 0, nil
	}

	var total time.Duration
	if days, rest, ok := strings.Cut(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, errors.Errorf("invalid duration %q", s)
		}
		total = time.Duration(n) * 24 * time.Hour
		s = rest
	}
	if s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid duration")
		}
		total += d
	}
	if total <= 0 {
		return 0, errors.Errorf("duration must be positive")
	}
	return total, nil
}
