package cog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"cxbot/internal/command"
	"cxbot/internal/discord"
	"cxbot/internal/store"

	"github.com/bwmarrin/discordgo"
)

func init() {
	Register("settings", func() Cog { return &SettingsCog{} })
}

const (
	defaultMaxPrefixLength = 10
	defaultPurgeCount      = 10
	maxPurgeCount          = 100
)

type SettingsConfig struct {
	Enabled       bool `json:"Enabled"`
	MaxPrefixSize int  `json:"Max_prefix_size"`
}

// SettingsCog lets server managers change the guild prefix and clean up channels.
type SettingsCog struct {
	Config *SettingsConfig

	store    *store.Store
	prefixes command.PrefixFunc
	fallback string
}

func (m *SettingsCog) Name() string {
	return "SettingsCog"
}

func (m *SettingsCog) Init(env *Env) error {
	var cfg SettingsConfig
	if err := env.Config(&cfg); err != nil {
		return err
	}
	if cfg.MaxPrefixSize <= 0 {
		cfg.MaxPrefixSize = defaultMaxPrefixLength
	}
	m.Config = &cfg
	m.store = env.Store
	m.prefixes = env.Prefixes
	m.fallback = env.Prefix

	if !cfg.Enabled {
		env.Logger.Infoln("Settings commands disabled in configs")
		return nil
	}

	return env.Router.Register(
		&command.Command{
			Name:        "prefix",
			Description: "Shows the prefixes you can use here.",
			Run:         m.showPrefix,
		},
		&command.Command{
			Name:        "setprefix",
			Description: "Changes this server's prefix. Quote it to keep a trailing space.",
			Params:      []command.Param{{Name: "prefix", Greedy: true}},
			Permissions: discordgo.PermissionManageServer,
			Run:         m.setPrefix,
		},
		&command.Command{
			Name:        "resetprefix",
			Description: "Restores the default prefix for this server.",
			Permissions: discordgo.PermissionManageServer,
			Run:         m.resetPrefix,
		},
		&command.Command{
			Name:        "purge",
			Aliases:     []string{"clear"},
			Description: "Deletes recent messages in this channel, optionally only from one user.",
			Params:      []command.Param{{Name: "count", Optional: true}, {Name: "user", Optional: true}},
			Permissions: discordgo.PermissionManageMessages,
			Cooldown:    &command.Cooldown{Rate: 1, Per: 5 * time.Second},
			Run:         m.purge,
		},
	)
}

func (m *SettingsCog) showPrefix(ctx *command.Context) error {
	var shown []string
	for _, p := range m.prefixes(ctx.Author().ID, ctx.GuildID()) {
		if p == "" {
			shown = append(shown, "no prefix")
			continue
		}
		shown = append(shown, fmt.Sprintf("`%s`", p))
	}
	_, err := ctx.Send("Prefixes: " + strings.Join(shown, ", "))
	return err
}

func (m *SettingsCog) setPrefix(ctx *command.Context) error {
	prefix := ctx.Rest(0)
	if strings.TrimSpace(prefix) == "" {
		_, err := ctx.Send("The prefix cannot be blank.")
		return err
	}
	if utf8.RuneCountInString(prefix) > m.Config.MaxPrefixSize {
		_, err := ctx.Send(fmt.Sprintf("The prefix can be at most %d characters.", m.Config.MaxPrefixSize))
		return err
	}

	if err := m.store.SetPrefix(ctx.GuildID(), prefix); err != nil {
		return err
	}
	ctx.Logger.Infow("Guild prefix changed", "prefix", prefix)
	_, err := ctx.Send(fmt.Sprintf("✅ Prefix set to `%s`.", prefix))
	return err
}

func (m *SettingsCog) resetPrefix(ctx *command.Context) error {
	if err := m.store.ResetPrefix(ctx.GuildID()); err != nil {
		return err
	}
	_, err := ctx.Send(fmt.Sprintf("✅ Prefix reset to `%s`.", m.fallback))
	return err
}

func (m *SettingsCog) purge(ctx *command.Context) error {
	count := defaultPurgeCount
	if arg := ctx.Arg(0); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > maxPurgeCount {
			_, err := ctx.Send(fmt.Sprintf("The count must be a number between 1 and %d.", maxPurgeCount))
			return err
		}
		count = n
	}

	options := &discord.ClearMessagesOnChannelOptions{
		Before: ctx.Message.ID,
		Limit:  count,
	}
	if arg := ctx.Arg(1); arg != "" {
		userID, err := ParseUserID(arg)
		if err != nil {
			_, err := ctx.Send("Please mention a user or give their ID.")
			return err
		}
		options.Whitelist = []string{userID}
	}

	deleted, err := discord.ClearMessagesOnChannel(ctx.Session, ctx.Logger, ctx.ChannelID(), options)
	if err != nil {
		return err
	}
	ctx.Logger.Infow("Purged messages", "count", deleted)

	_, err = ctx.SendEmbedTimed(&discordgo.MessageEmbed{
		Description: fmt.Sprintf("🧹 Deleted **%d** messages.", deleted),
	}, 5*time.Second)
	return err
}
