package cog

import (
	"fmt"
	"strings"
	"time"

	"cxbot/internal/command"
	"cxbot/internal/discord"

	"github.com/bwmarrin/discordgo"
)

func init() {
	Register("general", func() Cog { return &GeneralCog{} })
}

type GeneralConfig struct {
	Enabled bool   `json:"Enabled"`
	Color   string `json:"Color"`
	Footer  string `json:"Footer"`
}

// GeneralCog provides help and ping. The router has no built-in help.
type GeneralCog struct {
	Config *GeneralConfig

	prefix string
}

func (m *GeneralCog) Name() string {
	return "GeneralCog"
}

func (m *GeneralCog) Init(env *Env) error {
	var cfg GeneralConfig
	if err := env.Config(&cfg); err != nil {
		return err
	}
	m.Config = &cfg
	m.prefix = env.Prefix

	if !cfg.Enabled {
		env.Logger.Infoln("General commands disabled in configs")
		return nil
	}

	return env.Router.Register(
		&command.Command{
			Name:        "help",
			Aliases:     []string{"h", "commands"},
			Description: "Shows the command list, or details for one command.",
			Params:      []command.Param{{Name: "command", Optional: true}},
			Cooldown:    &command.Cooldown{Rate: 1, Per: 3 * time.Second},
			Run:         m.help,
		},
		&command.Command{
			Name:        "ping",
			Description: "Shows the gateway latency.",
			Cooldown:    &command.Cooldown{Rate: 1, Per: 5 * time.Second},
			Run:         m.ping,
		},
	)
}

func (m *GeneralCog) embed(title, description string) *discordgo.MessageEmbed {
	return discord.CreateEmbed(&discord.EmbedData{
		Title:       title,
		Description: description,
		Color:       m.Config.Color,
		Footer:      discord.Footer{Text: m.Config.Footer},
	})
}

func (m *GeneralCog) help(ctx *command.Context) error {
	if name := ctx.Arg(0); name != "" {
		cmd := ctx.Router.Lookup(name)
		if cmd == nil {
			_, err := ctx.Send(fmt.Sprintf("No command called `%s` found.", name))
			return err
		}
		_, err := ctx.SendEmbed(m.embed("📖 "+cmd.Name, commandDetails(m.prefix, cmd)))
		return err
	}

	var b strings.Builder
	for _, cmd := range ctx.Router.Commands() {
		if cmd.OwnerOnly && ctx.Author().ID != ctx.Router.OwnerID {
			continue
		}
		fmt.Fprintf(&b, "`%s%s` %s\n", m.prefix, cmd.Name, cmd.Description)
	}
	_, err := ctx.SendEmbed(m.embed("📖 Commands", b.String()))
	return err
}

func commandDetails(prefix string, cmd *command.Command) string {
	var b strings.Builder
	usage := strings.TrimSpace(prefix + cmd.Name + " " + cmd.Signature())
	fmt.Fprintf(&b, "%s\nUsage: `%s`", cmd.Description, usage)
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&b, "\nAliases: %s", strings.Join(cmd.Aliases, ", "))
	}
	if cmd.Cooldown != nil {
		fmt.Fprintf(&b, "\nCooldown: %d per %s", cmd.Cooldown.Rate, cmd.Cooldown.Per)
	}
	return b.String()
}

func (m *GeneralCog) ping(ctx *command.Context) error {
	latency := ctx.Session.HeartbeatLatency().Milliseconds()
	_, err := ctx.SendEmbed(m.embed("🏓 Pong!", fmt.Sprintf("Latency: **%dms**", latency)))
	return err
}
