package command

import (
	"strings"
	"time"

	"cxbot/internal/discord"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler func(ctx *Context) error

type Param struct {
	Name     string
	Optional bool
	// Greedy consumes the rest of the arguments. Only valid as the last param.
	Greedy bool
}

func (p Param) String() string {
	name := p.Name
	if p.Greedy {
		name += "..."
	}
	if p.Optional {
		return "[" + name + "]"
	}
	return "<" + name + ">"
}

type Command struct {
	Name        string
	Aliases     []string
	Description string
	Params      []Param

	// Permissions the author needs in the invoking channel.
	Permissions int64
	OwnerOnly   bool
	Cooldown    *Cooldown

	Run Handler

	cooldowns *cooldownMapping
}

func (c *Command) Signature() string {
	parts := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " ")
}

// Context is the state of a single command invocation.
type Context struct {
	ID      uuid.UUID
	Session discord.Session
	Message *discordgo.Message
	Router  *Router
	Logger  *zap.SugaredLogger

	Prefix      string
	InvokedWith string
	Command     *Command
	Args        []string
}

func (ctx *Context) GuildID() string {
	return ctx.Message.GuildID
}

func (ctx *Context) ChannelID() string {
	return ctx.Message.ChannelID
}

func (ctx *Context) Author() *discordgo.User {
	return ctx.Message.Author
}

// Arg returns the i-th argument, or "" if it was not supplied.
func (ctx *Context) Arg(i int) string {
	if i < len(ctx.Args) {
		return ctx.Args[i]
	}
	return ""
}

// Rest joins the arguments from i onwards, for greedy params.
func (ctx *Context) Rest(i int) string {
	if i < len(ctx.Args) {
		return strings.Join(ctx.Args[i:], " ")
	}
	return ""
}

func (ctx *Context) Send(content string) (*discordgo.Message, error) {
	return ctx.Session.ChannelMessageSend(ctx.ChannelID(), content)
}

func (ctx *Context) SendEmbed(embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return ctx.Session.ChannelMessageSendComplex(ctx.ChannelID(), &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

// SendEmbedTimed sends embed and deletes it after d.
func (ctx *Context) SendEmbedTimed(embed *discordgo.MessageEmbed, d time.Duration) (*discordgo.Message, error) {
	return discord.SendTimed(ctx.Session, ctx.Logger, ctx.ChannelID(), &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, d)
}
