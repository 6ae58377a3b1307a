// Package errhandler turns command errors into replies for the user.
package errhandler

import (
	"fmt"
	"time"

	"cxbot/internal/access"
	"cxbot/internal/command"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

const (
	ColorRed = 0xE74C3C

	cooldownNoticeTTL = 5 * time.Second
)

type Handler struct {
	// Prefix is shown in usage hints.
	Prefix string
}

func New(prefix string) *Handler {
	return &Handler{Prefix: prefix}
}

// Handle is a command.ErrorHandler.
func (h *Handler) Handle(ctx *command.Context, err error) {
	var (
		cooldown *command.CooldownError
		perms    *command.MissingPermissionsError
		argument *command.MissingArgumentError
		check    *command.CheckFailure
	)

	switch {
	case errors.As(err, &cooldown):
		h.reply(ctx, cooldownEmbed(cooldown.RetryAfter), cooldownNoticeTTL)

	case errors.As(err, &perms):
		h.reply(ctx, &discordgo.MessageEmbed{
			Title:       "❌ Permission Denied",
			Description: "You don't have permission to use this command.",
			Color:       ColorRed,
		}, 0)

	case errors.As(err, &argument):
		h.reply(ctx, &discordgo.MessageEmbed{
			Title: "⚠️ Missing Argument",
			Description: fmt.Sprintf(
				"You are missing a required argument.\nUsage: `%s%s %s`",
				h.Prefix, ctx.Command.Name, ctx.Command.Signature(),
			),
			Color: ColorRed,
		}, 0)

	case errors.Is(err, command.ErrCommandNotFound):
		// unknown commands are ignored

	case errors.As(err, &check) && expectedRejection(check.Err):
		ctx.Logger.Infow("Command check failed", "command", commandName(ctx), "check", check.Check, "reason", check.Err)

	default:
		ctx.Logger.Errorw(
			fmt.Sprintf("Ignoring exception in command %s", commandName(ctx)),
			"error", err,
			"errorVerbose", fmt.Sprintf("%+v", err),
		)
	}
}

// cooldownEmbed shows the whole seconds of d within a day, the way a
// timedelta's seconds field reads.
func cooldownEmbed(d time.Duration) *discordgo.MessageEmbed {
	seconds := int64(d/time.Second) % (24 * 60 * 60)
	return &discordgo.MessageEmbed{
		Title:       "⏳ Command on Cooldown",
		Description: fmt.Sprintf("Please try again in **%ds**.", seconds),
		Color:       ColorRed,
	}
}

func (h *Handler) reply(ctx *command.Context, embed *discordgo.MessageEmbed, ttl time.Duration) {
	var err error
	if ttl > 0 {
		_, err = ctx.SendEmbedTimed(embed, ttl)
	} else {
		_, err = ctx.SendEmbed(embed)
	}
	if err != nil {
		ctx.Logger.Warnw("Failed to send error reply", "title", embed.Title, "error", err)
	}
}

func expectedRejection(err error) bool {
	return errors.Is(err, command.ErrNoPrivateMessage) ||
		errors.Is(err, command.ErrNotOwner) ||
		errors.Is(err, access.ErrBlacklisted)
}

func commandName(ctx *command.Context) string {
	if ctx.Command == nil {
		return "None"
	}
	return ctx.Command.Name
}
