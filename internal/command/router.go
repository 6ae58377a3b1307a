// Package command routes prefixed chat messages to registered commands.
package command

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cxbot/internal/discord"
	"cxbot/internal/prefix"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PrefixFunc returns the prefixes accepted for a message. guildID is empty
// in direct messages.
type PrefixFunc func(authorID, guildID string) []string

// Check runs before every command. A non-nil error rejects the invocation.
type Check func(ctx *Context) error

type ErrorHandler func(ctx *Context, err error)

type namedCheck struct {
	name  string
	check Check
}

type Router struct {
	Session         discord.Session
	Prefixes        PrefixFunc
	OwnerID         string
	CaseInsensitive bool
	OnError         ErrorHandler
	Logger          *zap.SugaredLogger

	// Now defaults to time.Now. Cooldowns are measured against it.
	Now func() time.Time

	mu       sync.RWMutex
	commands map[string]*Command
	ordered  []*Command
	checks   []namedCheck
}

func NewRouter(session discord.Session, prefixes PrefixFunc, logger *zap.SugaredLogger) *Router {
	return &Router{
		Session:         session,
		Prefixes:        prefixes,
		CaseInsensitive: true,
		Logger:          logger,
		commands:        map[string]*Command{},
	}
}

func (r *Router) key(name string) string {
	if r.CaseInsensitive {
		return strings.ToLower(name)
	}
	return name
}

// Register adds commands. Names and aliases must be unique.
func (r *Router) Register(cmds ...*Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cmd := range cmds {
		if cmd.Run == nil {
			return errors.Errorf("command %s has no handler", cmd.Name)
		}
		names := append([]string{cmd.Name}, cmd.Aliases...)
		for _, name := range names {
			if _, exists := r.commands[r.key(name)]; exists {
				return errors.Errorf("command or alias %s is already registered", name)
			}
		}
		for _, name := range names {
			r.commands[r.key(name)] = cmd
		}
		if cmd.Cooldown != nil {
			cmd.cooldowns = newCooldownMapping(*cmd.Cooldown)
		}
		r.ordered = append(r.ordered, cmd)
	}
	return nil
}

// AddCheck registers a global check. Checks run in the order they are added.
func (r *Router) AddCheck(name string, check Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

func (r *Router) Lookup(name string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[r.key(name)]
}

// Commands returns the registered commands sorted by name.
func (r *Router) Commands() []*Command {
	r.mu.RLock()
	cmds := append([]*Command(nil), r.ordered...)
	r.mu.RUnlock()

	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name < cmds[j].Name
	})
	return cmds
}

// HandleMessageCreate is registered with discordgo.
func (r *Router) HandleMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	r.Handle(m.Message)
}

func (r *Router) Handle(m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}

	prefixes := r.Prefixes(m.Author.ID, m.GuildID)
	matched, rest, ok := prefix.Match(m.Content, prefixes, r.CaseInsensitive)
	if !ok {
		return
	}

	args := splitArgs(rest)
	if len(args) == 0 {
		return
	}

	ctx := &Context{
		ID:          uuid.New(),
		Session:     r.Session,
		Message:     m,
		Router:      r,
		Prefix:      matched,
		InvokedWith: args[0],
		Args:        args[1:],
	}
	ctx.Logger = r.logger().With("invocation", ctx.ID.String(), "author", m.Author.ID, "guild", m.GuildID)

	ctx.Command = r.Lookup(args[0])
	if ctx.Command == nil {
		r.dispatchError(ctx, ErrCommandNotFound)
		return
	}

	if err := r.invoke(ctx); err != nil {
		r.dispatchError(ctx, err)
	}
}

func (r *Router) invoke(ctx *Context) error {
	cmd := ctx.Command

	r.mu.RLock()
	checks := append([]namedCheck(nil), r.checks...)
	r.mu.RUnlock()

	for _, c := range checks {
		if err := c.check(ctx); err != nil {
			return &CheckFailure{Check: c.name, Err: err}
		}
	}

	if cmd.OwnerOnly && ctx.Author().ID != r.OwnerID {
		return &CheckFailure{Check: "owner", Err: ErrNotOwner}
	}

	if cmd.Permissions != 0 && ctx.GuildID() != "" {
		perms, err := r.Session.UserChannelPermissions(ctx.Author().ID, ctx.ChannelID())
		if err != nil {
			return errors.Wrap(err, "fetching author permissions")
		}
		if missing := discord.MissingPermissions(cmd.Permissions, perms); len(missing) > 0 {
			return &MissingPermissionsError{Missing: missing}
		}
	}

	if cmd.cooldowns != nil {
		if retry := cmd.cooldowns.update(ctx.Author().ID, r.now()); retry > 0 {
			return &CooldownError{Cooldown: cmd.cooldowns.cooldown, RetryAfter: retry}
		}
	}

	for i, p := range cmd.Params {
		if !p.Optional && i >= len(ctx.Args) {
			return &MissingArgumentError{Param: p}
		}
	}

	return run(ctx)
}

func run(ctx *Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &InvokeError{Command: ctx.Command.Name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	if err := ctx.Command.Run(ctx); err != nil {
		return &InvokeError{Command: ctx.Command.Name, Err: err}
	}
	return nil
}

func (r *Router) dispatchError(ctx *Context, err error) {
	if r.OnError != nil {
		r.OnError(ctx, err)
		return
	}
	if !errors.Is(err, ErrCommandNotFound) {
		ctx.Logger.Errorw("Unhandled command error", "error", err)
	}
}

func (r *Router) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Router) logger() *zap.SugaredLogger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop().Sugar()
}

// escapeArgs makes go-shellwords treat chat text literally outside of quotes.
// Shell operators would end parsing early, and '<' appears in every mention.
// Backslashes are doubled everywhere except in single quotes, where they are
// already literal.
func escapeArgs(s string) string {
	var b strings.Builder
	var single, double bool
	for _, r := range s {
		switch {
		case single:
			if r == '\'' {
				single = false
			}
		case double:
			switch r {
			case '"':
				double = false
			case '\\':
				b.WriteByte('\\')
			}
		default:
			switch r {
			case '\'':
				single = true
			case '"':
				double = true
			case '\\', ';', '&', '|', '<', '>', '(', ')', '`':
				b.WriteByte('\\')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitArgs(s string) []string {
	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false

	args, err := parser.Parse(escapeArgs(s))
	if err != nil {
		// unbalanced quotes, e.g. an apostrophe in plain chat
		return strings.Fields(s)
	}
	return args
}
