package bot

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cxbot/internal/access"
	"cxbot/internal/cog"
	"cxbot/internal/command"
	"cxbot/internal/config"
	"cxbot/internal/discord"
	"cxbot/internal/errhandler"
	"cxbot/internal/keepalive"
	"cxbot/internal/prefix"
	"cxbot/internal/store"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrMissingToken = errors.New("DISCORD_TOKEN not found in environment variables")

type Bot struct {
	Session   discord.Session
	Store     *store.Store
	Resolver  *prefix.Resolver
	Router    *command.Router
	KeepAlive *keepalive.Server

	config *config.BotConfig
	logger *zap.SugaredLogger
}

// New wires the prefix resolver, global checks and error handler around
// session. Cogs are loaded separately with LoadCogs.
func New(session discord.Session, cfg *config.BotConfig, logger *zap.SugaredLogger) *Bot {
	b := &Bot{
		Session: session,
		Store:   store.New(cfg.DataDir),
		config:  cfg,
		logger:  logger,
	}
	b.Store.Logger = logger.Named("store")

	b.Resolver = &prefix.Resolver{
		Store:   b.Store,
		Default: cfg.BotPrefix,
		OwnerID: cfg.OwnerID,
		Logger:  logger.Named("prefix"),
	}

	b.Router = command.NewRouter(session, b.Resolver.Resolve, logger.Named("commands"))
	b.Router.OwnerID = cfg.OwnerID
	b.Router.OnError = errhandler.New(cfg.BotPrefix).Handle
	access.Install(b.Router, b.Store, cfg.SupportURL)

	return b
}

func (b *Bot) LoadCogs(dir string) ([]string, error) {
	b.logger.Infoln("Loading cogs ...")
	return cog.LoadCogs(dir, cog.Env{
		Session:  b.Session,
		Router:   b.Router,
		Store:    b.Store,
		Prefixes: b.Resolver.Resolve,
		Logger:   b.logger.Named("cog"),
		Prefix:   b.config.BotPrefix,
	})
}

func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.ready(r.User)
}

func (b *Bot) handleDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	if b.KeepAlive != nil {
		b.KeepAlive.SetReady(false)
	}
}

func (b *Bot) ready(user *discordgo.User) {
	if user != nil {
		b.logger.Infof("✅ Logged in as %s (%s)", user.Username, user.ID)
	}
	b.logger.Infoln("🌐 Connected to Discord API successfully!")

	if err := b.Store.EnsureDataFiles(); err != nil {
		b.logger.Errorw("Failed to prepare data files", "error", err)
	}

	if err := b.Session.UpdateGameStatus(0, b.config.BotStatus); err != nil {
		b.logger.Warnw("Failed to set presence", "error", err)
	}

	if b.KeepAlive != nil {
		b.KeepAlive.SetReady(true)
	}
}

// Run loads configuration, starts the keep-alive server and connects to
// Discord. It blocks until ctx is cancelled.
func Run(ctx context.Context, opts config.Options) error {
	if err := config.Load(opts); err != nil {
		return err
	}
	cfg := config.Configuration
	logger := config.Logger
	defer logger.Sync()

	if cfg.DiscordToken == "" {
		printMissingToken(os.Stdout)
		return ErrMissingToken
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keepAlive := keepalive.New(cfg.Port, logger.Named("keepalive"))
	keepAliveErr := make(chan error, 1)
	go func() {
		keepAliveErr <- keepAlive.Run(ctx)
	}()

	session, err := discord.New(cfg.DiscordToken)
	if err != nil {
		return err
	}

	b := New(session, cfg, logger)
	b.KeepAlive = keepAlive

	if _, err := b.LoadCogs(cfg.CogsDir); err != nil {
		return err
	}

	session.AddHandler(b.Router.HandleMessageCreate)
	session.AddHandler(b.handleReady)
	session.AddHandler(b.handleDisconnect)

	if err := session.Open(); err != nil {
		return errors.Wrap(err, "opening discord session")
	}
	defer session.Close()

	logger.Infoln("Bot is running.")
	fmt.Println("Bot is running")

	for {
		select {
		case <-ctx.Done():
			logger.Infoln("Shutting down")
			waitKeepAlive(keepAliveErr, logger)
			return nil
		case err := <-keepAliveErr:
			// Not fatal: the bot keeps serving commands without the endpoint.
			if err != nil {
				logger.Errorw("Keep-alive server stopped", "error", err)
			}
			keepAliveErr = nil
		}
	}
}

func waitKeepAlive(errCh <-chan error, logger *zap.SugaredLogger) {
	if errCh == nil {
		return
	}
	select {
	case err := <-errCh:
		if err != nil {
			logger.Warnw("Keep-alive shutdown failed", "error", err)
		}
	case <-time.After(10 * time.Second):
		logger.Warnln("Timed out waiting for keep-alive shutdown")
	}
}

func printMissingToken(w io.Writer) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "❌ CRITICAL: DISCORD_TOKEN not found in environment variables.")
	fmt.Fprintln(w, "➡️ Create a file named `.env` and add this line:")
	fmt.Fprintln(w, "DISCORD_TOKEN=YOUR_TOKEN_HERE")
	fmt.Fprintln(w, rule)
}
