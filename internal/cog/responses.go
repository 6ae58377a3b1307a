package cog

import (
	"sort"

	"cxbot/internal/command"
	"cxbot/internal/discord"
)

func init() {
	Register("responses", func() Cog { return &ResponsesCog{} })
}

type ResponseData struct {
	Enabled         bool                `json:"Enabled"`
	Description     string              `json:"Description"`
	Aliases         []string            `json:"Aliases"`
	AllowedChannels map[string]string   `json:"Allowed_channels"` // Allowed channels (name and ID)
	Response        discord.MessageData `json:"Response"`
}

type ResponsesConfig struct {
	Enabled  bool                    `json:"Enabled"`
	Commands map[string]ResponseData `json:"Commands"`
}

// ResponsesCog turns canned replies from its config file into commands.
type ResponsesCog struct {
	Config *ResponsesConfig
}

func (m *ResponsesCog) Name() string {
	return "ResponsesCog"
}

func (m *ResponsesCog) Init(env *Env) error {
	var cfg ResponsesConfig
	if err := env.Config(&cfg); err != nil {
		return err
	}
	m.Config = &cfg

	if !cfg.Enabled {
		env.Logger.Infoln("Response commands disabled in configs")
		return nil
	}

	names := make([]string, 0, len(cfg.Commands))
	for name := range cfg.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		data := cfg.Commands[name]
		if !data.Enabled {
			continue
		}

		err := env.Router.Register(&command.Command{
			Name:        name,
			Aliases:     data.Aliases,
			Description: data.Description,
			Run:         m.respond(data),
		})
		if err != nil {
			env.Logger.Errorf("Failed to register command '%s': %v", name, err)
			return err
		}
		env.Logger.Infoln("Successfully registered command: ", name)
	}

	return nil
}

func (m *ResponsesCog) respond(data ResponseData) command.Handler {
	return func(ctx *command.Context) error {
		if !isChannelAllowed(ctx.ChannelID(), data.AllowedChannels) {
			_, err := ctx.Send("This command is not allowed in this channel.")
			return err
		}
		_, err := ctx.Session.ChannelMessageSendComplex(ctx.ChannelID(), discord.CreateMessageSend(data.Response))
		return err
	}
}

func isChannelAllowed(channelID string, allowedChannels map[string]string) bool {
	if len(allowedChannels) == 0 {
		return true
	}

	for _, allowedID := range allowedChannels {
		if allowedID == channelID {
			return true
		}
	}
	return false
}
