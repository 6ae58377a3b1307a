package cog

import (
	"time"

	"cxbot/internal/command"
	"cxbot/internal/config"
	"cxbot/internal/discord"
	"cxbot/internal/store"

	"go.uber.org/zap"
)

type Cog interface {
	Name() string
	Init(env *Env) error
}

// Env is what a cog gets to work with during Init.
type Env struct {
	Session  discord.Session
	Router   *command.Router
	Store    *store.Store
	Prefixes command.PrefixFunc
	Logger   *zap.SugaredLogger

	// Prefix is the default prefix, used in help and usage text.
	Prefix string

	// ConfigPath is the cog's json5 file.
	ConfigPath string

	Now func() time.Time
}

// Config decodes the cog's json5 file into v.
func (e *Env) Config(v any) error {
	return config.LoadConfigFile(e.ConfigPath, v)
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
