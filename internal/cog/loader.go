package cog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	configExt = ".json5"

	// emojis.json5 holds shared emoji data for other cogs, not a cog.
	emojisConfig = "emojis" + configExt
)

type Factory func() Cog

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a cog loadable by name. It panics on duplicates, like
// database/sql drivers.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("cog: Register called twice for " + name)
	}
	registry[name] = factory
}

// Registered returns the names of all registered cogs.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// LoadCogs initialises one cog per json5 file in dir. A cog that fails is
// logged and skipped. The names of the loaded cogs are returned.
func LoadCogs(dir string, env Env) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading cogs directory")
	}
	if env.Logger == nil {
		env.Logger = zap.NewNop().Sugar()
	}

	var loaded []string
	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(filename, configExt) || filename == emojisConfig {
			continue
		}

		c, err := initCog(dir, filename, env)
		if err != nil {
			env.Logger.Errorf("❌ Failed to load cog %s: %v", filename, err)
			continue
		}
		env.Logger.Infof("⚙️ Loaded cog: %s", filename)
		loaded = append(loaded, c.Name())
	}
	return loaded, nil
}

func initCog(dir, filename string, env Env) (c Cog, err error) {
	name := strings.TrimSuffix(filename, configExt)
	factory, ok := lookup(name)
	if !ok {
		return nil, errors.Errorf("no cog named %q is registered", name)
	}

	defer func() {
		if p := recover(); p != nil {
			c, err = nil, errors.Errorf("panic during init: %v", p)
		}
	}()

	env.ConfigPath = filepath.Join(dir, filename)
	env.Logger = env.Logger.Named(name)
	c = factory()
	if err := c.Init(&env); err != nil {
		return nil, err
	}
	return c, nil
}
