package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	logger, cfg, dgLogger := Logger, Configuration, discordgo.Logger
	t.Cleanup(func() {
		Logger, Configuration, discordgo.Logger = logger, cfg, dgLogger
	})
}

func TestLoad(t *testing.T) {
	restoreGlobals(t)
	dir := t.TempDir()

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DISCORD_TOKEN=abc123\nBOT_PREFIX=!\n"), 0o644))

	t.Setenv("OWNER_ID", "42")
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_FILE", filepath.Join(dir, "discord.log"))

	err := Load(Options{EnvFile: envFile, DataDir: filepath.Join(dir, "data")})
	require.NoError(t, err)

	assert.Equal(t, "abc123", Configuration.DiscordToken)
	assert.Equal(t, "!", Configuration.BotPrefix)
	assert.Equal(t, "42", Configuration.OwnerID)
	assert.Equal(t, "9999", Configuration.Port)
	assert.Equal(t, filepath.Join(dir, "data"), Configuration.DataDir)
	assert.Equal(t, "cogs", Configuration.CogsDir)
	assert.FileExists(t, filepath.Join(dir, "discord.log"))

	t.Cleanup(func() {
		os.Unsetenv("DISCORD_TOKEN")
		os.Unsetenv("BOT_PREFIX")
	})
}

func TestLoad_MissingEnvFile(t *testing.T) {
	restoreGlobals(t)
	dir := t.TempDir()
	t.Setenv("LOG_FILE", "")

	err := Load(Options{EnvFile: filepath.Join(dir, "nope.env")})
	require.NoError(t, err)
	assert.Equal(t, DefaultPrefix, Configuration.BotPrefix)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	restoreGlobals(t)
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_LEVEL", "loud")

	err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "nope.env")})
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	restoreGlobals(t)
	dir := t.TempDir()
	Configuration = Default()
	Configuration.CogsDir = dir

	data := []byte(`{
		// comments are allowed in cog configs
		Enabled: true,
		Name: 'general',
	}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "general.json5"), data, 0o644))

	var cfg struct {
		Enabled bool
		Name    string
	}
	require.NoError(t, LoadConfig("general.json5", &cfg))
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "general", cfg.Name)

	err := LoadConfig("missing.json5", &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscordgoLoggerFunc(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logFunc := discordgoLoggerFunc(zap.New(core).Sugar())

	logFunc(discordgo.LogError, 0, "failed %s\n", "heartbeat")
	logFunc(discordgo.LogWarning, 0, "slow")
	logFunc(discordgo.LogInformational, 0, "connected")
	logFunc(discordgo.LogDebug, 0, "payload")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "failed heartbeat ", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[3].Level)
}
