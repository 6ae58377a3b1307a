package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/zap"
)

// Logger is replaced by Load. The no-op default keeps packages usable in tests.
var Logger = zap.NewNop().Sugar()

const (
	DefaultOwnerID = "1429162914543304794"
	DefaultPrefix  = "cx "
)

type BotConfig struct {
	BotStatus string
	BotPrefix string
	OwnerID   string

	DiscordToken string

	DataDir    string
	CogsDir    string
	Port       string
	SupportURL string

	LogFile  string
	LogLevel string
}

var Configuration = Default()

// Options override values from the environment. Empty fields are ignored.
type Options struct {
	EnvFile string
	DataDir string
	CogsDir string
}

func Default() *BotConfig {
	return &BotConfig{
		BotStatus:  "cx help | Managing the Economy",
		BotPrefix:  DefaultPrefix,
		OwnerID:    DefaultOwnerID,
		DataDir:    "data",
		CogsDir:    "cogs",
		Port:       "8080",
		SupportURL: "https://discord.gg/code-verse",
		LogFile:    "discord.log",
		LogLevel:   "info",
	}
}

func Load(opts Options) error {
	var envErr error
	if opts.EnvFile != "" {
		envErr = godotenv.Load(opts.EnvFile)
	} else {
		envErr = godotenv.Load()
	}

	cfg := Default()
	lookup(&cfg.DiscordToken, "DISCORD_TOKEN")
	lookup(&cfg.OwnerID, "OWNER_ID")
	lookup(&cfg.BotPrefix, "BOT_PREFIX")
	lookup(&cfg.BotStatus, "BOT_STATUS")
	lookup(&cfg.DataDir, "DATA_DIR")
	lookup(&cfg.CogsDir, "COGS_DIR")
	lookup(&cfg.Port, "PORT")
	lookup(&cfg.SupportURL, "SUPPORT_URL")
	lookup(&cfg.LogFile, "LOG_FILE")
	lookup(&cfg.LogLevel, "LOG_LEVEL")

	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.CogsDir != "" {
		cfg.CogsDir = opts.CogsDir
	}

	logger, err := NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	Logger = logger
	Configuration = cfg
	RouteDiscordgoLogs(Logger)

	if envErr != nil {
		Logger.Warnln("Couldnt load .env file, falling back on environment variables:", envErr)
	}
	return nil
}

func lookup(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

// LoadConfig reads a json5 file from the cogs directory into v.
func LoadConfig(name string, v any) error {
	return LoadConfigFile(filepath.Join(Configuration.CogsDir, name), v)
}

func LoadConfigFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading config %s", filepath.Base(path))
	}
	if err := json5.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parsing config %s", filepath.Base(path))
	}
	return nil
}
