package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewLogger builds a production logger writing to stderr and, when file is set,
// to a log file that is truncated first.
func NewLogger(level, file string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if file != "" {
		if err := os.WriteFile(file, nil, 0o644); err != nil {
			return nil, errors.Wrap(err, "truncating log file")
		}
		cfg.OutputPaths = append(cfg.OutputPaths, file)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return logger.Sugar(), nil
}

// RouteDiscordgoLogs sends discordgo's internal log output through logger.
func RouteDiscordgoLogs(logger *zap.SugaredLogger) {
	discordgo.Logger = discordgoLoggerFunc(logger.Named("discordgo"))
}

func discordgoLoggerFunc(logger *zap.SugaredLogger) func(msgL, caller int, format string, a ...interface{}) {
	return func(msgL, _ int, format string, a ...interface{}) {
		msg := strings.ReplaceAll(fmt.Sprintf(format, a...), "\n", " ")
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg)
		case discordgo.LogWarning:
			logger.Warn(msg)
		case discordgo.LogDebug:
			logger.Debug(msg)
		default:
			logger.Info(msg)
		}
	}
}
