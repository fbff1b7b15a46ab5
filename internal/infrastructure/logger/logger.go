package logger

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DevMode  bool   `env:"LOG_DEV_MODE" envDefault:"false"`
}

// New builds a zap logger. Dev mode uses the console encoder, otherwise JSON.
func New(cfg *Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
		}
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.DevMode {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zapCfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return log.Named("jobtracker"), nil
}
