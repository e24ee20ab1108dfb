// Package logging builds the process logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Prashu2024/form-builder-backend/internal/gelf"
)

const serviceName = "form-builder-backend"

type Options struct {
	Level    string // debug, info, warn, error
	Format   string // json or console
	GelfAddr string
}

// New returns a logger writing to stderr and, when GelfAddr is set, also to
// a Graylog UDP input. The returned func flushes and releases both.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = level
	switch opts.Format {
	case "", "json":
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = level
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	cleanup := func() { _ = logger.Sync() }

	if opts.GelfAddr == "" {
		return logger, cleanup, nil
	}

	w, err := gelf.New(opts.GelfAddr, serviceName)
	if err != nil {
		logger.Warn("GELF init failed", zap.String("addr", opts.GelfAddr), zap.Error(err))
		return logger, cleanup, nil
	}
	gelfCore := zapcore.NewCore(zapcore.NewJSONEncoder(gelfEncoderConfig()), w, level)
	logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, gelfCore)
	}))
	logger.Info("GELF logging enabled", zap.String("addr", opts.GelfAddr))
	return logger, func() {
		_ = logger.Sync()
		w.Close()
	}, nil
}

func gelfEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:       gelf.LevelKey,
		TimeKey:        gelf.TimeKey,
		MessageKey:     gelf.MessageKey,
		StacktraceKey:  gelf.StackKey,
		NameKey:        "logger",
		CallerKey:      "caller",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.EpochTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
