// Package logging provides the structured logger of the steptrace tools.
//
// Trace text never goes through this logger; it is written to the tracer
// sink. Log records go to standard error so both can be redirected apart.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the tool logger. The shower runner takes the embedded
// *zap.Logger.
type Logger struct {
	*zap.Logger
}

// Config selects the level and the record format. Development mode prints
// colored console lines; otherwise records are JSON.
type Config struct {
	Level       string
	Development bool
}

// New builds a logger that writes to standard error.
func New(cfg Config) (*Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.CallerKey = zapcore.OmitKey
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.Sampling = nil

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: logger}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Worker returns a logger whose records carry the worker index.
func (l *Logger) Worker(id int) *Logger {
	return &Logger{Logger: l.With(zap.Int("worker", id))}
}
