package config

import (
	"go.uber.org/zap/zapcore"

	srvErrors "github.com/tupyy/expsum/pkg/errors"
)

func zapLevel(level string) (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return l, srvErrors.NewConfigurationError("log-level", err.Error())
	}
	return l, nil
}

// Level returns the zap level of LogLevel, or info when it does not parse.
func (c *Configuration) Level() zapcore.Level {
	l, err := zapLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
