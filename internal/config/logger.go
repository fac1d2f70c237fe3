package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnv selects the diagnostics level; collectd records everything an
// exec plugin writes to stderr, so the default is warn.
const LogLevelEnv = "EXEC_MUNIN_LOG_LEVEL"

// NewLogger returns the diagnostics logger. It writes to stderr only: stdout
// carries the PUTVAL stream read by collectd.
func NewLogger() *zap.SugaredLogger {
	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(logLevel(os.Getenv(LogLevelEnv)))
	logCfg.Encoding = "console"
	logCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logCfg.Sampling = nil
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.ErrorOutputPaths = []string{"stderr"}

	return zap.Must(logCfg.Build()).Sugar()
}

func logLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(s)
	if s == "" || err != nil {
		return zapcore.WarnLevel
	}
	return lvl
}
