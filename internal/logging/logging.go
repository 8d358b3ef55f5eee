package logging

import (
	"go.uber.org/zap"
)

// Logger is the process logger. It discards everything until Init is called,
// so library code and tests can log unconditionally.
var Logger = zap.NewNop().Sugar()

// Init replaces Logger. debug selects the development config; otherwise only
// warnings and errors are emitted.
func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = logger.Sugar()
	return nil
}

// Sync flushes buffered entries. Errors from syncing stderr are ignored.
func Sync() {
	_ = Logger.Sync()
}
