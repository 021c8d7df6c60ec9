package logging

import (
	"go.uber.org/zap"
)

// Logger is the process-wide logger. It is a no-op until InitLogger runs,
// so packages may log from tests without setup.
var Logger = zap.NewNop().Sugar()

// InitLogger builds the console logger. Debug enables development output;
// otherwise only warnings and errors are printed.
func InitLogger(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = logger.Sugar()
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
