package logging

import (
	"regexp"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide sugared logger. With an empty
// logfilePath output goes to stderr with colored levels; otherwise log
// lines are appended to the named file.
func NewLogger(logfilePath string, debug bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if logfilePath != "" {
		cfg.OutputPaths = []string{logfilePath}
		cfg.ErrorOutputPaths = []string{logfilePath}
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

var playerIDPattern = regexp.MustCompile(`"player_id" *: *"[^"]*"`)

// Mask hides player ids in message payloads before they are logged.
// Player ids are credentials and must never reach the log stream.
func Mask(data string) string {
	return playerIDPattern.ReplaceAllString(data, `"player_id": "<masked>"`)
}
