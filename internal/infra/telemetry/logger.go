package telemetry

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logging bundles the root logger with its adjustable level. The level is
// raised or lowered once configuration has been read.
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// NewLogging builds a console logger writing to w (stderr when nil).
func NewLogging(level string, w io.Writer) (Logging, error) {
	if w == nil {
		w = os.Stderr
	}
	atomic := zap.NewAtomicLevel()
	if level != "" {
		if err := atomic.UnmarshalText([]byte(level)); err != nil {
			return Logging{}, err
		}
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(zapcore.AddSync(w)), atomic)

	return Logging{
		Logger: zap.New(core).Named("ngsutils"),
		Level:  atomic,
	}, nil
}

// SetLevel applies a textual level such as "debug" or "warn".
func (l Logging) SetLevel(level string) error {
	return l.Level.UnmarshalText([]byte(level))
}
