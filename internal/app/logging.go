package app

import (
	"go.uber.org/zap"
)

// NewLogger returns the logger from the caller's Logging bundle.
func NewLogger(opts Options) *zap.Logger {
	if opts.Logging.Logger == nil {
		return zap.NewNop()
	}
	return opts.Logging.Logger
}
