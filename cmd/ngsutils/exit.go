package main

import (
	"errors"

	"ngsutils/internal/app"
	"ngsutils/internal/domain"
	"ngsutils/internal/infra/process"
)

type exitError struct {
	code    int
	message string
	silent  bool
}

func (e exitError) Error() string {
	return e.message
}

func exitSilent(code int) error {
	return exitError{code: code, silent: true}
}

// exitFromError maps a dispatch result to the process exit status. A child's
// status is passed through untouched; everything else exits 1.
func exitFromError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, app.ErrUsage) {
		return exitSilent(1)
	}
	if code, ok := process.ExitCode(err); ok {
		return exitSilent(code)
	}
	return exitError{code: 1, message: domain.Message(err)}
}
