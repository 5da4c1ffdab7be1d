package main

import (
	"errors"
	"fmt"
	"os"

	"ngsutils/internal/domain"
	"ngsutils/internal/infra/telemetry"
)

func main() {
	logging, err := telemetry.NewLogging(domain.DefaultLogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	root := newRootCommand(rootOptions{
		invokedPath: os.Args[0],
		args:        os.Args[1:],
		logging:     logging,
	})
	err = root.Execute()
	_ = logging.Logger.Sync()
	if err != nil {
		var exitErr exitError
		if errors.As(err, &exitErr) {
			if !exitErr.silent && exitErr.message != "" {
				fmt.Fprintln(os.Stderr, exitErr.message)
			}
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
