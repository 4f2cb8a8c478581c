package main

import (
	"errors"

	"github.com/scttfrdmn/readstructure-go/internal/config"
	"github.com/scttfrdmn/readstructure-go/pkg/convert"
	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

// Process exit codes. Usage and configuration errors use the sysexits.h
// values.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitInvalidUsage = 64
	ExitConfigError  = 65
)

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var coded *exitError
	if errors.As(err, &coded) {
		return coded.code
	}

	var syntaxErr *readstructure.SyntaxError
	switch {
	case errors.As(err, &syntaxErr),
		errors.Is(err, readstructure.ErrNonTerminalIndefinite),
		errors.Is(err, readstructure.ErrNoSegments):
		return ExitInvalidUsage
	case errors.Is(err, config.ErrInvalid),
		errors.Is(err, convert.ErrInvalidOptions):
		return ExitConfigError
	default:
		return ExitFailure
	}
}
