package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to categorised command errors.
const (
	CodeValidation     = "COMMAND_VALIDATION_FAILED"
	CodeCanceled       = "COMMAND_CONTEXT_CANCELED"
	CodeTimeout        = "COMMAND_CONTEXT_TIMEOUT"
	CodeContext        = "COMMAND_CONTEXT_ERROR"
	CodeExecuteFailed  = "COMMAND_EXECUTION_FAILED"
	CodeServiceMissing = "COMMAND_SERVICE_UNAVAILABLE"
)

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(CodeValidation)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(CodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(CodeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(CodeContext)
	}
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(CodeExecuteFailed)
}

// ServiceUnavailable reports a handler invoked without its backing service.
func ServiceUnavailable(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command service unavailable").
		WithTextCode(CodeServiceMissing)
}
