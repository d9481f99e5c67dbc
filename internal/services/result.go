// Package services implements the report façade and mutation services.
// Every operation validates its input, invokes storage, and converts the
// outcome into a uniform result envelope; no error escapes to the caller
// unwrapped.
package services

import (
	"context"
	"errors"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// Result is the uniform envelope returned by every operation:
// {success: true, data} or {success: false, message}.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(data any) Result {
	return Result{Success: true, Data: data}
}

func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

const genericFailureMessage = "something went wrong"

// failForError maps an operation error to a failure envelope. Validation
// messages and not-found messages are surfaced verbatim; anything else is
// an unexpected storage failure that gets logged and replaced with a
// generic message.
func failForError(ctx context.Context, logger *log.Logger, op string, err error, notFoundMessage string) Result {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return Fail(ve.Message)
	case errors.Is(err, core.ErrNotFound):
		if notFoundMessage == "" {
			notFoundMessage = genericFailureMessage
		}
		return Fail(notFoundMessage)
	case errors.Is(err, core.ErrInvalidAmount):
		return Fail("amount must be a positive multiple of 0.01")
	case errors.Is(err, core.ErrDuplicateName):
		return Fail("category name already exists")
	default:
		logger.ErrorContext(ctx, "Operation failed", log.FieldOperation, op, log.FieldError, err)
		return Fail(genericFailureMessage)
	}
}
