package errutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Responder is the part of a conversation used to report errors
type Responder interface {
	Respond(ctx context.Context, text string) error
}

// Handle logs the error with its goerr values and sends it to Sentry when Sentry is initialized
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	attrs := []any{slog.Any("error", err)}
	var gerr *goerr.Error
	if errors.As(err, &gerr) {
		for k, v := range gerr.Values() {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	ctxlog.From(ctx).Error(msg, attrs...)

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.Clone().CaptureException(err)
	}
}

// Report is the single sink for failures of chat handlers. It handles the error and
// sends a message with the error summary and its stack trace to the conversation.
func Report(ctx context.Context, conv Responder, err error) error {
	if err == nil {
		return nil
	}

	Handle(ctx, "Failed to handle chat request", err)

	if err := conv.Respond(ctx, Format(err)); err != nil {
		reportErr := goerr.Wrap(err, "failed to report error to conversation")
		Handle(ctx, "Failed to report error", reportErr)
		return reportErr
	}
	return nil
}

// Format builds the user facing error message
func Format(err error) string {
	return fmt.Sprintf(":sweat: Woops!  `%s`\n```%+v```", err.Error(), err)
}
