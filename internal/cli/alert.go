package cli

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/cart"
)

const defaultAlertTitle = "Error"

// alertError carries an alert whose title differs from the default.
type alertError struct {
	title   string
	message string
	// retry names the command that reloads the failed screen.
	retry string
	err   error
}

func (e *alertError) Error() string {
	return fmt.Sprintf("%s: %s", e.title, e.message)
}

func (e *alertError) Unwrap() error { return e.err }

var errLoginRequired = &alertError{
	title:   "Login required",
	message: "Please sign in first: foodapp login --mobile <number>",
}

func alertf(title, format string, args ...any) error {
	return &alertError{title: title, message: fmt.Sprintf(format, args...)}
}

// withTitle renders err under title, keeping its message.
func withTitle(title string, err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &alertError{title: title, message: api.Message(err, fallback), err: err}
}

// withRetry marks a failed screen load so the alert offers a retry.
func withRetry(err error, fallback, retry string) error {
	if err == nil {
		return nil
	}
	return &alertError{title: defaultAlertTitle, message: api.Message(err, fallback), retry: retry, err: err}
}

// describe maps err onto an alert title, message and retry hint.
func describe(err error) (title, message, retry string) {
	var ae *alertError
	if errors.As(err, &ae) {
		if errors.Is(ae.err, api.ErrUnauthorized) {
			return "Session expired", "Please sign in again: foodapp login --mobile <number>", ""
		}
		return ae.title, ae.message, ae.retry
	}

	var pf *cart.PaymentFailedError
	if errors.As(err, &pf) {
		return pf.Title, pf.Message, ""
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return "Session expired", "Please sign in again: foodapp login --mobile <number>", ""
	}
	return defaultAlertTitle, api.Message(err, err.Error()), ""
}

func (a *App) alert(err error) {
	title, message, retry := describe(err)
	fmt.Fprintf(a.err, "%s: %s\n", title, message)
	if retry != "" {
		fmt.Fprintf(a.err, "Try Again: foodapp %s\n", retry)
	}
	a.log.Debug("command failed", zap.Error(err))
}
