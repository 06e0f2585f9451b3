package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrRetryDeclined is returned by Session.Run when a submission failed and
	// the user chose not to retry.
	ErrRetryDeclined = errors.New("tui: retry declined")
)
