package uci

import "errors"

var (
	// ErrUnknownCommand is returned for a command word the session does not
	// recognise.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMalformedCommand is returned when a known command has arguments
	// that cannot be parsed.
	ErrMalformedCommand = errors.New("malformed command")

	// ErrBusy is returned for commands that cannot run while a search is in
	// progress.
	ErrBusy = errors.New("search in progress")
)
