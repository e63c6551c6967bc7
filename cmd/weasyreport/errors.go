package main

import "errors"

// CLI sentinel errors.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoBody         = errors.New("no body files given")
	ErrReadBody       = errors.New("failed to read body")
	ErrWritePDF       = errors.New("failed to write PDF")
	ErrOpenStore      = errors.New("failed to open parameter store")
)
