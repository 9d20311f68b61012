package cmd

import "errors"

var (
	// ErrInvalidLogLevel is returned for an unknown --log-level value
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrNoDatasets is returned when a command is started without any dataset
	ErrNoDatasets = errors.New("no datasets given")
)
