package cmd

import (
	"fmt"
	"os"

	pio "github.com/hangxie/parquet-tools/io"

	"github.com/studiodesk/gridbrowser/service"
)

// ServeCmd is a kong command for serving HTTP API
type ServeCmd struct {
	URIs []string `arg:"" name:"uri" predictor:"file" help:"URIs of dataset files (JSON, YAML, CSV, Parquet or SQLite)."`
	Addr string   `short:"a" default:":8080" help:"Address to listen on (default :8080)."`
	pio.ReadOption
	GridOption
	LogOption
}

// Run starts the HTTP API server
func (s ServeCmd) Run() error {
	svc, closeLog, err := newService(s.URIs, s.ReadOption, s.GridOption, s.LogOption)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	return service.StartServer(svc, s.Addr)
}

// newService loads the datasets of a command and wraps them in a service
// that logs to stderr or the configured log file
func newService(uris []string, readOpt pio.ReadOption, gridOpt GridOption, logOpt LogOption) (*service.DatasetService, func() error, error) {
	noop := func() error { return nil }
	if len(uris) == 0 {
		return nil, noop, ErrNoDatasets
	}
	if err := gridOpt.validate(); err != nil {
		return nil, noop, err
	}

	logger, closeLog, err := logOpt.newLogger(os.Stderr)
	if err != nil {
		return nil, noop, err
	}

	svc, err := service.LoadDatasetService(uris, gridOpt.loadOption(readOpt), gridOpt.viewOption(), logger)
	if err != nil {
		_ = closeLog()
		return nil, noop, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, closeLog, nil
}
