package cmd

import (
	pio "github.com/hangxie/parquet-tools/io"

	"github.com/studiodesk/gridbrowser/service"
)

// WebUICmd is a kong command for serving Web UI
type WebUICmd struct {
	URIs []string `arg:"" name:"uri" predictor:"file" help:"URIs of dataset files (JSON, YAML, CSV, Parquet or SQLite)."`
	Addr string   `short:"a" default:":8080" help:"Address to listen on (default :8080)."`
	pio.ReadOption
	GridOption
	LogOption
}

// Run starts the Web UI server
func (w WebUICmd) Run() error {
	svc, closeLog, err := newService(w.URIs, w.ReadOption, w.GridOption, w.LogOption)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	// Start the web UI server with HTML interface
	return service.StartWebUIServer(svc, w.Addr)
}
