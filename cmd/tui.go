package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	pio "github.com/hangxie/parquet-tools/io"

	"github.com/studiodesk/gridbrowser/client"
	"github.com/studiodesk/gridbrowser/model"
	"github.com/studiodesk/gridbrowser/service"
)

// TUICmd is a kong command for browsing datasets in the terminal
type TUICmd struct {
	URIs []string `arg:"" name:"uri" predictor:"file" help:"URIs of dataset files (JSON, YAML, CSV, Parquet or SQLite)."`
	pio.ReadOption
	GridOption
	LogOption
}

// serverResult contains the result of HTTP server startup
type serverResult struct {
	serverURL string
	server    *http.Server
	err       error
}

// startHTTPServer loads the datasets and starts an embedded HTTP server for them.
// It runs in a goroutine and sends the result (server URL and instance, or error) to resultChan
func startHTTPServer(ctx context.Context, uris []string, loadOpt model.LoadOption, viewOpt service.ViewOption, logger *slog.Logger, resultChan chan<- serverResult) {
	send := func(res serverResult) bool {
		select {
		case <-ctx.Done():
			return false
		case resultChan <- res:
			return true
		}
	}

	svc, err := service.LoadDatasetService(uris, loadOpt, viewOpt, logger)
	if err != nil {
		send(serverResult{err: err})
		return
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		send(serverResult{err: fmt.Errorf("failed to find available port: %w", err)})
		return
	}
	addr := listener.Addr().String()
	serverURL := "http://" + addr

	server := &http.Server{
		Handler:           service.CreateRouter(svc, true),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("embedded server stopped", "addr", addr, "error", err)
		}
	}()

	if err := waitReady(ctx, client.NewGridClient(serverURL)); err != nil {
		_ = server.Shutdown(context.Background())
		send(serverResult{err: err})
		return
	}
	logger.Debug("embedded server ready", "url", serverURL, "datasets", svc.Catalog().Len())

	if !send(serverResult{serverURL: serverURL, server: server}) {
		_ = server.Shutdown(context.Background())
	}
}

// waitReady polls the dataset list until the server answers
func waitReady(ctx context.Context, c *client.GridClient) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	var err error
	for range 50 {
		if _, err = c.ListDatasets(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return fmt.Errorf("embedded server not ready: %w", err)
}

// Run loads the datasets and runs the terminal UI until the user quits
func (b TUICmd) Run() error {
	if len(b.URIs) == 0 {
		return ErrNoDatasets
	}
	if err := b.GridOption.validate(); err != nil {
		return err
	}
	logger, closeLog, err := b.LogOption.newLogger(nil)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	app := NewTUIApp(b.GridOption, logger)

	// Create a loading modal with cancellation instructions
	modal := tview.NewModal().
		SetText(fmt.Sprintf("Loading datasets...\n%s\n\nPlease wait...\n\nPress ESC or Ctrl+C to cancel", strings.Join(b.URIs, "\n"))).
		SetTextColor(tcell.ColorYellow)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelled := false

	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Key() == tcell.KeyCtrlC {
			cancelled = true
			cancel()
			app.tviewApp.Stop()
			return nil
		}
		return event
	})

	app.pages.AddPage("loading", modal, true, true)
	app.tviewApp.SetRoot(app.pages, true).EnableMouse(true)

	resultChan := make(chan serverResult, 1)
	go startHTTPServer(ctx, b.URIs, b.GridOption.loadOption(b.ReadOption), b.GridOption.viewOption(), logger, resultChan)

	var httpServer *http.Server
	go func() {
		select {
		case <-ctx.Done():
			// User cancelled
			return
		case res := <-resultChan:
			app.tviewApp.QueueUpdateDraw(func() {
				if res.err != nil {
					errorModal := tview.NewModal().
						SetText(fmt.Sprintf("Error loading datasets:\n%v\n\nPress ESC to exit", res.err)).
						SetTextColor(tcell.ColorRed).
						AddButtons([]string{"Exit"}).
						SetDoneFunc(func(buttonIndex int, buttonLabel string) {
							app.tviewApp.Stop()
						})
					app.pages.AddPage(errorPageName, errorModal, true, true)
					app.pages.SwitchToPage(errorPageName)
					return
				}

				// Store server reference for cleanup
				httpServer = res.server

				app.httpClient = client.NewGridClient(res.serverURL)
				app.sources = b.URIs

				app.pages.RemovePage("loading")
				app.showMainView()
				app.pages.AddPage("main", app.mainLayout, true, true)
				app.pages.SwitchToPage("main")
			})
		}
	}()

	err = app.tviewApp.Run()

	// Clean up - shutdown HTTP server
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}

	// If cancelled, return nil (successful cancellation)
	if cancelled {
		return nil
	}

	return err
}
