package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	pio "github.com/hangxie/parquet-tools/io"

	"github.com/studiodesk/gridbrowser/grid"
	"github.com/studiodesk/gridbrowser/model"
	"github.com/studiodesk/gridbrowser/service"
)

// GridOption holds the grid settings shared by every command
type GridOption struct {
	ItemHeight      int    `name:"item-height" default:"48" help:"Row height in pixels for the view API and web UI."`
	ContainerHeight int    `name:"container-height" default:"400" help:"Viewport height in pixels for the view API and web UI."`
	EmptyMessage    string `name:"empty-message" default:"No data available" help:"Text shown when no rows match."`
	KeyField        string `name:"key" default:"id" help:"Field that identifies a row, row numbers are used when a dataset lacks it."`
}

func (o GridOption) viewOption() service.ViewOption {
	opt := service.DefaultViewOption()
	opt.ItemHeight = o.ItemHeight
	opt.ContainerHeight = o.ContainerHeight
	if o.EmptyMessage != "" {
		opt.EmptyMessage = o.EmptyMessage
	}
	return opt
}

// validate rejects heights the grid cannot lay out. Unset flags already
// carry their kong defaults, so zero is an explicit bad value.
func (o GridOption) validate() error {
	if o.ItemHeight <= 0 {
		return fmt.Errorf("%w: %d", grid.ErrInvalidItemHeight, o.ItemHeight)
	}
	if o.ContainerHeight <= 0 {
		return fmt.Errorf("%w: %d", grid.ErrInvalidContainerHeight, o.ContainerHeight)
	}
	return nil
}

func (o GridOption) loadOption(readOpt pio.ReadOption) model.LoadOption {
	return model.LoadOption{KeyField: o.KeyField, ReadOption: readOpt}
}

// LogOption routes structured logs
type LogOption struct {
	LogFile  string `name:"log-file" type:"path" help:"Append logs to this file."`
	LogLevel string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Minimum log level (debug, info, warn, error)."`
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidLogLevel, s)
	}
}

// newLogger builds the logger for a command. Without a log file, logs go
// to fallback, and a nil fallback discards them. The returned close
// function is never nil.
func (o LogOption) newLogger(fallback io.Writer) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }

	level, err := parseLevel(o.LogLevel)
	if err != nil {
		return nil, noop, err
	}

	if o.LogFile == "" {
		if fallback == nil {
			return slog.New(slog.DiscardHandler), noop, nil
		}
		return slog.New(slog.NewTextHandler(fallback, &slog.HandlerOptions{Level: level})), noop, nil
	}

	f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open log file %s: %w", o.LogFile, err)
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})), f.Close, nil
}
