package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/studiodesk/gridbrowser/cmd"
)

var cli struct {
	TUI                cmd.TUICmd                   `cmd:"" default:"withargs" help:"Browse datasets in the terminal."`
	Serve              cmd.ServeCmd                 `cmd:"" help:"Serve datasets over an HTTP API."`
	WebUI              cmd.WebUICmd                 `cmd:"" name:"webui" help:"Serve datasets in a web UI."`
	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions."`
}

func main() {
	parser := kong.Must(
		&cli,
		kong.Name("gridbrowser"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Configuration(kong.JSON, "~/.config/gridbrowser/config.json", "./gridbrowser.json"),
		kong.Description("Sort, filter and select rows of JSON, YAML, CSV, Parquet and SQLite datasets in a virtualized grid."),
	)
	kongplete.Complete(parser, kongplete.WithPredictor("file", complete.PredictFiles("*")))

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run())
}
