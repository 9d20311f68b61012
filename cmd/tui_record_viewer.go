package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/studiodesk/gridbrowser/model"
)

// recordViewer shows one record as JSON or YAML
type recordViewer struct {
	app       *TUIApp
	info      model.DatasetInfo
	key       string
	format    model.RecordFormat
	text      string
	textView  *tview.TextView
	titleBar  *tview.TextView
	statusBar *tview.TextView
}

func newRecordViewer(app *TUIApp, info model.DatasetInfo, key string) *recordViewer {
	return &recordViewer{
		app:    app,
		info:   info,
		key:    key,
		format: model.RecordJSON,
		textView: tview.NewTextView().
			SetDynamicColors(true).
			SetScrollable(true).
			SetWordWrap(false),
		titleBar: tview.NewTextView().
			SetDynamicColors(true).
			SetTextAlign(tview.AlignCenter),
		statusBar: tview.NewTextView().
			SetDynamicColors(true).
			SetTextAlign(tview.AlignCenter),
	}
}

func (rv *recordViewer) show() {
	rv.textView.SetBorder(true)
	rv.updateDisplay()

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rv.titleBar, 1, 0, false).
		AddItem(rv.textView, 0, 1, true).
		AddItem(rv.statusBar, 1, 0, false)

	flex.SetBorder(true)
	flex.SetInputCapture(rv.handleInput)

	rv.app.pages.AddPage(recordPageName, flex, true, true)
	rv.app.tviewApp.SetFocus(rv.textView)
}

func (rv *recordViewer) handleInput(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEscape {
		rv.app.pages.RemovePage(recordPageName)
		if front, item := rv.app.pages.GetFrontPage(); front != "" {
			rv.app.tviewApp.SetFocus(item)
		}
		return nil
	}
	if event.Key() == tcell.KeyRune {
		switch event.Rune() {
		case 'v', 'V':
			rv.format = rv.format.Toggle()
			rv.statusBar.SetText("")
			rv.updateDisplay()
			return nil
		case 'c', 'C':
			rv.copyToClipboard()
			return nil
		}
	}
	return event
}

func (rv *recordViewer) copyToClipboard() {
	err := clipboard.WriteAll(rv.text)
	if err != nil {
		rv.statusBar.SetText(fmt.Sprintf("[red]Failed to copy: %s[-]", tview.Escape(err.Error())))
	} else {
		rv.statusBar.SetText(fmt.Sprintf("[green]Copied %s record to clipboard![-]", rv.format))
	}
}

// updateDisplay fetches the record from the HTTP API and renders it
func (rv *recordViewer) updateDisplay() {
	rv.titleBar.SetText(fmt.Sprintf("[yellow]%s / %s (%s) | ESC=close, v=JSON/YAML, c=copy[-]",
		tview.Escape(rv.info.Name), tview.Escape(rv.key), rv.format))

	record, err := rv.app.httpClient.GetRecord(rv.info, rv.key)
	if err != nil {
		rv.setError(fmt.Sprintf("Error fetching record: %v", err))
		return
	}

	text, err := model.FormatRecord(rv.info.Fields, record, rv.format)
	if err != nil {
		rv.setError(fmt.Sprintf("Error formatting record: %v", err))
		return
	}
	rv.text = text
	rv.textView.SetText(highlight(text, strings.ToLower(rv.format.String())))
}

func (rv *recordViewer) setError(msg string) {
	rv.text = msg
	rv.textView.SetText(tview.Escape(msg))
}
