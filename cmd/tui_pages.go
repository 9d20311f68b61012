package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/studiodesk/gridbrowser/grid"
	"github.com/studiodesk/gridbrowser/model"
)

const (
	gridPageName   = "grid"
	filterPageName = "filter"
	recordPageName = "record"
	errorPageName  = "error"
)

// gridPage shows one dataset through the grid engine
type gridPage struct {
	app        *TUIApp
	info       model.DatasetInfo
	records    []model.Record
	grid       *recordGrid
	view       *GridView
	headerView *tview.TextView
	statusLine *tview.TextView
	layout     *tview.Flex
	message    string
}

func newGridPage(app *TUIApp, info model.DatasetInfo) (*gridPage, error) {
	g, err := grid.New(info.Columns(), info.KeyFunc(),
		grid.WithItemHeight(1),
		grid.WithEmptyMessage(app.gridOpt.viewOption().EmptyMessage),
		grid.WithLogger(app.logger),
	)
	if err != nil {
		return nil, err
	}
	g.SetLoading(true)

	p := &gridPage{app: app, info: info, grid: g}
	g.SetOnRowClick(func(r model.Record, index int) {
		app.logger.Debug("row clicked", "dataset", info.Name, "index", index, "key", info.KeyFunc()(r))
	}).SetOnRowDoubleClick(func(r model.Record, index int) {
		p.showRecord(r)
	}).SetOnSelectionChange(func(sel grid.Selection[string]) {
		p.message = ""
		app.logger.Debug("selection changed", "dataset", info.Name, "selected", sel.Len())
	})

	p.view = NewGridView(g).
		SetFilterFunc(p.showFilterPrompt).
		SetCopyFunc(p.copySelection).
		SetBackFunc(p.close).
		SetChangedFunc(p.updateStatus)
	p.view.SetBorder(true).
		SetTitle(fmt.Sprintf(" %s ", tview.Escape(info.Name))).
		SetTitleAlign(tview.AlignLeft)

	p.headerView = tview.NewTextView().SetDynamicColors(true)
	p.headerView.SetText(datasetSummary(info))

	p.statusLine = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	p.updateStatus()

	p.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.headerView, 1, 0, false).
		AddItem(p.view, 0, 1, true).
		AddItem(p.statusLine, 2, 0, false)
	return p, nil
}

// setRows hands the loaded records to the grid
func (p *gridPage) setRows(records []model.Record, err error) {
	p.grid.SetLoading(false)
	if err == nil {
		err = p.grid.SetRows(records)
	}
	if err != nil {
		p.message = fmt.Sprintf("[red]Failed to load rows: %s[-]", tview.Escape(err.Error()))
		p.app.logger.Error("failed to load rows", "dataset", p.info.Name, "error", err)
	} else {
		p.records = records
	}
	p.view.Sync()
	p.updateStatus()
}

func (p *gridPage) updateStatus() {
	p.statusLine.SetText(p.statusText())
}

func (p *gridPage) statusText() string {
	var status strings.Builder
	status.WriteString(" " + p.grid.Summary())
	if st, ok := p.grid.Sort(); ok {
		status.WriteString(fmt.Sprintf("  [yellow]Sort:[-] %s %s", tview.Escape(st.Field), p.grid.SortIndicator(st.Field)))
	}
	if filters := p.grid.Filters(); len(filters) > 0 {
		status.WriteString("  [yellow]Filters:[-] " + tview.Escape(formatFilters(filters)))
	}
	if p.message != "" {
		status.WriteString("  " + p.message)
	}
	status.WriteString("\n [yellow]Keys:[-] ESC=back, ↑↓/PgUp/PgDn=scroll, ←→=column, s=sort, /=filter, x=clear filters, space=select, a=all, Enter=open, c=copy")
	return status.String()
}

// showFilterPrompt edits the filter of one column. An empty query removes
// the filter.
func (p *gridPage) showFilterPrompt(field string) {
	col, err := p.grid.Column(field)
	if err != nil || !col.Filterable {
		return
	}

	input := tview.NewInputField().
		SetLabel(fmt.Sprintf("%s: ", tview.Escape(col.Title))).
		SetText(p.grid.Filter(field)).
		SetFieldWidth(0)
	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			p.applyFilter(field, input.GetText())
		case tcell.KeyEscape:
		default:
			return
		}
		p.app.pages.RemovePage(filterPageName)
		p.app.tviewApp.SetFocus(p.view)
	})
	input.SetBorder(true).
		SetTitle(" Filter (Enter=apply, ESC=cancel, empty=clear) ").
		SetTitleAlign(tview.AlignLeft)

	p.app.pages.AddPage(filterPageName, centered(input, 60, 3), true, true)
	p.app.tviewApp.SetFocus(input)
}

func (p *gridPage) applyFilter(field, query string) {
	if err := p.grid.SetFilter(field, query); err != nil {
		p.message = fmt.Sprintf("[red]%s[-]", tview.Escape(err.Error()))
	}
	p.view.Sync()
	p.updateStatus()
}

// selectedRecords returns the selected records in source order, including
// those hidden by the current filters
func (p *gridPage) selectedRecords() []model.Record {
	sel := p.grid.Selection()
	key := p.info.KeyFunc()
	var out []model.Record
	for _, r := range p.records {
		if sel.Has(key(r)) {
			out = append(out, r)
		}
	}
	return out
}

func (p *gridPage) copySelection() {
	records := p.selectedRecords()
	if len(records) == 0 {
		p.message = "[yellow]Nothing selected[-]"
		p.updateStatus()
		return
	}

	text, err := model.FormatTSV(p.info.Fields, records)
	if err == nil {
		err = clipboard.WriteAll(text)
	}
	if err != nil {
		p.message = fmt.Sprintf("[red]Failed to copy: %s[-]", tview.Escape(err.Error()))
	} else {
		p.message = fmt.Sprintf("[green]Copied %d rows to clipboard![-]", len(records))
	}
	p.updateStatus()
}

func (p *gridPage) showRecord(r model.Record) {
	viewer := newRecordViewer(p.app, p.info, p.info.KeyFunc()(r))
	viewer.show()
}

func (p *gridPage) close() {
	p.app.pages.RemovePage(gridPageName)
	if p.app.datasetList != nil {
		p.app.tviewApp.SetFocus(p.app.datasetList)
	}
}
