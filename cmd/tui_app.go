package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/studiodesk/gridbrowser/client"
	"github.com/studiodesk/gridbrowser/model"
)

// TUIApp represents the TUI application for browsing datasets
type TUIApp struct {
	tviewApp    *tview.Application
	pages       *tview.Pages
	mainLayout  *tview.Flex
	headerView  *tview.TextView
	datasetList *tview.Table
	statusLine  *tview.TextView
	sources     []string
	datasets    []model.DatasetInfo
	httpClient  *client.GridClient // HTTP client for data access
	gridOpt     GridOption
	logger      *slog.Logger
}

// NewTUIApp creates a new TUIApp instance. A nil logger discards output.
func NewTUIApp(gridOpt GridOption, logger *slog.Logger) *TUIApp {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TUIApp{
		tviewApp: tview.NewApplication(),
		pages:    tview.NewPages(),
		gridOpt:  gridOpt,
		logger:   logger,
	}
}

func (app *TUIApp) showMainView() {
	app.mainLayout = tview.NewFlex().SetDirection(tview.FlexRow)

	app.createHeaderView()
	app.createDatasetList()
	app.createStatusLine()

	headerHeight := app.getHeaderHeight()
	app.mainLayout.
		AddItem(app.headerView, headerHeight, 0, false).
		AddItem(app.datasetList, 0, 1, true).
		AddItem(app.statusLine, 1, 0, false)

	app.mainLayout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			app.tviewApp.Stop()
			return nil
		case tcell.KeyEnter:
			row, _ := app.datasetList.GetSelection()
			if row > 0 { // Skip header row
				app.openDataset(row - 1)
			}
			return nil
		}
		return event
	})
}

func (app *TUIApp) createHeaderView() {
	app.headerView = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	app.headerView.SetBorder(true).
		SetTitle(" Sources ").
		SetTitleAlign(tview.AlignLeft)

	names := make([]string, len(app.sources))
	for i, uri := range app.sources {
		names[i] = tview.Escape(filepath.Base(uri))
	}
	app.headerView.SetText(fmt.Sprintf("[yellow]Files:[-] %s", strings.Join(names, ", ")))
}

func (app *TUIApp) getHeaderHeight() int {
	if app.headerView == nil {
		return 3 // Default fallback
	}

	text := app.headerView.GetText(false)
	lines := strings.Count(text, "\n") + 1

	// Add 2 for top and bottom borders
	return lines + 2
}

func (app *TUIApp) createDatasetList() {
	app.datasetList = tview.NewTable().
		SetBorders(false).
		SetSeparator(tview.Borders.Vertical).
		SetSelectable(true, false).
		SetFixed(1, 0)

	app.datasetList.SetBorder(true).
		SetTitle(" Datasets (↑↓ to navigate, Enter to open) ").
		SetTitleAlign(tview.AlignLeft)

	datasets, err := app.httpClient.ListDatasets()
	if err != nil {
		cell := tview.NewTableCell(fmt.Sprintf("[red]Error loading datasets: %v[-]", tview.Escape(err.Error()))).
			SetTextColor(tcell.ColorRed).
			SetAlign(tview.AlignLeft).
			SetExpansion(1)
		app.datasetList.SetCell(1, 0, cell)
		return
	}
	app.datasets = datasets

	headers := []string{"Name", "Records", "Fields", "Key", "Source", "Size"}
	for colIdx, header := range headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tcell.ColorYellow).
			SetAlign(tview.AlignCenter).
			SetSelectable(false)
		app.datasetList.SetCell(0, colIdx, cell)
	}

	for rowIdx, info := range datasets {
		cells := []*tview.TableCell{
			tview.NewTableCell(tview.Escape(info.Name)).SetAlign(tview.AlignLeft),
			tview.NewTableCell(fmt.Sprintf("%d", info.NumRecords)).SetAlign(tview.AlignRight),
			tview.NewTableCell(fmt.Sprintf("%d", len(info.Fields))).SetAlign(tview.AlignRight),
			tview.NewTableCell(tview.Escape(info.KeyField)).SetAlign(tview.AlignLeft),
			tview.NewTableCell(fmt.Sprintf("%s (%s)", tview.Escape(filepath.Base(info.Source.URI)), info.Source.Format)).SetAlign(tview.AlignLeft),
			tview.NewTableCell(model.FormatBytes(info.Source.Size)).SetAlign(tview.AlignRight),
		}
		for colIdx, cell := range cells {
			app.datasetList.SetCell(rowIdx+1, colIdx, cell.SetTextColor(tcell.ColorWhite))
		}
	}
	if len(datasets) > 0 {
		app.datasetList.Select(1, 0)
	}
}

func (app *TUIApp) createStatusLine() {
	app.statusLine = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	app.statusLine.SetText(" [yellow]Keys:[-] ESC=quit, ↑↓=select, Enter=open dataset")
}

// openDataset shows the grid page of a dataset and loads its rows in the
// background
func (app *TUIApp) openDataset(index int) {
	if index < 0 || index >= len(app.datasets) {
		return
	}
	info := app.datasets[index]

	page, err := newGridPage(app, info)
	if err != nil {
		app.showError("Error opening dataset", err)
		return
	}
	app.pages.AddPage(gridPageName, page.layout, true, true)
	app.tviewApp.SetFocus(page.view)
	app.logger.Info("dataset opened", "dataset", info.Name, "records", info.NumRecords)

	go func() {
		records, err := app.httpClient.GetRows(info)
		app.tviewApp.QueueUpdateDraw(func() {
			page.setRows(records, err)
		})
	}()
}

// showError shows err in a modal that closes on any button
func (app *TUIApp) showError(title string, err error) {
	app.logger.Error(title, "error", err)
	errorModal := tview.NewModal().
		SetText(fmt.Sprintf("%s:\n%v\n\nPress ESC to go back", title, err)).
		SetTextColor(tcell.ColorRed).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			app.pages.RemovePage(errorPageName)
		})
	app.pages.AddPage(errorPageName, errorModal, true, true)
}
