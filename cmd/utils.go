package cmd

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rivo/tview"

	"github.com/studiodesk/gridbrowser/grid"
	"github.com/studiodesk/gridbrowser/model"
)

// centered wraps p in a flex layout that keeps it in the middle of the screen
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

// formatFilters renders active filters as field~query pairs sorted by field
func formatFilters(filters grid.Filters) string {
	fields := make([]string, 0, len(filters))
	for field, query := range filters {
		if query != "" {
			fields = append(fields, field)
		}
	}
	slices.Sort(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = fmt.Sprintf("%s~%q", field, filters[field])
	}
	return strings.Join(parts, " ")
}

// datasetSummary is the one-line header of a grid page
func datasetSummary(info model.DatasetInfo) string {
	var header strings.Builder
	header.WriteString(fmt.Sprintf(" [yellow]Dataset:[-] %s  ", tview.Escape(info.Name)))
	header.WriteString(fmt.Sprintf("[yellow]Records:[-] %d  ", info.NumRecords))
	header.WriteString(fmt.Sprintf("[yellow]Fields:[-] %d  ", len(info.Fields)))
	header.WriteString(fmt.Sprintf("[yellow]Key:[-] %s", tview.Escape(info.KeyField)))
	if info.Source.URI != "" {
		header.WriteString(fmt.Sprintf("  [yellow]Source:[-] %s (%s, %s)",
			tview.Escape(filepath.Base(info.Source.URI)), info.Source.Format, model.FormatBytes(info.Source.Size)))
	}
	return header.String()
}
