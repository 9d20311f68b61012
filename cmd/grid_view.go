package cmd

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/studiodesk/gridbrowser/grid"
	"github.com/studiodesk/gridbrowser/model"
)

type recordGrid = grid.Grid[model.Record, string]

const (
	checkboxWidth      = 4
	defaultColumnWidth = 16
	minColumnWidth     = 6
	maxColumnWidth     = 40
	wheelStep          = 3
)

type placedColumn struct {
	index int
	x     int
	width int
}

// GridView draws the materialized window of a grid: a header line with the
// sort indicators and one terminal line per row. Rows of the window that
// fall outside the viewport (the overscan) are skipped. The grid must use
// an item height of 1.
type GridView struct {
	*tview.Box

	grid      *recordGrid
	cursor    int
	column    int
	colOffset int

	// geometry of the last draw, used for mouse hit testing
	placed     []placedColumn
	innerX     int
	headerY    int
	bodyY      int
	bodyHeight int

	onFilter func(field string)
	onCopy   func()
	onBack   func()
	onChange func()
}

// NewGridView creates a view over g
func NewGridView(g *recordGrid) *GridView {
	return &GridView{
		Box:  tview.NewBox(),
		grid: g,
	}
}

// SetFilterFunc sets the handler asked to edit the filter of a column
func (v *GridView) SetFilterFunc(fn func(field string)) *GridView {
	v.onFilter = fn
	return v
}

// SetCopyFunc sets the handler for the copy key
func (v *GridView) SetCopyFunc(fn func()) *GridView {
	v.onCopy = fn
	return v
}

// SetBackFunc sets the handler for Escape
func (v *GridView) SetBackFunc(fn func()) *GridView {
	v.onBack = fn
	return v
}

// SetChangedFunc sets the handler called after any key or mouse event
// changed the grid
func (v *GridView) SetChangedFunc(fn func()) *GridView {
	v.onChange = fn
	return v
}

// Cursor returns the transformed index of the highlighted row
func (v *GridView) Cursor() int {
	return v.cursor
}

// FocusedField returns the field of the focused column
func (v *GridView) FocusedField() string {
	cols := v.grid.Columns()
	if len(cols) == 0 {
		return ""
	}
	return cols[min(v.column, len(cols)-1)].Field
}

// Sync brings the cursor back into range after the rows changed
func (v *GridView) Sync() {
	v.clampCursor()
}

// Draw renders the header and the rows of the current window
func (v *GridView) Draw(screen tcell.Screen) {
	v.Box.DrawForSubclass(screen, v)
	x, y, width, height := v.GetInnerRect()
	v.placed = nil
	if width <= 0 || height <= 1 {
		return
	}

	v.innerX, v.headerY, v.bodyY, v.bodyHeight = x, y, y+1, height-1
	if v.grid.ContainerHeight() != v.bodyHeight {
		_ = v.grid.SetContainerHeight(v.bodyHeight)
		v.followScroll()
	}
	v.placed = v.layout(width)
	v.drawHeader(screen)

	switch v.grid.State() {
	case grid.StateLoading:
		printText(screen, x, v.bodyY, width, "Loading...", tcell.StyleDefault.Foreground(tcell.ColorYellow))
		return
	case grid.StateEmpty:
		msg := v.grid.EmptyMessage()
		mx := x + max(0, (width-runewidth.StringWidth(msg))/2)
		printText(screen, mx, v.bodyY+v.bodyHeight/2, width-(mx-x), msg, tcell.StyleDefault.Foreground(tcell.ColorGray))
		return
	}

	top := v.grid.ScrollTop()
	cols := v.grid.Columns()
	for _, r := range v.grid.Visible() {
		line := r.Index - top
		if line < 0 || line >= v.bodyHeight {
			continue
		}
		rowY := v.bodyY + line

		style := tcell.StyleDefault
		if r.Selected {
			style = style.Foreground(tcell.ColorGreen)
		}
		if r.Index == v.cursor {
			style = style.Reverse(true)
		}
		for i := 0; i < width; i++ {
			screen.SetContent(x+i, rowY, ' ', nil, style)
		}
		printText(screen, x, rowY, checkboxWidth, checkbox(r.Selected), style)
		for _, p := range v.placed {
			printText(screen, p.x, rowY, p.width, cols[p.index].Cell(r.Row, r.Index), style)
		}
	}
}

func (v *GridView) drawHeader(screen tcell.Screen) {
	style := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	printText(screen, v.innerX, v.headerY, checkboxWidth, checkbox(v.grid.AllSelected()), style)

	cols := v.grid.Columns()
	for _, p := range v.placed {
		col := cols[p.index]
		title := col.Title
		if ind := v.grid.SortIndicator(col.Field); ind != "" {
			title += " " + ind
		}
		if v.grid.Filter(col.Field) != "" {
			title += " ~"
		}
		s := style
		if p.index == v.column {
			s = s.Reverse(true)
		}
		printText(screen, p.x, v.headerY, p.width, title, s)
	}
}

// layout places columns left to right starting at colOffset, shifting the
// offset until the focused column is fully visible
func (v *GridView) layout(width int) []placedColumn {
	cols := v.grid.Columns()
	if len(cols) == 0 {
		return nil
	}
	v.column = max(0, min(v.column, len(cols)-1))
	v.colOffset = min(v.colOffset, v.column)
	for {
		placed := v.place(width)
		if v.colOffset == v.column {
			return placed
		}
		for _, p := range placed {
			if p.index == v.column && p.width == columnWidth(cols[p.index]) {
				return placed
			}
		}
		v.colOffset++
	}
}

func (v *GridView) place(width int) []placedColumn {
	cols := v.grid.Columns()
	var placed []placedColumn
	pos := v.innerX + checkboxWidth
	right := v.innerX + width
	for i := v.colOffset; i < len(cols) && pos < right; i++ {
		w := min(columnWidth(cols[i]), right-pos)
		placed = append(placed, placedColumn{index: i, x: pos, width: w})
		pos += w + 1
	}
	return placed
}

func columnWidth(col grid.Column[model.Record]) int {
	w := col.Width
	if w == 0 {
		w = defaultColumnWidth
	}
	w = max(w, runewidth.StringWidth(col.Title)+4)
	return max(minColumnWidth, min(w, maxColumnWidth))
}

// InputHandler handles the grid key map
func (v *GridView) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return v.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		v.handleKey(event)
	})
}

func (v *GridView) handleKey(event *tcell.EventKey) {
	page := max(1, v.grid.ContainerHeight()/v.grid.ItemHeight())

	switch event.Key() {
	case tcell.KeyUp:
		v.setCursor(v.cursor - 1)
	case tcell.KeyDown:
		v.setCursor(v.cursor + 1)
	case tcell.KeyPgUp:
		v.grid.ScrollBy(-v.grid.ContainerHeight())
		v.cursor -= page
		v.clampCursor()
	case tcell.KeyPgDn:
		v.grid.ScrollBy(v.grid.ContainerHeight())
		v.cursor += page
		v.clampCursor()
	case tcell.KeyHome:
		v.setCursor(0)
	case tcell.KeyEnd:
		v.setCursor(v.grid.Len() - 1)
	case tcell.KeyLeft:
		v.column = max(0, v.column-1)
	case tcell.KeyRight:
		v.column = min(len(v.grid.Columns())-1, v.column+1)
	case tcell.KeyEnter:
		_ = v.grid.DoubleClickRow(v.cursor)
	case tcell.KeyEscape:
		if v.onBack != nil {
			v.onBack()
		}
		return
	case tcell.KeyRune:
		switch event.Rune() {
		case ' ':
			_ = v.grid.ClickRow(v.cursor)
		case 's':
			_ = v.grid.ClickHeader(v.FocusedField())
			v.clampCursor()
		case '/':
			if v.onFilter != nil {
				v.onFilter(v.FocusedField())
			}
			return
		case 'x':
			v.grid.ResetFilters()
			v.clampCursor()
		case 'a':
			v.grid.ToggleAll()
		case 'c':
			if v.onCopy != nil {
				v.onCopy()
			}
			return
		default:
			return
		}
	default:
		return
	}
	v.changed()
}

// MouseHandler maps the wheel to scroll events and clicks to header and
// row clicks
func (v *GridView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return v.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		x, y := event.Position()
		if !v.InRect(x, y) {
			return false, nil
		}

		switch action {
		case tview.MouseScrollUp:
			v.grid.ScrollBy(-wheelStep * v.grid.ItemHeight())
			v.followScroll()
		case tview.MouseScrollDown:
			v.grid.ScrollBy(wheelStep * v.grid.ItemHeight())
			v.followScroll()
		case tview.MouseLeftClick:
			setFocus(v)
			v.click(x, y, false)
		case tview.MouseLeftDoubleClick:
			setFocus(v)
			v.click(x, y, true)
		default:
			return false, nil
		}
		v.changed()
		return true, nil
	})
}

// click hit-tests the last drawn geometry. The second click of a double
// click on the header counts as another header click.
func (v *GridView) click(x, y int, double bool) {
	if y == v.headerY {
		if x < v.innerX+checkboxWidth {
			v.grid.ToggleAll()
			return
		}
		if i, ok := v.columnAt(x); ok {
			v.column = i
			_ = v.grid.ClickHeader(v.grid.Columns()[i].Field)
			v.clampCursor()
		}
		return
	}

	index, ok := v.rowAt(y)
	if !ok {
		return
	}
	v.cursor = index
	if i, ok := v.columnAt(x); ok {
		v.column = i
	}
	if double {
		_ = v.grid.DoubleClickRow(index)
	} else {
		_ = v.grid.ClickRow(index)
	}
}

func (v *GridView) columnAt(x int) (int, bool) {
	for _, p := range v.placed {
		if x >= p.x && x < p.x+p.width {
			return p.index, true
		}
	}
	return 0, false
}

func (v *GridView) rowAt(y int) (int, bool) {
	line := y - v.bodyY
	if line < 0 || line >= v.bodyHeight {
		return 0, false
	}
	index := v.grid.ScrollTop() + line
	if index >= v.grid.Len() {
		return 0, false
	}
	return index, true
}

func (v *GridView) setCursor(index int) {
	n := v.grid.Len()
	if n == 0 {
		v.cursor = 0
		return
	}
	v.cursor = max(0, min(index, n-1))
	_ = v.grid.ScrollToIndex(v.cursor)
}

func (v *GridView) clampCursor() {
	v.cursor = max(0, min(v.cursor, v.grid.Len()-1))
	v.followScroll()
}

// followScroll moves the cursor into the viewport after a scroll
func (v *GridView) followScroll() {
	n := v.grid.Len()
	if n == 0 {
		v.cursor = 0
		return
	}
	first := v.grid.ScrollTop()
	last := min(n-1, first+v.grid.ContainerHeight()-1)
	v.cursor = max(first, min(v.cursor, last))
}

func (v *GridView) changed() {
	if v.onChange != nil {
		v.onChange()
	}
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// printText writes s at (x, y) within width cells, truncated with an
// ellipsis and padded with spaces
func printText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	if width <= 0 {
		return
	}
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, s)
	s = runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		screen.SetContent(x, y, r, nil, style)
		x += w
	}
}
