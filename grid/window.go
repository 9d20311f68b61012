package grid

import "fmt"

// Window is the contiguous range of transformed rows to materialize,
// plus the geometry a renderer needs to keep the scrollbar correct.
type Window struct {
	// StartIndex is the first materialized row.
	StartIndex int `json:"startIndex"`

	// EndIndex is the last materialized row, inclusive.
	EndIndex int `json:"endIndex"`

	// OffsetTop is the height of the leading spacer.
	OffsetTop int `json:"offsetTop"`

	// TotalHeight is the height of all transformed rows.
	TotalHeight int `json:"totalHeight"`

	// ScrollTop is the clamped scroll offset the window was computed for.
	ScrollTop int `json:"scrollTop"`

	// Count is the number of materialized rows; 0 for an empty row set.
	Count int `json:"count"`
}

// Empty reports whether no rows are materialized.
func (w Window) Empty() bool {
	return w.Count == 0
}

// Contains reports whether index is materialized.
func (w Window) Contains(index int) bool {
	return w.Count > 0 && index >= w.StartIndex && index <= w.EndIndex
}

// TrailingSpace returns the height of the spacer after the materialized
// rows, so that leading spacer + rows + trailing spacer == TotalHeight.
func (w Window) TrailingSpace(itemHeight int) int {
	rest := w.TotalHeight - w.OffsetTop - w.Count*itemHeight
	if rest < 0 {
		return 0
	}
	return rest
}

// String returns a compact description, used in debug logs.
func (w Window) String() string {
	if w.Empty() {
		return "window[empty]"
	}
	return fmt.Sprintf("window[%d..%d of height %d @%d]", w.StartIndex, w.EndIndex, w.TotalHeight, w.ScrollTop)
}

// MaxScrollTop is the largest scroll offset that still fills the viewport.
func MaxScrollTop(totalCount, itemHeight, containerHeight int) int {
	m := totalCount*itemHeight - containerHeight
	if m < 0 {
		return 0
	}
	return m
}

// ClampScrollTop limits scrollTop to [0, MaxScrollTop].
func ClampScrollTop(totalCount, itemHeight, containerHeight, scrollTop int) int {
	if scrollTop < 0 {
		return 0
	}
	if m := MaxScrollTop(totalCount, itemHeight, containerHeight); scrollTop > m {
		return m
	}
	return scrollTop
}

// ComputeWindow returns the rows to materialize for a viewport of
// containerHeight scrolled to scrollTop over totalCount rows of
// itemHeight each. One extra row is kept on each edge so rows never pop
// in while scroll events arrive between frames.
//
// scrollTop is clamped into [0, MaxScrollTop] first, so the window never
// references an index outside the row set. Non-positive heights are
// configuration errors.
func ComputeWindow(totalCount, itemHeight, containerHeight, scrollTop int) (Window, error) {
	if itemHeight <= 0 {
		return Window{}, fmt.Errorf("%w: %d", ErrInvalidItemHeight, itemHeight)
	}
	if containerHeight <= 0 {
		return Window{}, fmt.Errorf("%w: %d", ErrInvalidContainerHeight, containerHeight)
	}
	if totalCount <= 0 {
		return Window{}, nil
	}

	scrollTop = ClampScrollTop(totalCount, itemHeight, containerHeight, scrollTop)
	visibleCount := ceilDiv(containerHeight, itemHeight) + 2
	start := max(0, scrollTop/itemHeight-1)
	end := min(totalCount-1, start+visibleCount)

	return Window{
		StartIndex:  start,
		EndIndex:    end,
		OffsetTop:   start * itemHeight,
		TotalHeight: totalCount * itemHeight,
		ScrollTop:   scrollTop,
		Count:       end - start + 1,
	}, nil
}

// Slice returns the materialized rows of w. It shares storage with rows.
func Slice[T any](rows []T, w Window) []T {
	if w.Empty() || w.StartIndex >= len(rows) {
		return nil
	}
	end := min(w.EndIndex+1, len(rows))
	return rows[w.StartIndex:end]
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
