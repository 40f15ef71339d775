// Package viewport tracks which part of a document an editor shows.
package viewport

import "sync"

// Viewport is the visible window onto a document, in lines and columns.
type Viewport struct {
	mu sync.RWMutex

	topLine    uint32
	leftColumn int

	width  int
	height int

	// margin keeps the cursor this many lines away from the top and
	// bottom edges when scrolling to reveal it.
	margin int

	// maxLine is the document's line count; zero means unknown.
	maxLine uint32
}

// NewViewport creates a viewport with the given size.
// Width and height are clamped to a minimum of 1.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:  max(width, 1),
		height: max(height, 1),
	}
}

// Width returns the viewport width.
func (v *Viewport) Width() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width
}

// Height returns the viewport height.
func (v *Viewport) Height() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.height
}

// TopLine returns the first visible line.
func (v *Viewport) TopLine() uint32 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLine
}

// BottomLine returns the last visible line.
func (v *Viewport) BottomLine() uint32 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bottomLine()
}

func (v *Viewport) bottomLine() uint32 {
	bottom := v.topLine + uint32(v.height) - 1
	if v.maxLine > 0 && bottom > v.maxLine-1 {
		bottom = max(v.maxLine-1, v.topLine)
	}
	return bottom
}

// LeftColumn returns the first visible column.
func (v *Viewport) LeftColumn() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.leftColumn
}

// Resize updates the viewport size.
func (v *Viewport) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width = max(width, 1)
	v.height = max(height, 1)
}

// SetMaxLine records the document's line count.
func (v *Viewport) SetMaxLine(maxLine uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.maxLine = maxLine
	v.topLine = v.clampTop(v.topLine)
}

// SetMargin sets the scroll margin used by ScrollToReveal.
func (v *Viewport) SetMargin(lines int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.margin = max(lines, 0)
}

// VisibleLineRange returns the first and last visible lines.
func (v *Viewport) VisibleLineRange() (start, end uint32) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLine, v.bottomLine()
}

// IsLineVisible returns true if the line is within the viewport.
func (v *Viewport) IsLineVisible(line uint32) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return line >= v.topLine && line <= v.bottomLine()
}

// LineToScreenRow converts a document line to a screen row.
// Returns -1 if the line is not visible.
func (v *Viewport) LineToScreenRow(line uint32) int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if line < v.topLine || line > v.bottomLine() {
		return -1
	}
	return int(line - v.topLine)
}

// ColumnToScreenCol converts a document column to a screen column.
// The result is negative or >= Width when the column is off screen.
func (v *Viewport) ColumnToScreenCol(col int) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return col - v.leftColumn
}

// ScrollTo makes line the first visible line.
func (v *Viewport) ScrollTo(line uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.topLine = v.clampTop(line)
}

// ScrollToReveal scrolls as little as possible to show (line, col).
// Returns true if the viewport moved.
func (v *Viewport) ScrollToReveal(line uint32, col int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	top, left := v.topLine, v.leftColumn
	margin := uint32(min(v.margin, (v.height-1)/2))

	switch {
	case line < v.topLine+margin:
		top = line - min(line, margin)
	case line+margin >= v.topLine+uint32(v.height):
		top = line + margin + 1 - uint32(v.height)
	}

	switch {
	case col < v.leftColumn:
		left = col
	case col >= v.leftColumn+v.width:
		left = col - v.width + 1
	}

	top = v.clampTop(top)
	moved := top != v.topLine || left != v.leftColumn
	v.topLine, v.leftColumn = top, max(left, 0)
	return moved
}

// CenterOn scrolls so that line sits in the middle row.
func (v *Viewport) CenterOn(line uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	half := uint32(v.height / 2)
	top := uint32(0)
	if line >= half {
		top = line - half
	}
	v.topLine = v.clampTop(top)
}

// clampTop keeps top within the document once its size is known.
func (v *Viewport) clampTop(top uint32) uint32 {
	if v.maxLine == 0 || top < v.maxLine {
		return top
	}
	if v.maxLine > uint32(v.height) {
		return v.maxLine - uint32(v.height)
	}
	return 0
}
