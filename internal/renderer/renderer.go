package renderer

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/rivo/uniseg"

	"github.com/dshills/dabbrev/internal/engine/cursor"
	"github.com/dshills/dabbrev/internal/renderer/backend"
	"github.com/dshills/dabbrev/internal/renderer/viewport"
)

// Source provides the content and cursor of the editor being drawn.
type Source interface {
	// LineText returns the text content of a line (0-indexed).
	LineText(line uint32) string

	// LineCount returns the total number of lines.
	LineCount() uint32

	// Selection returns the current selection.
	Selection() cursor.Selection

	// View returns the viewport the editor scrolls.
	View() *viewport.Viewport
}

// Status is the content of the bottom line.
type Status struct {
	// Title names the document.
	Title string

	// Message is the last notification. It replaces the title while set.
	Message string
}

// Options configures the renderer.
type Options struct {
	// TabWidth is the display width of a tab stop.
	TabWidth int

	// ShowLineNumbers draws a line number gutter.
	ShowLineNumbers bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{TabWidth: 4}
}

var (
	styleNormal    = backend.Style{}
	styleSelection = backend.Style{Reverse: true}
	styleStatus    = backend.Style{Reverse: true}
	styleGutter    = backend.Style{Bold: true}
)

// Renderer draws a Source on a backend. The last screen row is reserved
// for the status line.
type Renderer struct {
	mu sync.Mutex

	opts    Options
	backend backend.Backend
	width   int
	height  int
	frames  uint64
}

// New creates a renderer sized to the backend.
func New(b backend.Backend, opts Options) *Renderer {
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultOptions().TabWidth
	}
	w, h := b.Size()
	return &Renderer{opts: opts, backend: b, width: w, height: h}
}

// Resize updates the screen size.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

// Size returns the screen size.
func (r *Renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// SetOptions replaces the rendering options.
func (r *Renderer) SetOptions(opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultOptions().TabWidth
	}
	r.opts = opts
}

// FrameCount returns the number of frames drawn.
func (r *Renderer) FrameCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// TextArea returns the size available to document text for src, which
// excludes the gutter and the status line.
func (r *Renderer) TextArea(src Source) (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textArea(src)
}

func (r *Renderer) textArea(src Source) (int, int) {
	return max(r.width-r.gutterWidth(src), 1), max(r.height-1, 1)
}

// Render draws src and the status line. A nil src draws only the status.
func (r *Renderer) Render(src Source, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backend.Clear()
	if src == nil || r.height < 1 {
		r.backend.HideCursor()
		r.renderStatus(status, "")
		r.backend.Show()
		r.frames++
		return
	}

	view := src.View()
	textW, textH := r.textArea(src)
	if view.Width() != textW || view.Height() != textH {
		view.Resize(textW, textH)
	}
	view.SetMaxLine(src.LineCount())

	sel := src.Selection()
	head := sel.Head
	cursorCol := DisplayColumn(src.LineText(head.Line), int(head.Column), r.opts.TabWidth)
	view.ScrollToReveal(head.Line, cursorCol)

	gutter := r.gutterWidth(src)
	top := view.TopLine()
	left := view.LeftColumn()
	for row := 0; row < textH; row++ {
		line := top + uint32(row)
		if line >= src.LineCount() {
			r.backend.SetContent(gutter, row, '~', styleGutter)
			continue
		}
		if gutter > 0 {
			r.renderGutter(line, row, gutter)
		}
		r.renderLine(src.LineText(line), line, row, gutter, left, sel)
	}

	pos := fmt.Sprintf("%d:%d", head.Line+1, cursorCol+1)
	r.renderStatus(status, pos)

	if row := view.LineToScreenRow(head.Line); row >= 0 && row < textH {
		r.backend.ShowCursor(gutter+cursorCol-left, row)
	} else {
		r.backend.HideCursor()
	}
	r.backend.Show()
	r.frames++
}

func (r *Renderer) renderLine(text string, line uint32, row, gutter, left int, sel cursor.Selection) {
	start, end := sel.Start(), sel.End()
	selected := func(col int) bool {
		if sel.IsEmpty() {
			return false
		}
		p := cursor.Point{Line: line, Column: uint32(col)}
		return p.Compare(start) >= 0 && p.Compare(end) < 0
	}

	x := 0
	for _, c := range layoutLine(text, r.opts.TabWidth) {
		style := styleNormal
		if selected(c.offset) {
			style = styleSelection
		}
		for i := 0; i < c.width; i++ {
			ch := c.r
			switch {
			case c.r == '\t':
				ch = ' '
			case i > 0:
				// trailing half of a wide rune
				continue
			}
			if screenX := gutter + x + i - left; screenX >= gutter && screenX < r.width {
				r.backend.SetContent(screenX, row, ch, style)
			}
		}
		x += c.width
	}
}

func (r *Renderer) renderGutter(line uint32, row, width int) {
	num := strconv.FormatUint(uint64(line)+1, 10)
	pad := width - 1 - len(num)
	for i, ch := range num {
		r.backend.SetContent(pad+i, row, ch, styleGutter)
	}
}

func (r *Renderer) renderStatus(status Status, pos string) {
	row := r.height - 1
	for x := 0; x < r.width; x++ {
		r.backend.SetContent(x, row, ' ', styleStatus)
	}

	left := status.Title
	if status.Message != "" {
		left = status.Message
	}
	x := 1
	for _, ch := range left {
		r.backend.SetContent(x, row, ch, styleStatus)
		x += max(uniseg.StringWidth(string(ch)), 1)
	}

	x = r.width - len(pos) - 1
	for _, ch := range pos {
		r.backend.SetContent(x, row, ch, styleStatus)
		x++
	}
}

// gutterWidth is the number of digits in the last line number plus a
// separating space, or zero when line numbers are off.
func (r *Renderer) gutterWidth(src Source) int {
	if !r.opts.ShowLineNumbers || src == nil {
		return 0
	}
	return len(strconv.FormatUint(uint64(src.LineCount()), 10)) + 1
}

type cell struct {
	r      rune
	offset int
	width  int
}

// layoutLine splits text into display cells, expanding tabs to the next
// tab stop. Zero width runes are dropped.
func layoutLine(text string, tabWidth int) []cell {
	cells := make([]cell, 0, len(text))
	x := 0
	for offset, ch := range text {
		w := runeWidth(ch, x, tabWidth)
		if w == 0 {
			continue
		}
		cells = append(cells, cell{r: ch, offset: offset, width: w})
		x += w
	}
	return cells
}

// DisplayColumn converts a byte column within text into a screen column.
func DisplayColumn(text string, byteCol, tabWidth int) int {
	x := 0
	for offset, ch := range text {
		if offset >= byteCol {
			break
		}
		x += runeWidth(ch, x, tabWidth)
	}
	return x
}

func runeWidth(ch rune, x, tabWidth int) int {
	if ch == '\t' {
		return tabWidth - x%tabWidth
	}
	return uniseg.StringWidth(string(ch))
}
