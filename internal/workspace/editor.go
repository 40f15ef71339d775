package workspace

import (
	"context"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/dabbrev/internal/dabbrev"
	"github.com/dshills/dabbrev/internal/engine/buffer"
	"github.com/dshills/dabbrev/internal/engine/cursor"
	"github.com/dshills/dabbrev/internal/engine/history"
	"github.com/dshills/dabbrev/internal/event"
	"github.com/dshills/dabbrev/internal/logger"
	"github.com/dshills/dabbrev/internal/renderer/viewport"
)

// Editor is a view onto a Document with its own selection and viewport.
// It implements dabbrev.TextSource.
type Editor struct {
	// ID uniquely identifies the editor.
	ID string

	doc  *Document
	view *viewport.Viewport
	bus  *event.Bus
	log  *logger.Logger

	mu     sync.Mutex
	sel    cursor.Selection
	closed atomic.Bool
}

var _ dabbrev.TextSource = (*Editor)(nil)

func newEditor(doc *Document, bus *event.Bus, log *logger.Logger, width, height int) *Editor {
	id := uuid.NewString()
	view := viewport.NewViewport(width, height)
	view.SetMaxLine(doc.buf.LineCount())
	return &Editor{
		ID:   id,
		doc:  doc,
		view: view,
		bus:  bus,
		log:  log.WithField("editor", id),
	}
}

// Document returns the document being edited.
func (e *Editor) Document() *Document {
	return e.doc
}

// View returns the editor's viewport.
func (e *Editor) View() *viewport.Viewport {
	return e.view
}

// IsClosed reports whether the editor was closed.
func (e *Editor) IsClosed() bool {
	return e.closed.Load()
}

// Selection returns the current selection, clamped into the document.
// Edits made through another editor on the same document can leave the
// stored selection past the end of a line.
func (e *Editor) Selection() cursor.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cursor.NewSelection(e.clampPoint(e.sel.Anchor), e.clampPoint(e.sel.Head))
}

// SetSelection replaces the selection, clamping both ends into the
// document, and publishes the change.
func (e *Editor) SetSelection(ctx context.Context, sel cursor.Selection) {
	e.mu.Lock()
	sel = cursor.NewSelection(e.clampPoint(sel.Anchor), e.clampPoint(sel.Head))
	e.sel = sel
	e.mu.Unlock()

	e.view.ScrollToReveal(sel.Head.Line, int(sel.Head.Column))
	e.publishSelection(ctx, sel)
}

// MoveTo collapses the selection to p.
func (e *Editor) MoveTo(ctx context.Context, p buffer.Point) {
	e.SetSelection(ctx, cursor.NewCursorSelection(p))
}

// clampPoint maps p to the nearest valid position. Caller must hold e.mu.
func (e *Editor) clampPoint(p buffer.Point) buffer.Point {
	return e.doc.buf.OffsetToPoint(e.doc.buf.PointToOffset(p))
}

// MoveLeft moves the cursor one character left, wrapping to the end of
// the previous line.
func (e *Editor) MoveLeft(ctx context.Context) {
	p := e.ActivePosition()
	switch {
	case p.Column > 0:
		line := e.doc.buf.LineText(p.Line)
		_, size := utf8.DecodeLastRuneInString(line[:min(int(p.Column), len(line))])
		p.Column -= uint32(size)
	case p.Line > 0:
		p.Line--
		p.Column = uint32(e.doc.buf.LineLen(p.Line))
	}
	e.MoveTo(ctx, p)
}

// MoveRight moves the cursor one character right, wrapping to the start of
// the next line.
func (e *Editor) MoveRight(ctx context.Context) {
	p := e.ActivePosition()
	line := e.doc.buf.LineText(p.Line)
	switch {
	case int(p.Column) < len(line):
		_, size := utf8.DecodeRuneInString(line[p.Column:])
		p.Column += uint32(size)
	case p.Line+1 < e.doc.buf.LineCount():
		p.Line++
		p.Column = 0
	}
	e.MoveTo(ctx, p)
}

// MoveUp moves the cursor to the previous line, keeping the column where
// the line is long enough.
func (e *Editor) MoveUp(ctx context.Context) {
	p := e.ActivePosition()
	if p.Line > 0 {
		p.Line--
	}
	e.MoveTo(ctx, p)
}

// MoveDown moves the cursor to the next line.
func (e *Editor) MoveDown(ctx context.Context) {
	p := e.ActivePosition()
	if p.Line+1 < e.doc.buf.LineCount() {
		p.Line++
	}
	e.MoveTo(ctx, p)
}

// SelectLine selects the whole cursor line, anchor at its start and head
// at its end.
func (e *Editor) SelectLine(ctx context.Context) cursor.Selection {
	line := e.ActivePosition().Line
	sel := cursor.LineSelection(line, e.doc.buf.LineLen(line))
	e.SetSelection(ctx, sel)
	return sel
}

// Insert replaces the selection with text and leaves the cursor after it.
func (e *Editor) Insert(ctx context.Context, text string) error {
	sel := e.Selection()
	_, err := e.replace(ctx, sel.Start(), sel.End(), text)
	return err
}

// Newline inserts the document's line ending at the cursor.
func (e *Editor) Newline(ctx context.Context) error {
	return e.Insert(ctx, e.doc.buf.LineEnding().Sequence())
}

// Backspace deletes the selection, or the character before the cursor.
// At the start of a line it joins the line with the previous one.
func (e *Editor) Backspace(ctx context.Context) error {
	sel := e.Selection()
	if !sel.IsEmpty() {
		_, err := e.replace(ctx, sel.Start(), sel.End(), "")
		return err
	}

	p := sel.Head
	start := p
	switch {
	case p.Column > 0:
		line := e.doc.buf.LineText(p.Line)
		_, size := utf8.DecodeLastRuneInString(line[:min(int(p.Column), len(line))])
		start.Column -= uint32(size)
	case p.Line > 0:
		start = buffer.Point{Line: p.Line - 1, Column: uint32(e.doc.buf.LineLen(p.Line - 1))}
	default:
		return nil
	}
	_, err := e.replace(ctx, start, p, "")
	return err
}

// CenterCursor scrolls the viewport so the cursor line sits in the middle.
func (e *Editor) CenterCursor() {
	e.view.SetMaxLine(e.doc.buf.LineCount())
	e.view.CenterOn(e.ActivePosition().Line)
}

// ActivePosition returns the cursor position.
func (e *Editor) ActivePosition() buffer.Point {
	return e.Selection().Head
}

// LineText returns the content of line without its terminator.
func (e *Editor) LineText(line uint32) string {
	return e.doc.buf.LineText(line)
}

// LineCount returns the number of lines in the document.
func (e *Editor) LineCount() uint32 {
	return e.doc.buf.LineCount()
}

// Title returns the document path, or "[scratch]", with a trailing "*"
// once the document is modified.
func (e *Editor) Title() string {
	title := e.doc.Path
	if e.doc.IsScratch() {
		title = "[scratch]"
	}
	if e.doc.IsModified() {
		title += " *"
	}
	return title
}

// Text returns the full document text.
func (e *Editor) Text() string {
	return e.doc.buf.Text()
}

// Version returns the document revision.
func (e *Editor) Version() buffer.RevisionID {
	return e.doc.buf.RevisionID()
}

// PositionAt converts a byte offset into a position.
func (e *Editor) PositionAt(offset buffer.ByteOffset) buffer.Point {
	return e.doc.buf.OffsetToPoint(offset)
}

// OffsetAt converts a position into a byte offset.
func (e *Editor) OffsetAt(p buffer.Point) buffer.ByteOffset {
	return e.doc.buf.PointToOffset(p)
}

// ApplyReplacement applies r as a single edit and moves the cursor to the
// end of the inserted text.
func (e *Editor) ApplyReplacement(ctx context.Context, r dabbrev.Replacement) (dabbrev.ReplacementResult, error) {
	res, err := e.replace(ctx, r.Start, r.End, r.Text)
	if err != nil {
		return dabbrev.ReplacementResult{}, err
	}
	return dabbrev.ReplacementResult{
		Version: res.Revision,
		End:     e.doc.buf.OffsetToPoint(res.NewRange.End),
	}, nil
}

// replace edits [start, end), collapses the selection after the new text,
// records the edit for undo and publishes the content and selection
// changes.
func (e *Editor) replace(ctx context.Context, start, end buffer.Point, text string) (buffer.EditResult, error) {
	buf := e.doc.buf
	e.mu.Lock()
	before := cursor.NewSelection(e.clampPoint(e.sel.Anchor), e.clampPoint(e.sel.Head))
	edit := buffer.NewEdit(buffer.NewRange(buf.PointToOffset(start), buf.PointToOffset(end)), text)
	e.mu.Unlock()

	res, inserted, after, err := e.apply(ctx, edit, nil)
	if err != nil {
		return buffer.EditResult{}, err
	}
	e.doc.hist.Record(history.NewOperation(res, inserted, before, after))
	return res, nil
}

// Undo reverts the document's last undo unit.
func (e *Editor) Undo(ctx context.Context) error {
	return e.doc.hist.Undo(e.replayer(ctx))
}

// Redo re-applies the last undone unit.
func (e *Editor) Redo(ctx context.Context) error {
	return e.doc.hist.Redo(e.replayer(ctx))
}

// replayer applies history entries without recording them again.
func (e *Editor) replayer(ctx context.Context) history.Applier {
	return func(edit buffer.Edit, sel cursor.Selection) error {
		_, _, _, err := e.apply(ctx, edit, &sel)
		return err
	}
}

// apply performs edit. The selection becomes sel, or a cursor after the
// new text when sel is nil.
func (e *Editor) apply(ctx context.Context, edit buffer.Edit, sel *cursor.Selection) (buffer.EditResult, string, cursor.Selection, error) {
	if e.closed.Load() {
		return buffer.EditResult{}, "", cursor.Selection{}, ErrEditorClosed
	}
	if err := ctx.Err(); err != nil {
		return buffer.EditResult{}, "", cursor.Selection{}, err
	}

	buf := e.doc.buf
	e.mu.Lock()
	res, err := buf.ApplyEdit(edit)
	if err != nil {
		e.mu.Unlock()
		return buffer.EditResult{}, "", cursor.Selection{}, err
	}
	inserted := buf.TextRange(res.NewRange.Start, res.NewRange.End)
	after := cursor.NewCursorSelection(buf.OffsetToPoint(res.NewRange.End))
	if sel != nil {
		after = cursor.NewSelection(e.clampPoint(sel.Anchor), e.clampPoint(sel.Head))
	}
	e.sel = after
	e.mu.Unlock()

	e.doc.modified.Store(true)
	e.view.SetMaxLine(buf.LineCount())
	e.view.ScrollToReveal(after.Head.Line, int(after.Head.Column))

	publishTo(ctx, e.bus, e.log, event.NewEvent(event.TopicContentReplaced, event.ContentReplaced{
		EditorID:   e.ID,
		DocumentID: e.doc.ID,
		Range:      res.OldRange,
		OldText:    res.OldText,
		NewText:    inserted,
		Revision:   res.Revision,
	}, "workspace"))
	e.publishSelection(ctx, after)
	return res, inserted, after, nil
}

func (e *Editor) publishSelection(ctx context.Context, sel cursor.Selection) {
	publishTo(ctx, e.bus, e.log, event.NewEvent(event.TopicSelectionChanged, event.SelectionChanged{
		EditorID:  e.ID,
		Selection: sel,
	}, "workspace"))
}

func publishTo[T any](ctx context.Context, bus *event.Bus, log *logger.Logger, ev event.Event[T]) {
	if bus == nil {
		return
	}
	if err := event.Publish(ctx, bus, ev); err != nil {
		log.Debug("publish %s: %v", ev.Type, err)
	}
}
