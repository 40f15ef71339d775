package buffer

import (
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// terminator is the byte that ends a line for this style.
func (le LineEnding) terminator() byte {
	if le == LineEndingCR {
		return '\r'
	}
	return '\n'
}

// Buffer holds document text together with an index of line starts.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	lineStarts []ByteOffset
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		revisionID: NewRevisionID(),
		lineEnding: LineEndingLF,
		tabWidth:   4,
	}

	for _, opt := range opts {
		opt(b)
	}

	b.reindex()
	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.text = b.normalizeLineEndings(s)
	b.reindex()
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	// Read everything first; CRLF pairs may straddle read boundaries.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...), nil
}

// normalizeLineEndings converts all line endings to the buffer's preferred style.
func (b *Buffer) normalizeLineEndings(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if b.lineEnding != LineEndingLF {
		s = strings.ReplaceAll(s, "\n", b.lineEnding.Sequence())
	}
	return s
}

// reindex rebuilds the line start table. Caller must hold the write lock.
func (b *Buffer) reindex() {
	term := b.lineEnding.terminator()
	starts := b.lineStarts[:0]
	starts = append(starts, 0)
	for i := 0; i < len(b.text); i++ {
		if b.text[i] == term {
			starts = append(starts, ByteOffset(i+1))
		}
	}
	b.lineStarts = starts
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// TextRange returns text in the given byte range.
// The range is clamped to the buffer bounds.
func (b *Buffer) TextRange(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start = b.clamp(start)
	end = b.clamp(end)
	if start >= end {
		return ""
	}
	return b.text[start:end]
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(len(b.text))
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text) == 0
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint32(len(b.lineStarts))
}

// LineText returns the text of a specific line (without line ending).
// Returns "" for lines past the end of the buffer.
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(line) >= len(b.lineStarts) {
		return ""
	}
	return b.text[b.lineStarts[line]:b.lineEnd(line)]
}

// LineLen returns the length of a specific line in bytes (without line ending).
func (b *Buffer) LineLen(line uint32) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(line) >= len(b.lineStarts) {
		return 0
	}
	return int(b.lineEnd(line) - b.lineStarts[line])
}

// LineStartOffset returns the byte offset of the start of a line.
// Lines past the end map to the buffer length.
func (b *Buffer) LineStartOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(line) >= len(b.lineStarts) {
		return ByteOffset(len(b.text))
	}
	return b.lineStarts[line]
}

// LineEndOffset returns the byte offset of the end of a line (before the line ending).
func (b *Buffer) LineEndOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(line) >= len(b.lineStarts) {
		return ByteOffset(len(b.text))
	}
	return b.lineEnd(line)
}

// lineEnd returns the end of line content. Caller must hold a lock.
func (b *Buffer) lineEnd(line uint32) ByteOffset {
	if int(line)+1 >= len(b.lineStarts) {
		return ByteOffset(len(b.text))
	}
	return b.lineStarts[line+1] - ByteOffset(len(b.lineEnding.Sequence()))
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column.
// Offsets outside the buffer are clamped.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	offset = b.clamp(offset)

	// First line whose start is beyond offset, minus one.
	line := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}

	col := offset - b.lineStarts[line]
	if end := b.lineEnd(uint32(line)); offset > end {
		// Offset points inside a multi-byte line ending.
		col = end - b.lineStarts[line]
	}
	return Point{Line: uint32(line), Column: uint32(col)}
}

// PointToOffset converts line/column to byte offset.
// Lines past the end map to the buffer length; columns past the end of
// the line are clamped to the line length.
func (b *Buffer) PointToOffset(point Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(point.Line) >= len(b.lineStarts) {
		return ByteOffset(len(b.text))
	}
	start := b.lineStarts[point.Line]
	end := b.lineEnd(point.Line)
	off := start + ByteOffset(point.Column)
	if off > end {
		off = end
	}
	return off
}

// clamp bounds offset to [0, len]. Caller must hold a lock.
func (b *Buffer) clamp(offset ByteOffset) ByteOffset {
	if offset < 0 {
		return 0
	}
	if offset > ByteOffset(len(b.text)) {
		return ByteOffset(len(b.text))
	}
	return offset
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > ByteOffset(len(b.text)) {
		return 0, ErrOffsetOutOfRange
	}

	res := b.replace(offset, offset, text)
	return res.NewRange.End, nil
}

// Replace replaces text in the given range with new text.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.validRange(start, end) {
		return 0, ErrRangeInvalid
	}

	res := b.replace(start, end, text)
	return res.NewRange.End, nil
}

// ApplyEdit applies a single edit to the buffer.
// The edit is atomic: readers observe either the old or the new text.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.validRange(edit.Range.Start, edit.Range.End) {
		return EditResult{}, ErrRangeInvalid
	}

	return b.replace(edit.Range.Start, edit.Range.End, edit.NewText), nil
}

// validRange reports whether [start, end) lies inside the buffer.
func (b *Buffer) validRange(start, end ByteOffset) bool {
	return start >= 0 && start <= end && end <= ByteOffset(len(b.text))
}

// replace performs a validated replacement. Caller must hold the write lock.
func (b *Buffer) replace(start, end ByteOffset, text string) EditResult {
	text = b.normalizeLineEndings(text)
	oldText := b.text[start:end]

	var sb strings.Builder
	sb.Grow(len(b.text) - len(oldText) + len(text))
	sb.WriteString(b.text[:start])
	sb.WriteString(text)
	sb.WriteString(b.text[end:])
	b.text = sb.String()

	b.reindex()
	b.revisionID = NewRevisionID()

	newEnd := start + ByteOffset(len(text))
	return EditResult{
		OldRange: Range{Start: start, End: end},
		NewRange: Range{Start: start, End: newEnd},
		OldText:  oldText,
		Delta:    int64(len(text)) - int64(end-start),
		Revision: b.revisionID,
	}
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetTabWidth sets the buffer's tab width.
func (b *Buffer) SetTabWidth(width int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width > 0 {
		b.tabWidth = width
	}
}
