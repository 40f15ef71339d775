package workspace

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/dshills/dabbrev/internal/engine/buffer"
	"github.com/dshills/dabbrev/internal/engine/history"
)

// Document is an open text, shared by every editor showing it.
type Document struct {
	// ID uniquely identifies the document for the session.
	ID string

	// Path is the absolute file path (empty for scratch documents).
	Path string

	// Name is the display name (file name or the scratch name).
	Name string

	buf      *buffer.Buffer
	hist     *history.History
	modified atomic.Bool
}

// NewDocument creates a document holding text. An empty path makes a
// scratch document named "Untitled".
func NewDocument(path, text string, opts ...buffer.Option) *Document {
	name := filepath.Base(path)
	if path == "" {
		name = "Untitled"
	}
	return &Document{
		ID:   uuid.NewString(),
		Path: path,
		Name: name,
		buf:  buffer.NewBufferFromString(text, opts...),
		hist: history.NewHistory(history.DefaultMaxEntries),
	}
}

// LoadDocument reads a file into a new document. The file's own line
// ending is kept unless opts override it.
func LoadDocument(path string, opts ...buffer.Option) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", path)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "open %s", path),
			"check that the file exists and is readable")
	}

	text := string(content)
	opts = append([]buffer.Option{buffer.WithLineEnding(buffer.DetectLineEnding(text))}, opts...)
	return NewDocument(abs, text, opts...), nil
}

// Buffer returns the document's text buffer.
func (d *Document) Buffer() *buffer.Buffer {
	return d.buf
}

// History returns the document's undo history, shared by its editors.
func (d *Document) History() *history.History {
	return d.hist
}

// Text returns the full document content.
func (d *Document) Text() string {
	return d.buf.Text()
}

// IsScratch returns true if the document has no file path.
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// Save writes the document back to its file.
func (d *Document) Save() error {
	if d.IsScratch() {
		return ErrScratchDocument
	}
	if err := os.WriteFile(d.Path, []byte(d.buf.Text()), 0o644); err != nil {
		return errors.Wrapf(err, "save %s", d.Path)
	}
	d.modified.Store(false)
	return nil
}
