package event

import (
	"github.com/dshills/dabbrev/internal/engine/buffer"
	"github.com/dshills/dabbrev/internal/engine/cursor"
	"github.com/dshills/dabbrev/internal/event/topic"
)

// Topics published by the workspace and config layers.
const (
	TopicSelectionChanged topic.Topic = "cursor.selection.changed"
	TopicContentReplaced  topic.Topic = "buffer.content.replaced"
	TopicConfigReloaded   topic.Topic = "config.reloaded"
)

// SelectionChanged is published whenever an editor's selection moves,
// including moves caused by edits.
type SelectionChanged struct {
	EditorID  string
	Selection cursor.Selection
}

// Position returns the cursor position carried by the event.
func (s SelectionChanged) Position() buffer.Point {
	return s.Selection.Cursor()
}

// ContentReplaced is published after a document edit is applied.
type ContentReplaced struct {
	EditorID   string
	DocumentID string
	Range      buffer.Range
	OldText    string
	NewText    string
	Revision   buffer.RevisionID
}

// ConfigReloaded is published after the configuration file was re-read.
type ConfigReloaded struct {
	Path string
}
