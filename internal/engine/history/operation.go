package history

import (
	"fmt"
	"time"

	"github.com/dshills/dabbrev/internal/engine/buffer"
	"github.com/dshills/dabbrev/internal/engine/cursor"
)

// Operation represents a single undoable edit.
type Operation struct {
	Range   buffer.Range // Range that was replaced, in the pre-edit text
	OldText string       // Text that was replaced
	NewText string       // Text that was inserted

	SelectionBefore cursor.Selection
	SelectionAfter  cursor.Selection

	Timestamp time.Time
}

// NewOperation creates an operation from a completed edit.
func NewOperation(res buffer.EditResult, newText string, before, after cursor.Selection) *Operation {
	return &Operation{
		Range:           res.OldRange,
		OldText:         res.OldText,
		NewText:         newText,
		SelectionBefore: before,
		SelectionAfter:  after,
		Timestamp:       time.Now(),
	}
}

// NewRange returns the range NewText occupies after the edit.
func (op *Operation) NewRange() buffer.Range {
	return buffer.NewRange(op.Range.Start, op.Range.Start+buffer.ByteOffset(len(op.NewText)))
}

// Invert returns the operation that undoes op.
func (op *Operation) Invert() *Operation {
	return &Operation{
		Range:           op.NewRange(),
		OldText:         op.NewText,
		NewText:         op.OldText,
		SelectionBefore: op.SelectionAfter,
		SelectionAfter:  op.SelectionBefore,
		Timestamp:       op.Timestamp,
	}
}

// IsNoop returns true if the operation changes nothing.
func (op *Operation) IsNoop() bool {
	return op.OldText == op.NewText
}

// Edit returns the buffer edit that performs op.
func (op *Operation) Edit() buffer.Edit {
	return buffer.NewEdit(op.Range, op.NewText)
}

// Description returns a short human-readable description.
func (op *Operation) Description() string {
	switch {
	case op.OldText == "":
		return fmt.Sprintf("insert %d bytes", len(op.NewText))
	case op.NewText == "":
		return fmt.Sprintf("delete %d bytes", len(op.OldText))
	default:
		return fmt.Sprintf("replace %q with %q", op.OldText, op.NewText)
	}
}

// OperationInfo describes an undo unit.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}
