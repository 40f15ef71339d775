// Package history records buffer edits so they can be undone and redone.
//
// Each Operation captures the replaced range, the text on both sides of the
// edit and the selection before and after it. Undo applies the inverse
// operation; Redo applies the operation again. Operations recorded between
// BeginGroup and EndGroup form one undo unit.
//
// History does not observe the buffer by itself: the editor records every
// edit it applies and replays history entries through the same path, with
// recording suspended, so replays never land on the undo stack twice.
package history
