// Package buffer provides a thread-safe text buffer with a line index.
// It is the document store behind every editor in the workspace.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Coordinate conversion between byte offsets and line/column positions
//   - Line ending normalization
//   - Revision tracking: every accepted edit produces a new, larger RevisionID
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("Hello, World!")
//
//	// Replace "World" with "Gopher"
//	buf.Replace(7, 12, "Gopher") // "Hello, Gopher!"
//
//	// Convert between coordinate systems
//	p := buf.OffsetToPoint(7)     // (0:7)
//	off := buf.PointToOffset(p)   // 7
//
// Position Types:
//
//   - ByteOffset: Raw byte position in the buffer
//   - Point: Line and column position (0-indexed, column in bytes)
//
// Revisions are drawn from a process-wide counter, so a revision observed on
// one buffer is never reused by another. Callers that need to detect foreign
// edits compare the RevisionID they recorded against RevisionID().
package buffer
