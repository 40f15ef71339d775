// Package topic names event streams with dot-separated segments and matches
// them against subscription patterns.
//
//	cursor.*            matches cursor.moved, not cursor.selection.changed
//	cursor.**           matches cursor.moved and cursor.selection.changed
//	*.content.replaced  matches buffer.content.replaced
package topic
