// Package dabbrev implements dynamic abbreviation expansion.
//
// Given the word fragment immediately left of the cursor, the Engine scans
// text already typed earlier in the same document for longer words starting
// with that fragment and replaces the fragment with the nearest one.
// Triggering again without moving the cursor cycles through the remaining
// candidates, wrapping back to the first.
//
// The Engine owns no text. It reads and edits through a TextSource and
// reports "nothing to do" outcomes through a Notifier, both supplied by the
// host. One Engine serves one editor; the host forwards that editor's
// selection changes to OnSelectionChanged so a moved cursor ends the
// cycling session.
package dabbrev
