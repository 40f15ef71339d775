package dabbrev

import "github.com/dshills/dabbrev/internal/engine/buffer"

// Session is the engine's cycling state: either Absent or *Active.
type Session interface {
	session()
}

// Absent means no expansion is in progress.
type Absent struct{}

func (Absent) session() {}

// Active tracks an expansion that can be continued by triggering again.
type Active struct {
	// Prefix is the fragment the user typed before the first trigger.
	Prefix string

	// Candidates are distinct words extending Prefix, nearest first.
	// Never empty.
	Candidates []string

	// Index selects the candidate currently in the document.
	Index int

	// Anchor is where Prefix starts; every replacement begins here.
	Anchor Point

	// Version is the document revision after the session's last edit.
	Version buffer.RevisionID

	// End is where the host placed the cursor after the session's last
	// edit.
	End Point
}

func (*Active) session() {}

// Current returns the candidate currently in the document.
func (a *Active) Current() string {
	return a.Candidates[a.Index]
}

// Cursor is where the cursor sits after the session's last edit.
func (a *Active) Cursor() Point {
	return a.End
}

// continues reports whether a trigger with the given word, anchor, and
// document version picks up where this session left off.
func (a *Active) continues(word string, anchor Point, version buffer.RevisionID) bool {
	return word == a.Current() && anchor == a.Anchor && version == a.Version
}

func (a *Active) clone() *Active {
	c := *a
	c.Candidates = append([]string(nil), a.Candidates...)
	return &c
}
