package dabbrev

import (
	"context"

	"github.com/dshills/dabbrev/internal/engine/buffer"
)

// memSource is a TextSource over a buffer with a single cursor.
type memSource struct {
	buf    *buffer.Buffer
	cursor Point

	// failWith makes the next ApplyReplacement fail.
	failWith error
	// onMove observes cursor moves made by ApplyReplacement.
	onMove func(Point)
	// normalize rewrites replacement text before it is inserted.
	normalize func(string) string
	edits     int
}

func newMemSource(text string, cursor Point) *memSource {
	return &memSource{buf: buffer.NewBufferFromString(text), cursor: cursor}
}

// atEnd places the cursor after the last character.
func atEnd(text string) *memSource {
	s := newMemSource(text, Point{})
	s.cursor = s.buf.OffsetToPoint(s.buf.Len())
	return s
}

func (s *memSource) ActivePosition() Point                  { return s.cursor }
func (s *memSource) LineText(line uint32) string            { return s.buf.LineText(line) }
func (s *memSource) Text() string                           { return s.buf.Text() }
func (s *memSource) Version() buffer.RevisionID             { return s.buf.RevisionID() }
func (s *memSource) PositionAt(off buffer.ByteOffset) Point { return s.buf.OffsetToPoint(off) }
func (s *memSource) OffsetAt(p Point) buffer.ByteOffset     { return s.buf.PointToOffset(p) }

func (s *memSource) ApplyReplacement(ctx context.Context, r Replacement) (ReplacementResult, error) {
	if err := ctx.Err(); err != nil {
		return ReplacementResult{}, err
	}
	if s.failWith != nil {
		err := s.failWith
		s.failWith = nil
		return ReplacementResult{}, err
	}
	text := r.Text
	if s.normalize != nil {
		text = s.normalize(text)
	}
	end, err := s.buf.Replace(s.buf.PointToOffset(r.Start), s.buf.PointToOffset(r.End), text)
	if err != nil {
		return ReplacementResult{}, err
	}
	s.edits++
	s.cursor = s.buf.OffsetToPoint(end)
	if s.onMove != nil {
		s.onMove(s.cursor)
	}
	return ReplacementResult{Version: s.buf.RevisionID(), End: s.cursor}, nil
}

// typeText simulates the user typing at the cursor.
func (s *memSource) typeText(text string) {
	end, err := s.buf.Insert(s.buf.PointToOffset(s.cursor), text)
	if err != nil {
		panic(err)
	}
	s.cursor = s.buf.OffsetToPoint(end)
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(msg string) { n.messages = append(n.messages, msg) }
