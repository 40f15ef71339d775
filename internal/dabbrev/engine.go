package dabbrev

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dshills/dabbrev/internal/logger"
)

// Messages shown through the Notifier.
const (
	MsgNoPrefix = "No word prefix to expand"
	MsgNoMatch  = "No expansion found"
)

// Outcome classifies what a trigger did.
type Outcome string

const (
	// OutcomeExpanded means a fresh search replaced the prefix.
	OutcomeExpanded Outcome = "expanded"
	// OutcomeCycled means the next candidate replaced the previous one.
	OutcomeCycled Outcome = "cycled"
	// OutcomeNoPrefix means no word characters precede the cursor.
	OutcomeNoPrefix Outcome = "no_prefix"
	// OutcomeNoMatch means the search found no candidates.
	OutcomeNoMatch Outcome = "no_match"
	// OutcomeUnavailable means the text source was missing or the edit failed.
	OutcomeUnavailable Outcome = "unavailable"
)

// Result describes a single trigger.
type Result struct {
	Outcome     Outcome
	Prefix      string
	Replacement string
	Index       int
	Candidates  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics records outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithEditorID restricts OnSelectionChanged to events from one editor.
func WithEditorID(id string) Option {
	return func(e *Engine) { e.editorID = id }
}

// Engine expands word prefixes for one editor.
// Engine is safe for concurrent use, but triggers are expected to arrive
// one at a time.
type Engine struct {
	mu       sync.Mutex
	src      TextSource
	notifier Notifier
	session  Session

	// editing is set while ApplyReplacement runs so that selection events
	// caused by our own edit do not end the session.
	editing atomic.Bool

	editorID string
	log      *logger.Logger
	metrics  *Metrics
}

// New creates an engine reading and editing through src.
func New(src TextSource, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		src:      src,
		notifier: notifier,
		session:  Absent{},
		log:      logger.Null(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("dabbrev")
	if e.editorID != "" {
		e.log = e.log.WithField("editor", e.editorID)
	}
	return e
}

// Expand runs one trigger: a fresh expansion, or the next candidate when
// the previous trigger left the cursor where it is now.
func (e *Engine) Expand(ctx context.Context) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := e.expand(ctx)
	e.metrics.outcome(res.Outcome)
	e.log.Debug("expand: outcome=%s prefix=%q replacement=%q index=%d candidates=%d",
		res.Outcome, res.Prefix, res.Replacement, res.Index, res.Candidates)
	return res
}

func (e *Engine) expand(ctx context.Context) Result {
	if e.src == nil {
		return Result{Outcome: OutcomeUnavailable}
	}

	pos := e.src.ActivePosition()
	line := e.src.LineText(pos.Line)
	pos.Column = min(pos.Column, uint32(len(line)))
	word := PrefixAt(line, int(pos.Column))
	if word == "" {
		e.notify(MsgNoPrefix)
		return Result{Outcome: OutcomeNoPrefix}
	}
	anchor := Point{Line: pos.Line, Column: pos.Column - uint32(len(word))}

	if act, ok := e.session.(*Active); ok && act.continues(word, anchor, e.src.Version()) {
		return e.cycle(ctx, act, pos)
	}

	cands := Candidates(e.src.Text(), word, e.src.OffsetAt(anchor))
	e.metrics.candidates(len(cands))
	if len(cands) == 0 {
		e.session = Absent{}
		e.notify(MsgNoMatch)
		return Result{Outcome: OutcomeNoMatch, Prefix: word}
	}

	applied, err := e.apply(ctx, Replacement{Start: anchor, End: pos, Text: cands[0]})
	if err != nil {
		e.session = Absent{}
		e.log.WithError(err).Warn("expand %q: edit failed", word)
		return Result{Outcome: OutcomeUnavailable, Prefix: word, Candidates: len(cands)}
	}

	e.session = &Active{
		Prefix:     word,
		Candidates: cands,
		Anchor:     anchor,
		Version:    applied.Version,
		End:        applied.End,
	}
	return Result{
		Outcome:     OutcomeExpanded,
		Prefix:      word,
		Replacement: cands[0],
		Candidates:  len(cands),
	}
}

// cycle replaces the current candidate with the next one. The session is
// left untouched if the edit fails.
func (e *Engine) cycle(ctx context.Context, act *Active, pos Point) Result {
	next := (act.Index + 1) % len(act.Candidates)
	text := act.Candidates[next]

	applied, err := e.apply(ctx, Replacement{Start: act.Anchor, End: pos, Text: text})
	if err != nil {
		e.log.WithError(err).Warn("cycle %q: edit failed", act.Prefix)
		return Result{Outcome: OutcomeUnavailable, Prefix: act.Prefix, Index: act.Index, Candidates: len(act.Candidates)}
	}

	act.Index = next
	act.Version = applied.Version
	act.End = applied.End
	return Result{
		Outcome:     OutcomeCycled,
		Prefix:      act.Prefix,
		Replacement: text,
		Index:       next,
		Candidates:  len(act.Candidates),
	}
}

func (e *Engine) apply(ctx context.Context, r Replacement) (ReplacementResult, error) {
	if err := ctx.Err(); err != nil {
		return ReplacementResult{}, err
	}
	e.editing.Store(true)
	defer e.editing.Store(false)
	return e.src.ApplyReplacement(ctx, r)
}

func (e *Engine) notify(msg string) {
	if e.notifier != nil {
		e.notifier.Notify(msg)
	}
}

// OnSelectionChanged ends the session when the cursor of the engine's
// editor moves anywhere other than where the last expansion left it.
func (e *Engine) OnSelectionChanged(editorID string, pos Point) {
	if e.editorID != "" && editorID != e.editorID {
		return
	}
	if e.editing.Load() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	act, ok := e.session.(*Active)
	if !ok || pos == act.Cursor() {
		return
	}
	e.session = Absent{}
	e.log.Debug("session for %q ended: cursor moved to %s", act.Prefix, pos)
}

// Session returns a snapshot of the current session.
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if act, ok := e.session.(*Active); ok {
		return act.clone()
	}
	return Absent{}
}

// Reset discards any session.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.session = Absent{}
	e.mu.Unlock()
}

// Detach drops the text source, e.g. when the editor closes. Later
// triggers are silent no-ops.
func (e *Engine) Detach() {
	e.mu.Lock()
	e.src = nil
	e.session = Absent{}
	e.mu.Unlock()
}
