package emacs

import (
	"github.com/dshills/dabbrev/internal/dabbrev"
	"github.com/dshills/dabbrev/internal/dispatcher/execctx"
	"github.com/dshills/dabbrev/internal/dispatcher/handler"
)

// Action names.
const (
	ActionDabbrevExpand = "emacs.dabbrevExpand"
	ActionSelectLine    = "emacs.selectLine"
)

// Keys of Result.Data set by dabbrevExpand.
const (
	DataOutcome     = "outcome"
	DataReplacement = "replacement"
	DataIndex       = "index"
	DataCandidates  = "candidates"
)

// Option configures a Handler.
type Option func(*Handler)

// WithEnabled gates dabbrevExpand on fn; a disabled expansion is a no-op.
func WithEnabled(fn func() bool) Option {
	return func(h *Handler) { h.enabled = fn }
}

// Handler implements the emacs namespace.
type Handler struct {
	enabled func() bool
}

// NewHandler creates a new emacs handler.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Namespace returns the emacs namespace.
func (h *Handler) Namespace() string {
	return "emacs"
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionDabbrevExpand, ActionSelectLine:
		return true
	}
	return false
}

// HandleAction processes an emacs action.
func (h *Handler) HandleAction(action handler.Action, ctx *execctx.ExecutionContext) handler.Result {
	switch action.Name {
	case ActionDabbrevExpand:
		return h.dabbrevExpand(ctx)
	case ActionSelectLine:
		return h.selectLine(ctx)
	default:
		return handler.Errorf("unknown emacs action: %s", action.Name)
	}
}

func (h *Handler) dabbrevExpand(ctx *execctx.ExecutionContext) handler.Result {
	if h.enabled != nil && !h.enabled() {
		return handler.NoOpWithMessage("dabbrev disabled")
	}
	exp, err := ctx.Expander()
	if err != nil {
		return handler.Error(err)
	}
	if ed, err := ctx.RequireEditor(); err == nil && ctx.GetCount() > 1 {
		hist := ed.Document().History()
		hist.BeginGroup(ActionDabbrevExpand)
		defer hist.EndGroup()
	}

	var res dabbrev.Result
	for range ctx.GetCount() {
		res = exp.Expand(ctx.Context)
		if res.Outcome != dabbrev.OutcomeExpanded && res.Outcome != dabbrev.OutcomeCycled {
			break
		}
	}

	var out handler.Result
	switch res.Outcome {
	case dabbrev.OutcomeExpanded, dabbrev.OutcomeCycled:
		out = handler.Success()
	case dabbrev.OutcomeNoPrefix:
		out = handler.NoOpWithMessage(dabbrev.MsgNoPrefix)
	case dabbrev.OutcomeNoMatch:
		out = handler.NoOpWithMessage(dabbrev.MsgNoMatch)
	default:
		out = handler.NoOp()
	}
	return out.
		WithData(DataOutcome, string(res.Outcome)).
		WithData(DataReplacement, res.Replacement).
		WithData(DataIndex, res.Index).
		WithData(DataCandidates, res.Candidates)
}

func (h *Handler) selectLine(ctx *execctx.ExecutionContext) handler.Result {
	ed, err := ctx.RequireEditor()
	if err != nil {
		return handler.Error(err)
	}
	sel := ed.SelectLine(ctx.Context)
	return handler.Success().WithData("selection", sel.String())
}
