package hydrate

import (
	"errors"

	"github.com/robworks/fencer/internal/types"
)

// ErrTerminalComplete is returned by Next once every step has played.
var ErrTerminalComplete = errors.New("terminal session already complete")

// TerminalState is the simulated-terminal interaction state.
type TerminalState int

const (
	TerminalIdle TerminalState = iota
	TerminalShowingStep
	TerminalComplete
)

// Terminal drives a simulated terminal session. Steps play strictly in
// order on an explicit advance action; there is no skipping ahead.
type Terminal struct {
	id      types.WidgetID
	spec    types.TerminalSpec
	tracker Tracker
	state   TerminalState
	step    int
}

func newTerminal(id types.WidgetID, spec types.TerminalSpec, tracker Tracker) *Terminal {
	return &Terminal{id: id, spec: spec, tracker: tracker, step: -1}
}

func (t *Terminal) ID() types.WidgetID   { return t.id }
func (t *Terminal) Tag() types.WidgetTag { return types.TagTerminal }

// State returns the current interaction state.
func (t *Terminal) State() TerminalState { return t.state }

// StepIndex returns the index of the step being shown, or -1 while
// idle. After completion it remains on the last step.
func (t *Terminal) StepIndex() int { return t.step }

// Current returns the step being shown. ok is false while idle.
func (t *Terminal) Current() (types.TerminalStep, bool) {
	if t.step < 0 {
		return types.TerminalStep{}, false
	}
	return t.spec.Steps[t.step], true
}

// Next advances the session: idle shows the first step, each further
// advance shows the following step, and advancing past the last step
// completes the session.
func (t *Terminal) Next() error {
	switch t.state {
	case TerminalComplete:
		return ErrTerminalComplete
	case TerminalIdle:
		t.state = TerminalShowingStep
		t.step = 0
	case TerminalShowingStep:
		if t.step >= len(t.spec.Steps)-1 {
			t.state = TerminalComplete
		} else {
			t.step++
		}
	}

	track(t.tracker, EventTerminalStep, map[string]any{
		"widget":   string(t.id),
		"step":     t.step,
		"complete": t.state == TerminalComplete,
	})
	return nil
}

// Reset returns the session to idle so it can be replayed.
func (t *Terminal) Reset() {
	t.state = TerminalIdle
	t.step = -1
}
