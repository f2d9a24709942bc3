package hydrate

import "github.com/robworks/fencer/internal/types"

// Exercise drives an exercise widget: hints reveal one at a time and
// never un-reveal, and the solution toggles between hidden and shown.
// Nothing is validated; the widget is pure disclosure.
type Exercise struct {
	id            types.WidgetID
	spec          types.ExerciseSpec
	tracker       Tracker
	hintsRevealed int
	solutionShown bool
}

func newExercise(id types.WidgetID, spec types.ExerciseSpec, tracker Tracker) *Exercise {
	return &Exercise{id: id, spec: spec, tracker: tracker}
}

func (e *Exercise) ID() types.WidgetID   { return e.id }
func (e *Exercise) Tag() types.WidgetTag { return types.TagExercise }

// HintsRevealed returns how many hints are currently visible.
func (e *Exercise) HintsRevealed() int { return e.hintsRevealed }

// RevealedHints returns the visible hints in authored order.
func (e *Exercise) RevealedHints() []string {
	return e.spec.Hints[:e.hintsRevealed]
}

// RevealHint reveals the next hint and returns it. ok is false once
// every hint is visible.
func (e *Exercise) RevealHint() (string, bool) {
	if e.hintsRevealed >= len(e.spec.Hints) {
		return "", false
	}
	hint := e.spec.Hints[e.hintsRevealed]
	e.hintsRevealed++

	track(e.tracker, EventExerciseHint, map[string]any{
		"widget": string(e.id),
		"hint":   e.hintsRevealed,
		"of":     len(e.spec.Hints),
	})
	return hint, true
}

// SolutionShown reports whether the solution is currently visible.
func (e *Exercise) SolutionShown() bool { return e.solutionShown }

// ToggleSolution flips solution visibility and returns the new state.
func (e *Exercise) ToggleSolution() bool {
	e.solutionShown = !e.solutionShown

	track(e.tracker, EventExerciseSolution, map[string]any{
		"widget": string(e.id),
		"shown":  e.solutionShown,
	})
	return e.solutionShown
}

// Solution returns the solution text. ok is false while it is hidden.
func (e *Exercise) Solution() (string, bool) {
	if !e.solutionShown {
		return "", false
	}
	return e.spec.Solution, true
}
