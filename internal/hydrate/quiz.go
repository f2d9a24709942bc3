package hydrate

import (
	"errors"
	"fmt"

	"github.com/robworks/fencer/internal/types"
)

// ErrQuizAnswered is returned by Select once a quiz is answered and
// retries are disabled.
var ErrQuizAnswered = errors.New("quiz already answered")

// QuizState is the quiz interaction state.
type QuizState int

const (
	QuizUnanswered QuizState = iota
	QuizAnswered
)

// Quiz drives a quiz widget: exactly one active selection, feedback on
// answer, and an optional retry allowance carried in the payload.
type Quiz struct {
	id       types.WidgetID
	spec     types.QuizSpec
	tracker  Tracker
	state    QuizState
	selected int
}

func newQuiz(id types.WidgetID, spec types.QuizSpec, tracker Tracker) *Quiz {
	return &Quiz{id: id, spec: spec, tracker: tracker, selected: -1}
}

func (q *Quiz) ID() types.WidgetID   { return q.id }
func (q *Quiz) Tag() types.WidgetTag { return types.TagQuiz }

// State returns the current interaction state.
func (q *Quiz) State() QuizState { return q.state }

// Selected returns the index of the active selection, or -1 before the
// quiz is answered.
func (q *Quiz) Selected() int { return q.selected }

// Options returns the options in authored order.
func (q *Quiz) Options() []types.QuizOption { return q.spec.Options }

// Select makes the option at index the single active selection and
// transitions to answered, returning the chosen option so the host can
// show its feedback and correctness. Selecting again is rejected
// unless the payload allows retries.
func (q *Quiz) Select(index int) (types.QuizOption, error) {
	if index < 0 || index >= len(q.spec.Options) {
		return types.QuizOption{}, fmt.Errorf("option %d out of range", index)
	}
	if q.state == QuizAnswered && !q.spec.AllowRetry {
		return types.QuizOption{}, ErrQuizAnswered
	}

	q.selected = index
	q.state = QuizAnswered

	option := q.spec.Options[index]
	track(q.tracker, EventQuizAnswered, map[string]any{
		"widget":  string(q.id),
		"option":  index,
		"correct": option.Correct,
	})
	return option, nil
}

// Correct reports whether the active selection is the correct option.
// Always false before the quiz is answered.
func (q *Quiz) Correct() bool {
	return q.selected >= 0 && q.spec.Options[q.selected].Correct
}
