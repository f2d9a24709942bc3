package schema

import (
	"github.com/robworks/fencer/internal/decoder"
	"github.com/robworks/fencer/internal/types"
)

// exercise validates an exercise block. Hints may be empty but when
// present must all be strings; the solution commonly holds a literal
// scalar with its own fenced code, which reaches this validator as an
// ordinary multi-line string.
func (c *checker) exercise(m *decoder.Mapping) types.WidgetSpec {
	root := c.root(m)

	spec := types.ExerciseSpec{}
	spec.Title, _ = root.requireString("title")
	spec.Difficulty = c.exerciseDifficulty(root)
	spec.Scenario, _ = root.requireString("scenario")
	spec.Hints = c.exerciseHints(root)
	spec.Solution, _ = root.requireString("solution")
	root.unknownKeys("title", "difficulty", "scenario", "hints", "solution")

	return spec
}

func (c *checker) exerciseDifficulty(root scope) types.Difficulty {
	raw, ok := root.requireString("difficulty")
	if !ok {
		return types.DifficultyBeginner
	}
	switch d := types.Difficulty(raw); d {
	case types.DifficultyBeginner, types.DifficultyIntermediate, types.DifficultyAdvanced:
		return d
	default:
		c.schemaErrorf(root.m.Line("difficulty"),
			"field difficulty must be one of beginner, intermediate, advanced, got %q", raw)
		return types.DifficultyBeginner
	}
}

func (c *checker) exerciseHints(root scope) []string {
	seq := root.optionalSequence("hints")
	hints := make([]string, 0, len(seq))
	for i, item := range seq {
		hint, ok := item.AsString()
		if !ok {
			c.schemaErrorf(item.Line(), "hints[%d] must be a string, got %s", i, item.Kind())
			continue
		}
		hints = append(hints, hint)
	}
	return hints
}
