package schema

import (
	"fmt"

	"github.com/robworks/fencer/internal/decoder"
	"github.com/robworks/fencer/internal/types"
)

// terminal validates a terminal block. Step order is significant and
// preserved exactly as authored; narration defaults to the empty
// string, never null.
func (c *checker) terminal(m *decoder.Mapping) types.WidgetSpec {
	root := c.root(m)

	title, _ := root.requireString("title")
	steps := c.terminalSteps(root)
	root.unknownKeys("title", "steps")

	return types.TerminalSpec{
		Title: title,
		Steps: steps,
	}
}

func (c *checker) terminalSteps(root scope) []types.TerminalStep {
	seq, ok := root.requireSequence("steps")
	if !ok {
		return nil
	}
	if len(seq) == 0 {
		c.schemaErrorf(root.m.Line("steps"), "field steps must contain at least one step")
		return nil
	}

	steps := make([]types.TerminalStep, 0, len(seq))
	for i, item := range seq {
		s, ok := root.item(item, fmt.Sprintf("steps[%d]", i))
		if !ok {
			continue
		}
		step := types.TerminalStep{}
		step.Command, _ = s.requireString("command")
		step.Output, _ = s.requireString("output")
		step.Narration = s.optionalString("narration", "")
		s.unknownKeys("command", "output", "narration")

		steps = append(steps, step)
	}
	return steps
}
