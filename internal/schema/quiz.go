package schema

import (
	"fmt"

	"github.com/robworks/fencer/internal/decoder"
	"github.com/robworks/fencer/internal/types"
)

// quiz validates a quiz block. The format field is accepted under both
// its names, kind and type, and defaults to multiple-choice when
// omitted. Exactly one option must be marked correct regardless of
// format.
func (c *checker) quiz(m *decoder.Mapping) types.WidgetSpec {
	root := c.root(m)

	question, _ := root.requireString("question")
	kind := c.quizKind(root)
	options := c.quizOptions(root)
	root.unknownKeys("question", "kind", "type", "options")

	return types.QuizSpec{
		Question: question,
		Kind:     kind,
		Options:  options,
	}
}

func (c *checker) quizKind(root scope) types.QuizKind {
	key := "kind"
	if !root.m.Has("kind") && root.m.Has("type") {
		key = "type"
	}
	raw := root.optionalString(key, string(types.QuizMultipleChoice))

	switch kind := types.QuizKind(raw); kind {
	case types.QuizMultipleChoice, types.QuizTrueFalse:
		return kind
	default:
		c.schemaErrorf(root.m.Line(key),
			"field %s must be one of multiple-choice, true-false, got %q", key, raw)
		return types.QuizMultipleChoice
	}
}

func (c *checker) quizOptions(root scope) []types.QuizOption {
	seq, ok := root.requireSequence("options")
	if !ok {
		return nil
	}
	if len(seq) == 0 {
		c.schemaErrorf(root.m.Line("options"), "field options must contain at least one option")
		return nil
	}

	options := make([]types.QuizOption, 0, len(seq))
	correct := 0
	for i, item := range seq {
		s, ok := root.item(item, fmt.Sprintf("options[%d]", i))
		if !ok {
			continue
		}
		option := types.QuizOption{}
		option.Text, _ = s.requireString("text")
		option.Correct = s.optionalBool("correct", false)
		option.Feedback = s.optionalString("feedback", "")
		s.unknownKeys("text", "correct", "feedback")

		if option.Correct {
			correct++
		}
		options = append(options, option)
	}

	if correct != 1 {
		c.schemaErrorf(root.m.Line("options"),
			"quiz must mark exactly one option correct: true, found %d", correct)
	}
	return options
}
