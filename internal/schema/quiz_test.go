package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robworks/fencer/internal/types"
)

func TestQuizTwoOptionsSecondCorrect(t *testing.T) {
	spec, diags := validateYAML(t, types.TagQuiz, `
question: Which flag makes cp recursive?
options:
  - text: -v
    correct: false
    feedback: -v is verbose output.
  - text: -r
    correct: true
    feedback: Right, -r copies directories recursively.
`)
	require.Empty(t, diags)
	require.NotNil(t, spec)

	quiz, ok := spec.(types.QuizSpec)
	require.True(t, ok)
	assert.Equal(t, "Which flag makes cp recursive?", quiz.Question)
	assert.Equal(t, types.QuizMultipleChoice, quiz.Kind, "kind defaults to multiple-choice")
	require.Len(t, quiz.Options, 2)
	assert.False(t, quiz.Options[0].Correct)
	assert.True(t, quiz.Options[1].Correct)
	assert.Equal(t, "-v is verbose output.", quiz.Options[0].Feedback)
	assert.Equal(t, "Right, -r copies directories recursively.", quiz.Options[1].Feedback)
}

func TestQuizKindAcceptsBothFieldNames(t *testing.T) {
	for _, key := range []string{"kind", "type"} {
		t.Run(key, func(t *testing.T) {
			spec, diags := validateYAML(t, types.TagQuiz, key+`: true-false
question: Symlinks can cross filesystems.
options:
  - text: "True"
    correct: true
  - text: "False"
`)
			require.Empty(t, diags)
			quiz := spec.(types.QuizSpec)
			assert.Equal(t, types.QuizTrueFalse, quiz.Kind)
		})
	}
}

func TestQuizRejectsUnknownKind(t *testing.T) {
	spec, diags := validateYAML(t, types.TagQuiz, `
question: q
kind: essay
options:
  - text: a
    correct: true
`)
	assert.Nil(t, spec)
	assertHasError(t, diags, types.SchemaError, "must be one of multiple-choice, true-false, got \"essay\"")
}

func TestQuizCorrectCountInvariant(t *testing.T) {
	tests := []struct {
		name    string
		options string
		found   string
	}{
		{
			name: "zero correct",
			options: `
  - text: a
  - text: b
`,
			found: "found 0",
		},
		{
			name: "two correct",
			options: `
  - text: a
    correct: true
  - text: b
    correct: true
`,
			found: "found 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, diags := validateYAML(t, types.TagQuiz, "question: q\noptions:"+tt.options)
			assert.Nil(t, spec)
			assertHasError(t, diags, types.SchemaError, tt.found)
			assertHasError(t, diags, types.SchemaError, "exactly one option correct")
		})
	}
}

func TestQuizEmptyOrMissingOptions(t *testing.T) {
	spec, diags := validateYAML(t, types.TagQuiz, "question: q\noptions: []\n")
	assert.Nil(t, spec)
	assertHasError(t, diags, types.SchemaError, "at least one option")

	spec, diags = validateYAML(t, types.TagQuiz, "question: q\n")
	assert.Nil(t, spec)
	assertHasError(t, diags, types.SchemaError, "field options is required")
}

func TestQuizOptionFieldDiagnosticsAreQualified(t *testing.T) {
	spec, diags := validateYAML(t, types.TagQuiz, `
question: q
options:
  - correct: true
  - text: 7
  - plain string
`)
	assert.Nil(t, spec)
	assertHasError(t, diags, types.SchemaError, "field options[0].text is required")
	assertHasError(t, diags, types.SchemaError, "field options[1].text must be a string, got integer")
	assertHasError(t, diags, types.SchemaError, "options[2] must be a mapping, got string")
}
