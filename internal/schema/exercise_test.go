package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robworks/fencer/internal/types"
)

func TestExerciseFullShape(t *testing.T) {
	spec, diags := validateYAML(t, types.TagExercise, `
title: Archive a directory
difficulty: intermediate
scenario: You need to ship the site directory to a colleague.
hints:
  - tar bundles, gzip compresses.
  - The flags compose into one word.
solution: |
  ` + "```bash" + `
  tar -czf site.tar.gz site/
  ` + "```" + `
`)
	require.Empty(t, diags)
	require.NotNil(t, spec)

	exercise, ok := spec.(types.ExerciseSpec)
	require.True(t, ok)
	assert.Equal(t, "Archive a directory", exercise.Title)
	assert.Equal(t, types.DifficultyIntermediate, exercise.Difficulty)
	require.Len(t, exercise.Hints, 2)
	assert.Contains(t, exercise.Solution, "```bash\n")
	assert.Contains(t, exercise.Solution, "tar -czf site.tar.gz site/")
}

func TestExerciseHintsOptionalAndNeverNil(t *testing.T) {
	spec, diags := validateYAML(t, types.TagExercise, `
title: t
difficulty: beginner
scenario: s
solution: sol
`)
	require.Empty(t, diags)
	exercise := spec.(types.ExerciseSpec)
	require.NotNil(t, exercise.Hints, "hints resolve to an empty slice, not null")
	assert.Empty(t, exercise.Hints)
}

func TestExerciseRejectsUnknownDifficulty(t *testing.T) {
	spec, diags := validateYAML(t, types.TagExercise, `
title: t
difficulty: impossible
scenario: s
solution: sol
`)
	assert.Nil(t, spec)
	assertHasError(t, diags, types.SchemaError, "beginner, intermediate, advanced, got \"impossible\"")
}

func TestExerciseRequiredFields(t *testing.T) {
	spec, diags := validateYAML(t, types.TagExercise, "hints: []\n")
	assert.Nil(t, spec)
	for _, field := range []string{"title", "difficulty", "scenario", "solution"} {
		assertHasError(t, diags, types.SchemaError, "field "+field+" is required")
	}
}

func TestExerciseHintItemsMustBeStrings(t *testing.T) {
	spec, diags := validateYAML(t, types.TagExercise, `
title: t
difficulty: beginner
scenario: s
solution: sol
hints:
  - a fine hint
  - {not: a hint}
`)
	assert.Nil(t, spec)
	assertHasError(t, diags, types.SchemaError, "hints[1] must be a string, got mapping")
}
