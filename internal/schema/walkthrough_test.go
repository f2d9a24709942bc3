package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robworks/fencer/internal/types"
)

const fiveLineBody = `
language: python
code: |
  import os
  import sys

  def main():
      print(os.getcwd())
annotations:
  - line: %d
    text: annotation under test
`

func TestWalkthroughAnnotationsWithinBounds(t *testing.T) {
	spec, diags := validateYAML(t, types.TagCodeWalkthrough, `
language: bash
title: Reading the backup script
code: |
  set -euo pipefail

  rsync -a src/ dst/
annotations:
  - line: 1
    text: Fail fast on any error.
  - line: 3
    text: Archive mode keeps permissions.
`)
	require.Empty(t, diags)
	require.NotNil(t, spec)

	w, ok := spec.(types.WalkthroughSpec)
	require.True(t, ok)
	assert.Equal(t, "bash", w.Language)
	assert.Equal(t, "set -euo pipefail\n\nrsync -a src/ dst/\n", w.Code)
	require.Len(t, w.Annotations, 2)
	assert.Equal(t, 1, w.Annotations[0].Line)
	assert.Equal(t, 3, w.Annotations[1].Line)
}

func TestWalkthroughRejectsLineBeyondCode(t *testing.T) {
	spec, diags := validateYAML(t, types.TagCodeWalkthrough, fmt.Sprintf(fiveLineBody, 6))
	assert.Nil(t, spec)

	assertHasError(t, diags, types.RangeError, "line 6 exceeds code block of 5 lines")
}

func TestWalkthroughRejectsLineZero(t *testing.T) {
	spec, diags := validateYAML(t, types.TagCodeWalkthrough, fmt.Sprintf(fiveLineBody, 0))
	assert.Nil(t, spec)

	assertHasError(t, diags, types.RangeError, "line 0 is out of range")
}

func TestWalkthroughAcceptsBoundaryLines(t *testing.T) {
	for _, line := range []int{1, 5} {
		t.Run(fmt.Sprintf("line %d", line), func(t *testing.T) {
			spec, diags := validateYAML(t, types.TagCodeWalkthrough, fmt.Sprintf(fiveLineBody, line))
			require.Empty(t, diags)
			require.NotNil(t, spec)
		})
	}
}

// Blank lines count toward the code length; the literal scalar's
// trailing newline does not add a phantom line.
func TestWalkthroughLineCounting(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"", 0},
		{"one line", 1},
		{"one line\n", 1},
		{"a\nb\n", 2},
		{"a\n\nb\n", 3},
		{"\n\n", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lineCount(tt.code), "code %q", tt.code)
	}
}

func TestWalkthroughAnnotationFieldErrors(t *testing.T) {
	spec, diags := validateYAML(t, types.TagCodeWalkthrough, `
language: go
code: |
  package main
annotations:
  - line: first
    text: t
  - text: missing line
`)
	assert.Nil(t, spec)
	assertHasError(t, diags, types.SchemaError, "field annotations[0].line must be an integer, got string")
	assertHasError(t, diags, types.SchemaError, "field annotations[1].line is required")
}

func TestWalkthroughOptionalAnnotations(t *testing.T) {
	spec, diags := validateYAML(t, types.TagCodeWalkthrough, `
language: go
code: |
  package main
`)
	require.Empty(t, diags)
	w := spec.(types.WalkthroughSpec)
	require.NotNil(t, w.Annotations, "annotations resolve to an empty slice, not null")
	assert.Empty(t, w.Annotations)
}
