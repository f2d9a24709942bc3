package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robworks/fencer/internal/types"
)

func TestScanSingleQuizBlock(t *testing.T) {
	doc := types.Document{
		ID: "docs/intro.md",
		Source: `# Intro

` + "```quiz" + `
question: "What does -r do?"
type: multiple-choice
` + "```" + `

More prose.
`,
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 1)

	block := blocks[0]
	assert.Equal(t, types.TagQuiz, block.Tag)
	assert.Equal(t, "question: \"What does -r do?\"\ntype: multiple-choice", block.Body)
	assert.Equal(t, 3, block.StartLine)
	assert.Equal(t, 6, block.EndLine)
	assert.Equal(t, "docs/intro.md", block.DocumentID)
	assert.Equal(t, 0, block.Ordinal)
}

func TestScanOrdinalsFollowDocumentOrder(t *testing.T) {
	doc := types.Document{
		ID: "docs/course.md",
		Source: strings.Join([]string{
			"```quiz",
			"question: one",
			"```",
			"",
			"```terminal",
			"steps: []",
			"```",
			"",
			"```exercise",
			"title: t",
			"```",
		}, "\n"),
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 3)

	assert.Equal(t, types.TagQuiz, blocks[0].Tag)
	assert.Equal(t, types.TagTerminal, blocks[1].Tag)
	assert.Equal(t, types.TagExercise, blocks[2].Tag)
	for i, block := range blocks {
		assert.Equal(t, i, block.Ordinal)
	}
}

func TestScanAllRecognizedTags(t *testing.T) {
	for _, tag := range types.AllTags() {
		t.Run(string(tag), func(t *testing.T) {
			doc := types.Document{
				ID:     "docs/tags.md",
				Source: "```" + string(tag) + "\nbody: here\n```\n",
			}
			blocks, diags := NewFenceScanner().Scan(doc)
			require.Empty(t, diags)
			require.Len(t, blocks, 1)
			assert.Equal(t, tag, blocks[0].Tag)
		})
	}
}

// An exercise solution routinely carries its own fenced code inside a
// YAML literal scalar. The indented inner fence must stay part of the
// body instead of terminating the exercise early.
func TestScanNestedBashFenceInSolution(t *testing.T) {
	doc := types.Document{
		ID: "docs/exercises.md",
		Source: strings.Join([]string{
			"```exercise",
			"title: Archive a directory",
			"solution: |",
			"  Run the following:",
			"  ```bash",
			"  tar -czf site.tar.gz site/",
			"  ```",
			"```",
			"after",
		}, "\n"),
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 1)

	block := blocks[0]
	assert.Equal(t, types.TagExercise, block.Tag)
	assert.Contains(t, block.Body, "```bash")
	assert.Contains(t, block.Body, "tar -czf site.tar.gz site/")
	assert.Equal(t, 1, block.StartLine)
	assert.Equal(t, 8, block.EndLine)
}

// A four-backtick opener tolerates a full three-backtick fence pair at
// column 0 inside its body; only a run of four or more closes it.
func TestScanLongerOpenerContainsShorterFencePair(t *testing.T) {
	doc := types.Document{
		ID: "docs/walkthrough.md",
		Source: strings.Join([]string{
			"````code-walkthrough",
			"language: markdown",
			"code: |",
			"  example",
			"```",
			"plain code",
			"```",
			"````",
		}, "\n"),
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].Body, "plain code")
	assert.Equal(t, 8, blocks[0].EndLine)
}

func TestScanCloserMayBeLongerThanOpener(t *testing.T) {
	doc := types.Document{
		ID:     "docs/close.md",
		Source: "```quiz\nquestion: q\n`````\n",
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 1)
	assert.Equal(t, "question: q", blocks[0].Body)
}

func TestScanUnterminatedFence(t *testing.T) {
	doc := types.Document{
		ID: "docs/broken.md",
		Source: strings.Join([]string{
			"```quiz",
			"question: complete",
			"```",
			"",
			"```terminal",
			"title: never closed",
		}, "\n"),
	}

	blocks, diags := NewFenceScanner().Scan(doc)

	require.Len(t, blocks, 1, "blocks before the broken fence survive")
	assert.Equal(t, types.TagQuiz, blocks[0].Tag)

	require.Len(t, diags, 1)
	diag := diags[0]
	assert.Equal(t, types.ParseError, diag.Kind)
	assert.Equal(t, types.SeverityError, diag.Severity)
	assert.Equal(t, "docs/broken.md", diag.DocumentID)
	assert.Equal(t, 5, diag.Line, "diagnostic points at the opener")
	assert.Contains(t, diag.Message, "terminal")
}

func TestScanIgnoresUnrecognizedFences(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"plain language fence", "```python\nprint('hi')\n```\n"},
		{"space before tag", "``` quiz\nquestion: q\n```\n"},
		{"tag with suffix", "```quizzes\nquestion: q\n```\n"},
		{"tilde delimiter", "~~~quiz\nquestion: q\n~~~\n"},
		{"bare fence", "```\ncode\n```\n"},
		{"two backticks only", "``quiz\nquestion: q\n``\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, diags := NewFenceScanner().Scan(types.Document{ID: "d.md", Source: tt.source})
			assert.Empty(t, blocks)
			assert.Empty(t, diags)
		})
	}
}

// Widget syntax quoted inside an ordinary code block is documentation,
// not a widget.
func TestScanQuotedWidgetFenceStaysQuoted(t *testing.T) {
	doc := types.Document{
		ID: "docs/authoring.md",
		Source: strings.Join([]string{
			"Write a quiz like this:",
			"",
			"````markdown",
			"```quiz",
			"question: Which flag?",
			"```",
			"````",
			"",
			"```quiz",
			"question: a real one",
			"```",
		}, "\n"),
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 1)
	assert.Equal(t, "question: a real one", blocks[0].Body)
	assert.Equal(t, 9, blocks[0].StartLine)
}

func TestScanIndentedOpener(t *testing.T) {
	doc := types.Document{
		ID:     "docs/list.md",
		Source: "  ```quiz\nquestion: q\n```\n",
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 1)
	assert.Equal(t, types.TagQuiz, blocks[0].Tag)
}

func TestScanCloserMustStartAtColumnZero(t *testing.T) {
	doc := types.Document{
		ID: "docs/indent.md",
		Source: strings.Join([]string{
			"```exercise",
			"solution: |",
			"  ```",
			"```",
		}, "\n"),
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 1)
	assert.Equal(t, "solution: |\n  ```", blocks[0].Body)
}

func TestScanCRLFSource(t *testing.T) {
	doc := types.Document{
		ID:     "docs/windows.md",
		Source: "```quiz\r\nquestion: q\r\n```\r\n",
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 1)
	assert.Equal(t, "question: q", blocks[0].Body)
}

func TestScanEmptyAndFencelessDocuments(t *testing.T) {
	for _, source := range []string{"", "no fences here\njust prose\n"} {
		blocks, diags := NewFenceScanner().Scan(types.Document{ID: "d.md", Source: source})
		assert.Empty(t, blocks)
		assert.Empty(t, diags)
	}
}

func TestScanEmptyBody(t *testing.T) {
	doc := types.Document{
		ID:     "docs/empty.md",
		Source: "```quiz\n```\n",
	}

	blocks, diags := NewFenceScanner().Scan(doc)
	require.Empty(t, diags)
	require.Len(t, blocks, 1)
	assert.Equal(t, "", blocks[0].Body)
}
