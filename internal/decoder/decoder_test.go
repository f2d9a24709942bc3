package decoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robworks/fencer/internal/types"
)

func decodeBody(t *testing.T, body string) *Mapping {
	t.Helper()
	m, diag := Decode(types.FencedBlock{
		Tag:        types.TagQuiz,
		Body:       body,
		StartLine:  1,
		DocumentID: "docs/test.md",
	})
	require.Nil(t, diag)
	require.NotNil(t, m)
	return m
}

func TestDecodePreservesKeyOrder(t *testing.T) {
	m := decodeBody(t, strings.Join([]string{
		"zulu: 1",
		"alpha: 2",
		"mike: 3",
	}, "\n"))

	assert.Equal(t, []string{"zulu", "alpha", "mike"}, m.Keys())
}

func TestDecodeScalarTypes(t *testing.T) {
	m := decodeBody(t, strings.Join([]string{
		"question: What does -r do?",
		"correct: true",
		"line: 6",
		"weight: 1.5",
		"narration: null",
	}, "\n"))

	s, ok := mustGet(t, m, "question").AsString()
	require.True(t, ok)
	assert.Equal(t, "What does -r do?", s)

	b, ok := mustGet(t, m, "correct").AsBool()
	require.True(t, ok)
	assert.True(t, b)

	i, ok := mustGet(t, m, "line").AsInt()
	require.True(t, ok)
	assert.Equal(t, 6, i)

	f, ok := mustGet(t, m, "weight").AsFloat()
	require.True(t, ok)
	assert.InDelta(t, 1.5, f, 1e-9)

	assert.True(t, mustGet(t, m, "narration").IsNull())
}

func TestDecodeTypedAccessorsRejectWrongKind(t *testing.T) {
	m := decodeBody(t, "question: plain text")
	value := mustGet(t, m, "question")

	_, ok := value.AsBool()
	assert.False(t, ok)
	_, ok = value.AsInt()
	assert.False(t, ok)
	_, ok = value.AsSequence()
	assert.False(t, ok)
	_, ok = value.AsMapping()
	assert.False(t, ok)
	assert.Equal(t, KindString, value.Kind())
}

func TestDecodeNestedOptionSequence(t *testing.T) {
	m := decodeBody(t, strings.Join([]string{
		"question: Which flag recurses?",
		"options:",
		"  - text: -r",
		"    correct: true",
		"  - text: -v",
		"    correct: false",
	}, "\n"))

	options, ok := mustGet(t, m, "options").AsSequence()
	require.True(t, ok)
	require.Len(t, options, 2)

	first, ok := options[0].AsMapping()
	require.True(t, ok)
	text, _ := mustGet(t, first, "text").AsString()
	assert.Equal(t, "-r", text)
	correct, _ := mustGet(t, first, "correct").AsBool()
	assert.True(t, correct)
}

func TestDecodeLinesAreDocumentAbsolute(t *testing.T) {
	m, diag := Decode(types.FencedBlock{
		Tag:        types.TagQuiz,
		Body:       "question: q\noptions:\n  - text: a\n",
		StartLine:  10,
		DocumentID: "docs/offset.md",
	})
	require.Nil(t, diag)

	assert.Equal(t, 11, m.Line("question"), "body line 1 sits under the opener")
	assert.Equal(t, 12, m.Line("options"))

	options, _ := mustGet(t, m, "options").AsSequence()
	require.Len(t, options, 1)
	assert.Equal(t, 13, options[0].Line())
}

// Literal block scalars carry exercise solutions; their inner newlines
// and trailing newline must survive decoding untouched.
func TestDecodeLiteralBlockScalar(t *testing.T) {
	m := decodeBody(t, strings.Join([]string{
		"solution: |",
		"  ```bash",
		"  tar -czf site.tar.gz site/",
		"  ```",
	}, "\n"))

	solution, ok := mustGet(t, m, "solution").AsString()
	require.True(t, ok)
	assert.Equal(t, "```bash\ntar -czf site.tar.gz site/\n```\n", solution)
}

func TestDecodeMalformedYAML(t *testing.T) {
	block := types.FencedBlock{
		Tag:        types.TagTerminal,
		Body:       "title: ok\nsteps: [unclosed",
		StartLine:  7,
		DocumentID: "docs/bad.md",
		Ordinal:    2,
	}

	m, diag := Decode(block)
	assert.Nil(t, m)
	require.NotNil(t, diag)
	assert.Equal(t, types.ParseError, diag.Kind)
	assert.Equal(t, types.SeverityError, diag.Severity)
	assert.Equal(t, "docs/bad.md", diag.DocumentID)
	assert.Equal(t, 2, diag.BlockOrdinal)
	assert.Equal(t, 7, diag.Line, "parse diagnostics point at the opener")
	assert.NotEmpty(t, diag.Message)
}

func TestDecodeNonMappingTopLevel(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"sequence", "- a\n- b\n", "a sequence"},
		{"scalar", "just a sentence\n", "a scalar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, diag := Decode(types.FencedBlock{Body: tt.body, StartLine: 1, DocumentID: "d.md"})
			assert.Nil(t, m)
			require.NotNil(t, diag)
			assert.Equal(t, types.ParseError, diag.Kind)
			assert.Contains(t, diag.Message, tt.want)
		})
	}
}

func TestDecodeEmptyBodies(t *testing.T) {
	for _, body := range []string{"", "   ", "# only a comment", "null", "~"} {
		m, diag := Decode(types.FencedBlock{Body: body, StartLine: 1, DocumentID: "d.md"})
		require.Nil(t, diag, "body %q", body)
		require.NotNil(t, m, "body %q", body)
		assert.Equal(t, 0, m.Len(), "body %q", body)
	}
}

func TestDecodeDuplicateKeyLastWins(t *testing.T) {
	m := decodeBody(t, "title: first\nbase: tar\ntitle: second\n")

	assert.Equal(t, []string{"title", "base"}, m.Keys(), "first position is kept")
	title, _ := mustGet(t, m, "title").AsString()
	assert.Equal(t, "second", title)
}

func TestDecodeResolvesAliases(t *testing.T) {
	m := decodeBody(t, "defaults: &d\n  correct: false\nfirst: *d\n")

	first, ok := mustGet(t, m, "first").AsMapping()
	require.True(t, ok)
	correct, ok := mustGet(t, first, "correct").AsBool()
	require.True(t, ok)
	assert.False(t, correct)
}

func TestDecodeQuotedSpecialCharacters(t *testing.T) {
	m := decodeBody(t, `question: "She said \"hi\" & left <tag> 'alone'"`)

	question, _ := mustGet(t, m, "question").AsString()
	assert.Equal(t, `She said "hi" & left <tag> 'alone'`, question)
}

func mustGet(t *testing.T, m *Mapping, key string) Value {
	t.Helper()
	value, ok := m.Get(key)
	require.True(t, ok, "key %q missing", key)
	return value
}
