// Package decoder turns the YAML body of a fenced block into an
// ordered, line-annotated mapping.
//
// Widget validation cares about things encoding/yaml-style struct
// decoding throws away: the order keys were written in, the source
// line of every key and value, and the exact YAML type of each scalar.
// The decoder therefore walks the yaml.v3 node tree directly and
// produces a Mapping that preserves all three, so validators can report
// "line 12: options must be a sequence, got string" instead of a bare
// type mismatch.
//
// Lines in decoded values are absolute document lines, already offset
// by the position of the fence, so diagnostics built from them point
// straight into the author's Markdown file.
package decoder

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robworks/fencer/internal/types"
)

// maxNestingDepth bounds recursion while walking the node tree. Widget
// configs are a handful of levels deep; anything past this is either a
// mistake or a crafted input.
const maxNestingDepth = 64

// Kind discriminates the shape of a decoded Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindSequence
	KindMapping
)

// String returns the author-facing name of the kind, used in
// type-mismatch diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is one decoded YAML value: a typed scalar, a sequence, or a
// nested mapping. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	b    bool
	i    int
	f    float64
	seq  []Value
	m    *Mapping
	line int
}

// Kind returns the value's shape.
func (v Value) Kind() Kind { return v.kind }

// Line returns the 1-based document line the value starts on.
func (v Value) Line() int { return v.line }

// IsNull reports whether the value is YAML null (or an empty slot).
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the scalar string value, if the value is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsBool returns the boolean value, if the value is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer value, if the value is an integer.
func (v Value) AsInt() (int, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float value, if the value is a float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsSequence returns the element slice, if the value is a sequence.
// Callers must not mutate the returned slice.
func (v Value) AsSequence() ([]Value, bool) { return v.seq, v.kind == KindSequence }

// AsMapping returns the nested mapping, if the value is a mapping.
func (v Value) AsMapping() (*Mapping, bool) { return v.m, v.kind == KindMapping }

// Pair is one key/value entry of a Mapping. Line is the document line
// of the key.
type Pair struct {
	Key   string
	Value Value
	Line  int
}

// Mapping is a YAML mapping with string keys in authored order. When a
// key is written twice the last value wins but the first position is
// kept, matching what an author sees reading top to bottom.
type Mapping struct {
	pairs []Pair
	index map[string]int
}

func newMapping(capacity int) *Mapping {
	return &Mapping{index: make(map[string]int, capacity)}
}

// Len returns the number of distinct keys.
func (m *Mapping) Len() int { return len(m.pairs) }

// Pairs returns the entries in authored order. Callers must not mutate
// the returned slice.
func (m *Mapping) Pairs() []Pair { return m.pairs }

// Keys returns the key names in authored order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.pairs))
	for i, pair := range m.pairs {
		keys[i] = pair.Key
	}
	return keys
}

// Get returns the value for key.
func (m *Mapping) Get(key string) (Value, bool) {
	at, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.pairs[at].Value, true
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Line returns the document line of key, or 0 when absent.
func (m *Mapping) Line(key string) int {
	at, ok := m.index[key]
	if !ok {
		return 0
	}
	return m.pairs[at].Line
}

func (m *Mapping) put(key string, value Value, line int) {
	if at, ok := m.index[key]; ok {
		m.pairs[at].Value = value
		return
	}
	m.index[key] = len(m.pairs)
	m.pairs = append(m.pairs, Pair{Key: key, Value: value, Line: line})
}

// Decode parses a fence body into an ordered Mapping. An empty or
// null body decodes to an empty mapping so validators can report the
// missing fields themselves. Malformed YAML, a non-mapping top level,
// or a parser panic yields a ParseError diagnostic pointing at the
// fence opener; the error never escapes the block.
func Decode(block types.FencedBlock) (m *Mapping, diag *types.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			m = nil
			diag = parseDiagnostic(block, fmt.Sprintf("yaml parser panic: %v", r))
		}
	}()

	// The scanner joins body lines without a final line break. Restore
	// it so clip chomping keeps the trailing newline of literal scalars.
	src := block.Body
	if src != "" {
		src += "\n"
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(src), &root); err != nil {
		return nil, parseDiagnostic(block, yamlErrorMessage(err))
	}

	doc := documentNode(&root)
	if doc == nil || (doc.Kind == yaml.ScalarNode && doc.Tag == "!!null") {
		return newMapping(0), nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, parseDiagnostic(block,
			fmt.Sprintf("widget config must be a YAML mapping, got %s", nodeKindName(doc)))
	}

	// Body line 1 sits directly under the opening fence.
	decoded, err := buildMapping(doc, block.StartLine, 0)
	if err != nil {
		return nil, parseDiagnostic(block, err.Error())
	}
	return decoded, nil
}

func parseDiagnostic(block types.FencedBlock, message string) *types.Diagnostic {
	return &types.Diagnostic{
		DocumentID:   block.DocumentID,
		BlockOrdinal: block.Ordinal,
		Kind:         types.ParseError,
		Severity:     types.SeverityError,
		Message:      message,
		Line:         block.StartLine,
	}
}

// yamlErrorMessage strips the library prefix so diagnostics read as
// one sentence. Line numbers inside the message are body-relative.
func yamlErrorMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "yaml: ")
}

func documentNode(root *yaml.Node) *yaml.Node {
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		return resolveAlias(root.Content[0])
	}
	if root.Kind == 0 {
		return nil
	}
	return root
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		return node.Alias
	}
	return node
}

func buildMapping(node *yaml.Node, offset, depth int) (*Mapping, error) {
	if depth > maxNestingDepth {
		return nil, fmt.Errorf("nesting exceeds %d levels", maxNestingDepth)
	}
	m := newMapping(len(node.Content) / 2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := resolveAlias(node.Content[i])
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be plain strings", keyNode.Line+offset)
		}
		value, err := buildValue(node.Content[i+1], offset, depth+1)
		if err != nil {
			return nil, err
		}
		m.put(keyNode.Value, value, keyNode.Line+offset)
	}
	return m, nil
}

func buildValue(node *yaml.Node, offset, depth int) (Value, error) {
	if depth > maxNestingDepth {
		return Value{}, fmt.Errorf("nesting exceeds %d levels", maxNestingDepth)
	}
	node = resolveAlias(node)
	line := node.Line + offset

	switch node.Kind {
	case yaml.ScalarNode:
		return scalarValue(node, line)
	case yaml.SequenceNode:
		seq := make([]Value, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := buildValue(item, offset, depth+1)
			if err != nil {
				return Value{}, err
			}
			seq = append(seq, value)
		}
		return Value{kind: KindSequence, seq: seq, line: line}, nil
	case yaml.MappingNode:
		nested, err := buildMapping(node, offset, depth)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindMapping, m: nested, line: line}, nil
	default:
		return Value{}, fmt.Errorf("line %d: unsupported YAML construct", line)
	}
}

func scalarValue(node *yaml.Node, line int) (Value, error) {
	switch node.Tag {
	case "!!null":
		return Value{kind: KindNull, line: line}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("line %d: invalid boolean %q", line, node.Value)
		}
		return Value{kind: KindBool, b: b, line: line}, nil
	case "!!int":
		var i int
		if err := node.Decode(&i); err != nil {
			return Value{}, fmt.Errorf("line %d: invalid integer %q", line, node.Value)
		}
		return Value{kind: KindInt, i: i, line: line}, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("line %d: invalid float %q", line, node.Value)
		}
		return Value{kind: KindFloat, f: f, line: line}, nil
	default:
		// !!str plus any unrecognized tag keeps the literal text.
		return Value{kind: KindString, str: node.Value, line: line}, nil
	}
}

func nodeKindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.MappingNode:
		return "a mapping"
	default:
		return "an unsupported construct"
	}
}
