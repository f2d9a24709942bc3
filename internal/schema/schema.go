// Package schema validates decoded widget configs and produces typed
// widget specs.
//
// One validator exists per fence tag. Each checks that required fields
// are present and correctly typed, that enumerated fields stay inside
// their closed set, and that cross-field invariants hold: a quiz marks
// exactly one option correct, every walkthrough annotation lands inside
// the code listing, a command builder has a non-empty base. All
// violations in a block are collected and reported together so an
// author fixes the whole block in one pass; validation never stops at
// the first error and never mutates its input.
//
// Unknown keys are reported as warnings, not errors: a typo'd optional
// field should not break a build, but the author should hear about it.
package schema

import (
	"fmt"

	"github.com/robworks/fencer/internal/decoder"
	"github.com/robworks/fencer/internal/types"
)

// Validate dispatches on the block's tag and returns either a typed
// spec or the full list of diagnostics explaining why the block is
// invalid. The returned spec is non-nil exactly when no error-severity
// diagnostic was produced; warnings may accompany a valid spec.
func Validate(block types.FencedBlock, config *decoder.Mapping) (types.WidgetSpec, []types.Diagnostic) {
	c := &checker{block: block}

	var spec types.WidgetSpec
	switch block.Tag {
	case types.TagQuiz:
		spec = c.quiz(config)
	case types.TagTerminal:
		spec = c.terminal(config)
	case types.TagExercise:
		spec = c.exercise(config)
	case types.TagCommandBuilder:
		spec = c.commandBuilder(config)
	case types.TagCodeWalkthrough:
		spec = c.codeWalkthrough(config)
	default:
		c.schemaErrorf(0, "unrecognized widget tag %q", block.Tag)
	}

	if c.failed {
		return nil, c.diags
	}
	return spec, c.diags
}

// checker accumulates diagnostics for one block. A line of 0 in any
// record call falls back to the opening fence line.
type checker struct {
	block  types.FencedBlock
	diags  []types.Diagnostic
	failed bool
}

func (c *checker) record(kind types.DiagnosticKind, severity types.Severity, line int, format string, args ...any) {
	if line <= 0 {
		line = c.block.StartLine
	}
	if severity >= types.SeverityError {
		c.failed = true
	}
	c.diags = append(c.diags, types.Diagnostic{
		DocumentID:   c.block.DocumentID,
		BlockOrdinal: c.block.Ordinal,
		Kind:         kind,
		Severity:     severity,
		Message:      fmt.Sprintf(format, args...),
		Line:         line,
	})
}

func (c *checker) schemaErrorf(line int, format string, args ...any) {
	c.record(types.SchemaError, types.SeverityError, line, format, args...)
}

func (c *checker) rangeErrorf(line int, format string, args ...any) {
	c.record(types.RangeError, types.SeverityError, line, format, args...)
}

func (c *checker) warnf(line int, format string, args ...any) {
	c.record(types.SchemaError, types.SeverityWarning, line, format, args...)
}

// scope wraps one mapping being validated, carrying the dotted path
// used to qualify field names in diagnostics ("groups[0].options[2]")
// and the fallback line for missing-field reports.
type scope struct {
	c    *checker
	m    *decoder.Mapping
	name string
	line int
}

// root wraps the block's top-level mapping.
func (c *checker) root(m *decoder.Mapping) scope {
	return scope{c: c, m: m, line: c.block.StartLine}
}

func (s scope) qualified(key string) string {
	if s.name == "" {
		return key
	}
	return s.name + "." + key
}

// missingLine picks the best line for a field that is not there: the
// key's own line when the key exists with a null value, otherwise the
// enclosing mapping's line.
func (s scope) missingLine(key string) int {
	if line := s.m.Line(key); line > 0 {
		return line
	}
	return s.line
}

// item narrows a sequence element to a nested scope. name is relative
// to this scope, e.g. "options[2]".
func (s scope) item(value decoder.Value, name string) (scope, bool) {
	m, ok := value.AsMapping()
	if !ok {
		s.c.schemaErrorf(value.Line(), "%s must be a mapping, got %s", s.qualified(name), value.Kind())
		return scope{}, false
	}
	return scope{c: s.c, m: m, name: s.qualified(name), line: value.Line()}, true
}

// requireString fetches a required string field. Null counts as
// missing so "title:" with no value reads as an omission.
func (s scope) requireString(key string) (string, bool) {
	value, ok := s.m.Get(key)
	if !ok || value.IsNull() {
		s.c.schemaErrorf(s.missingLine(key), "field %s is required", s.qualified(key))
		return "", false
	}
	str, ok := value.AsString()
	if !ok {
		s.c.schemaErrorf(value.Line(), "field %s must be a string, got %s", s.qualified(key), value.Kind())
		return "", false
	}
	return str, true
}

// optionalString fetches an optional string field, returning fallback
// when absent. A present value of the wrong type is still an error.
func (s scope) optionalString(key, fallback string) string {
	value, ok := s.m.Get(key)
	if !ok || value.IsNull() {
		return fallback
	}
	str, ok := value.AsString()
	if !ok {
		s.c.schemaErrorf(value.Line(), "field %s must be a string, got %s", s.qualified(key), value.Kind())
		return fallback
	}
	return str
}

func (s scope) optionalBool(key string, fallback bool) bool {
	value, ok := s.m.Get(key)
	if !ok || value.IsNull() {
		return fallback
	}
	b, ok := value.AsBool()
	if !ok {
		s.c.schemaErrorf(value.Line(), "field %s must be a boolean, got %s", s.qualified(key), value.Kind())
		return fallback
	}
	return b
}

func (s scope) requireInt(key string) (int, bool) {
	value, ok := s.m.Get(key)
	if !ok || value.IsNull() {
		s.c.schemaErrorf(s.missingLine(key), "field %s is required", s.qualified(key))
		return 0, false
	}
	n, ok := value.AsInt()
	if !ok {
		s.c.schemaErrorf(value.Line(), "field %s must be an integer, got %s", s.qualified(key), value.Kind())
		return 0, false
	}
	return n, true
}

// requireSequence fetches a required sequence field. Emptiness is the
// caller's concern; only presence and type are checked here.
func (s scope) requireSequence(key string) ([]decoder.Value, bool) {
	value, ok := s.m.Get(key)
	if !ok || value.IsNull() {
		s.c.schemaErrorf(s.missingLine(key), "field %s is required", s.qualified(key))
		return nil, false
	}
	seq, ok := value.AsSequence()
	if !ok {
		s.c.schemaErrorf(value.Line(), "field %s must be a sequence, got %s", s.qualified(key), value.Kind())
		return nil, false
	}
	return seq, true
}

// optionalSequence fetches an optional sequence field; absent or null
// means no elements.
func (s scope) optionalSequence(key string) []decoder.Value {
	value, ok := s.m.Get(key)
	if !ok || value.IsNull() {
		return nil
	}
	seq, ok := value.AsSequence()
	if !ok {
		s.c.schemaErrorf(value.Line(), "field %s must be a sequence, got %s", s.qualified(key), value.Kind())
		return nil
	}
	return seq
}

// unknownKeys warns once per key outside this mapping's closed set.
func (s scope) unknownKeys(known ...string) {
	allowed := make(map[string]bool, len(known))
	for _, key := range known {
		allowed[key] = true
	}
	for _, pair := range s.m.Pairs() {
		if !allowed[pair.Key] {
			s.c.warnf(pair.Line, "unknown field %s ignored", s.qualified(pair.Key))
		}
	}
}
