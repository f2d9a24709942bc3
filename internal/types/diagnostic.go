package types

import (
	"fmt"
	"time"
)

// DiagnosticKind classifies a validation or parse failure.
type DiagnosticKind string

const (
	// ParseError covers malformed fences and malformed YAML
	ParseError DiagnosticKind = "ParseError"
	// SchemaError covers missing, mistyped, or invalid-enum fields
	SchemaError DiagnosticKind = "SchemaError"
	// RangeError covers cross-field invariant violations such as an
	// annotation line outside its code block
	RangeError DiagnosticKind = "RangeError"
	// DuplicateIdError is a defensive, build-internal check on widget IDs
	DuplicateIdError DiagnosticKind = "DuplicateIdError"
)

// Severity represents the severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// MarshalYAML encodes the severity as its string form.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Diagnostic is a structured record of one pipeline failure, carrying enough
// location context to direct an author to the offending block.
type Diagnostic struct {
	// DocumentID identifies the document containing the failure
	DocumentID string `json:"document" yaml:"document"`
	// BlockOrdinal is the 0-based index of the offending block, or -1 when
	// the failure is not tied to a specific block
	BlockOrdinal int `json:"block" yaml:"block"`
	// Kind classifies the failure
	Kind DiagnosticKind `json:"kind" yaml:"kind"`
	// Severity decides whether strict mode fails the build
	Severity Severity `json:"severity" yaml:"severity"`
	// Message is the author-facing description of the failure
	Message string `json:"message" yaml:"message"`
	// Line is the 1-based source line hint (usually the opening fence line)
	Line int `json:"line" yaml:"line"`
	// Timestamp records when the diagnostic was collected
	Timestamp time.Time `json:"-" yaml:"-"`
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.BlockOrdinal < 0 {
		return fmt.Sprintf("%s:%d: %s: %s", d.DocumentID, d.Line, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s:%d: block %d: %s: %s", d.DocumentID, d.Line, d.BlockOrdinal, d.Kind, d.Message)
}

// EventType represents the type of widget registry event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// WidgetEvent represents a change in the widget registry, used for real-time
// notifications to watchers like the preview server.
type WidgetEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Widget contains the widget node (may be nil for removed events)
	Widget *IRNode
	// Timestamp records when the event occurred for ordering and filtering
	Timestamp time.Time
}
