// Package types provides common type definitions used throughout the fencer
// pipeline. This package contains shared types to avoid circular dependencies
// between the scanner, schema, IR, emitter, and runtime packages.
package types

// WidgetTag identifies one of the recognized interactive fence languages.
type WidgetTag string

const (
	TagQuiz            WidgetTag = "quiz"
	TagTerminal        WidgetTag = "terminal"
	TagExercise        WidgetTag = "exercise"
	TagCommandBuilder  WidgetTag = "command-builder"
	TagCodeWalkthrough WidgetTag = "code-walkthrough"
)

// AllTags returns the closed set of recognized fence tags in declaration order.
func AllTags() []WidgetTag {
	return []WidgetTag{TagQuiz, TagTerminal, TagExercise, TagCommandBuilder, TagCodeWalkthrough}
}

// Recognized reports whether tag is one of the five fence languages the
// scanner extracts. Anything else is left for the host generator.
func (t WidgetTag) Recognized() bool {
	switch t {
	case TagQuiz, TagTerminal, TagExercise, TagCommandBuilder, TagCodeWalkthrough:
		return true
	}
	return false
}

// Document is one Markdown source file flowing through a build pass.
type Document struct {
	// ID is the path identifier, relative to the docs root (e.g. "guides/install.md")
	ID string
	// Source is the raw Markdown text; it is read once and never mutated
	Source string
}

// FencedBlock is a recognized fenced region extracted from a document by the
// scanner. Blocks are consumed by the decoder/validator and discarded once
// the IR builder has run.
type FencedBlock struct {
	// Tag is the fence language (one of the five recognized tags)
	Tag WidgetTag
	// Body is the raw fence content with the delimiter lines stripped
	Body string
	// StartLine is the 1-based line number of the opening fence
	StartLine int
	// EndLine is the 1-based line number of the closing fence
	EndLine int
	// DocumentID identifies the originating document
	DocumentID string
	// Ordinal is the 0-based index of this block among recognized blocks in
	// its document, in source order
	Ordinal int
}

// WidgetID is the stable identity of one widget within a build. It is derived
// deterministically from {document ID, block ordinal, tag}, so unchanged
// input yields the same ID on every rebuild.
type WidgetID string

// WidgetSpec is the validated, typed payload of one interactive widget,
// independent of the YAML text it was authored in. Exactly one concrete
// variant exists per fence tag.
type WidgetSpec interface {
	// Tag reports which fence language produced this spec
	Tag() WidgetTag
}

// QuizKind enumerates the supported quiz formats.
type QuizKind string

const (
	QuizMultipleChoice QuizKind = "multiple-choice"
	QuizTrueFalse      QuizKind = "true-false"
)

// QuizOption is one selectable answer. Exactly one option per quiz carries
// Correct = true.
type QuizOption struct {
	Text     string `json:"text" yaml:"text"`
	Correct  bool   `json:"correct" yaml:"correct"`
	Feedback string `json:"feedback" yaml:"feedback"`
}

// QuizSpec is a single-answer question widget.
type QuizSpec struct {
	Question string       `json:"question" yaml:"question"`
	Kind     QuizKind     `json:"kind" yaml:"kind"`
	Options  []QuizOption `json:"options" yaml:"options"`
	// AllowRetry lets the reader change their answer after the first
	// selection; carried in the payload so the client runtime needs no
	// out-of-band configuration
	AllowRetry bool `json:"allowRetry" yaml:"allowRetry"`
}

func (QuizSpec) Tag() WidgetTag { return TagQuiz }

// TerminalStep is one command/output pair in a simulated terminal session.
// Narration defaults to the empty string, never null.
type TerminalStep struct {
	Command   string `json:"command" yaml:"command"`
	Output    string `json:"output" yaml:"output"`
	Narration string `json:"narration" yaml:"narration"`
}

// TerminalSpec replays an ordered, non-empty sequence of terminal steps.
type TerminalSpec struct {
	Title string         `json:"title" yaml:"title"`
	Steps []TerminalStep `json:"steps" yaml:"steps"`
}

func (TerminalSpec) Tag() WidgetTag { return TagTerminal }

// Difficulty enumerates exercise difficulty levels.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ExerciseSpec is a practice exercise with progressively disclosed hints and
// a hidden solution. Hints may be empty; disclosure is purely additive.
type ExerciseSpec struct {
	Title      string     `json:"title" yaml:"title"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	Scenario   string     `json:"scenario" yaml:"scenario"`
	Hints      []string   `json:"hints" yaml:"hints"`
	Solution   string     `json:"solution" yaml:"solution"`
}

func (ExerciseSpec) Tag() WidgetTag { return TagExercise }

// OptionType decides how a command-builder option behaves in the client:
// independently toggleable, radio-like single choice, or free value slot.
type OptionType string

const (
	OptionFlag   OptionType = "flag"
	OptionChoice OptionType = "choice"
	OptionValue  OptionType = "value"
)

// BuilderChoice is one (value, label) pair for a choice-typed option.
type BuilderChoice struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// BuilderOption is one flag within an option group.
type BuilderOption struct {
	Flag        string          `json:"flag" yaml:"flag"`
	Type        OptionType      `json:"type" yaml:"type"`
	Label       string          `json:"label" yaml:"label"`
	Description string          `json:"description" yaml:"description"`
	Choices     []BuilderChoice `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// BuilderGroup is a named, ordered set of options. Group declaration order is
// significant: the recomputed command string appends selections in this order.
type BuilderGroup struct {
	Name    string          `json:"name" yaml:"name"`
	Options []BuilderOption `json:"options" yaml:"options"`
}

// CommandBuilderSpec assembles a shell command from a non-empty base plus the
// flags currently selected in each group.
type CommandBuilderSpec struct {
	Base        string         `json:"base" yaml:"base"`
	Description string         `json:"description" yaml:"description"`
	Groups      []BuilderGroup `json:"groups" yaml:"groups"`
}

func (CommandBuilderSpec) Tag() WidgetTag { return TagCommandBuilder }

// Annotation attaches explanatory text to a 1-based line of a walkthrough's
// code. Line is always within [1, line count of Code], blank lines included.
type Annotation struct {
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}

// WalkthroughSpec is an annotated code listing.
type WalkthroughSpec struct {
	Language    string       `json:"language" yaml:"language"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Code        string       `json:"code" yaml:"code"`
	Annotations []Annotation `json:"annotations" yaml:"annotations"`
}

func (WalkthroughSpec) Tag() WidgetTag { return TagCodeWalkthrough }

// IRNode is the finalized representation of one widget: a validated spec plus
// its build identity and source location. IR nodes are what the emitter
// serializes and what the registry stores.
type IRNode struct {
	// ID is the deterministic widget identity
	ID WidgetID
	// DocumentID identifies the originating document
	DocumentID string
	// Ordinal is the block's 0-based index within its document
	Ordinal int
	// SourceLine is the opening fence line, for diagnostics and tooling
	SourceLine int
	// Spec is the typed widget payload
	Spec WidgetSpec
}

// Tag reports the node's fence language.
func (n *IRNode) Tag() WidgetTag { return n.Spec.Tag() }
