// Package scanner locates interactive widget fences in Markdown source.
//
// The scanner walks a document line by line and tracks fence delimiter
// state the way a CommonMark parser does, rather than matching blocks
// with a single regular expression. This matters for authored content:
// an exercise solution frequently embeds its own ```bash fence inside a
// YAML literal scalar, and a docs page that teaches the widget syntax
// may quote a ```quiz fence inside an ordinary code block. Both cases
// are handled by the delimiter rules below.
//
// The scanner provides:
//   - Recognition of opening fences: a run of three or more backticks
//     immediately followed by exactly one recognized widget tag
//   - CommonMark-style close matching: a closing fence must sit at
//     column 0, use the same delimiter character, be at least as long
//     as the opener, and carry no info string
//   - Opaque treatment of non-widget fences, so quoted widget syntax
//     inside ordinary code blocks is never scanned as a real widget
//   - ParseError diagnostics for fences left open at end of document
package scanner

import (
	"strings"

	"github.com/robworks/fencer/internal/types"
)

// minFenceLength is the shortest delimiter run that opens a fence.
const minFenceLength = 3

// FenceScanner extracts widget blocks from Markdown documents. The
// zero value is not usable; construct with NewFenceScanner. A single
// scanner is safe for concurrent use because Scan keeps all state on
// the stack.
type FenceScanner struct {
	// tags is the set of fence info strings treated as widget openers.
	tags map[types.WidgetTag]bool
}

// NewFenceScanner creates a scanner recognizing the five built-in
// widget tags.
func NewFenceScanner() *FenceScanner {
	tags := make(map[types.WidgetTag]bool, len(types.AllTags()))
	for _, tag := range types.AllTags() {
		tags[tag] = true
	}
	return &FenceScanner{tags: tags}
}

// scanState tracks what kind of fence the scanner is currently inside.
type scanState int

const (
	// stateText means the current line is ordinary Markdown.
	stateText scanState = iota
	// stateWidget means we are accumulating the body of a widget fence.
	stateWidget
	// statePassive means we are inside a non-widget code fence and
	// everything up to its closer is opaque.
	statePassive
)

// Scan walks the document and returns every recognized widget block in
// source order, plus diagnostics for fences that never close. Ordinals
// are assigned per document starting at zero. Line numbers in the
// returned blocks and diagnostics are 1-based.
//
// Scanning is single-pass and stateless between calls; to rescan a
// changed document simply call Scan again.
func (s *FenceScanner) Scan(doc types.Document) ([]types.FencedBlock, []types.Diagnostic) {
	lines := splitLines(doc.Source)

	var (
		blocks []types.FencedBlock
		diags  []types.Diagnostic

		state     = stateText
		fenceChar byte
		fenceLen  int
		openLine  int // 1-based line of the current opening fence
		openTag   types.WidgetTag
		body      []string
		ordinal   int
	)

	for i, line := range lines {
		lineNo := i + 1

		switch state {
		case stateText:
			char, length, info, indented := fenceLine(line)
			if length < minFenceLength {
				continue
			}
			tag, isTag := s.widgetTag(char, info)
			if isTag {
				state = stateWidget
				fenceChar = char
				fenceLen = length
				openLine = lineNo
				openTag = tag
				body = body[:0]
				continue
			}
			// Any other fence is opaque content. Indented openers
			// (inside lists, blockquote reflows) still count so a
			// quoted widget fence below them stays quoted.
			if strings.TrimSpace(info) != "" || !indented {
				state = statePassive
				fenceChar = char
				fenceLen = length
			}

		case stateWidget:
			if isCloser(line, fenceChar, fenceLen) {
				blocks = append(blocks, types.FencedBlock{
					Tag:        openTag,
					Body:       strings.Join(body, "\n"),
					StartLine:  openLine,
					EndLine:    lineNo,
					DocumentID: doc.ID,
					Ordinal:    ordinal,
				})
				ordinal++
				state = stateText
				continue
			}
			body = append(body, line)

		case statePassive:
			// Plain fences follow CommonMark's lenient close rule, so
			// an indented fence inside a list item still terminates.
			if isCloser(strings.TrimLeft(line, " \t"), fenceChar, fenceLen) {
				state = stateText
			}
		}
	}

	if state == stateWidget {
		diags = append(diags, types.Diagnostic{
			DocumentID:   doc.ID,
			BlockOrdinal: ordinal,
			Kind:         types.ParseError,
			Severity:     types.SeverityError,
			Message:      "unterminated " + string(openTag) + " fence opened here",
			Line:         openLine,
		})
	}

	return blocks, diags
}

// splitLines breaks source into lines without trailing newline or
// carriage return characters.
func splitLines(source string) []string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// widgetTag reports whether a backtick fence's info string names a
// recognized widget. The tag must immediately follow the delimiter
// run; only trailing whitespace is tolerated after it. "``` quiz" and
// "```quizzes" are both ordinary code fences.
func (s *FenceScanner) widgetTag(char byte, info string) (types.WidgetTag, bool) {
	if char != '`' {
		return "", false
	}
	if info == "" || info[0] == ' ' || info[0] == '\t' {
		return "", false
	}
	tag := types.WidgetTag(strings.TrimRight(info, " \t"))
	return tag, s.tags[tag]
}

// fenceLine inspects a line for a fence opener. It returns the
// delimiter character, the run length, the raw info string after the
// run, and whether the opener was indented. A zero length means the
// line is not a fence at all.
func fenceLine(line string) (char byte, length int, info string, indented bool) {
	trimmed := strings.TrimLeft(line, " \t")
	indented = len(trimmed) != len(line)
	if trimmed == "" {
		return 0, 0, "", indented
	}
	char = trimmed[0]
	if char != '`' && char != '~' {
		return 0, 0, "", indented
	}
	for length < len(trimmed) && trimmed[length] == char {
		length++
	}
	if length < minFenceLength {
		return 0, 0, "", indented
	}
	return char, length, trimmed[length:], indented
}

// isCloser reports whether line is a valid closing fence for an opener
// with the given character and length. Closers must start at column 0,
// match the opener's character, be at least as long, and carry nothing
// but trailing whitespace. An indented fence, a shorter run, or a line
// with an info string is body content, which is what keeps an embedded
// ```bash block inside a solution scalar from ending its parent early.
func isCloser(line string, char byte, minLen int) bool {
	if len(line) == 0 || line[0] != char {
		return false
	}
	n := 0
	for n < len(line) && line[n] == char {
		n++
	}
	if n < minLen {
		return false
	}
	return strings.TrimSpace(line[n:]) == ""
}
