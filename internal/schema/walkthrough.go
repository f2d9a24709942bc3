package schema

import (
	"fmt"
	"strings"

	"github.com/robworks/fencer/internal/decoder"
	"github.com/robworks/fencer/internal/types"
)

// codeWalkthrough validates a code-walkthrough block. Annotation lines
// are 1-based and must land inside the code listing; the listing's
// line count includes blank lines, and a single trailing newline from
// a YAML literal scalar does not add a line.
func (c *checker) codeWalkthrough(m *decoder.Mapping) types.WidgetSpec {
	root := c.root(m)

	spec := types.WalkthroughSpec{}
	spec.Language, _ = root.requireString("language")
	spec.Title = root.optionalString("title", "")
	spec.Description = root.optionalString("description", "")
	spec.Code, _ = root.requireString("code")
	spec.Annotations = c.walkthroughAnnotations(root, spec.Code)
	root.unknownKeys("language", "title", "description", "code", "annotations")

	return spec
}

func (c *checker) walkthroughAnnotations(root scope, code string) []types.Annotation {
	seq := root.optionalSequence("annotations")
	count := lineCount(code)

	annotations := make([]types.Annotation, 0, len(seq))
	for i, item := range seq {
		s, ok := root.item(item, fmt.Sprintf("annotations[%d]", i))
		if !ok {
			continue
		}
		line, lineOK := s.requireInt("line")
		text, _ := s.requireString("text")
		s.unknownKeys("line", "text")

		if lineOK {
			switch {
			case line < 1:
				c.rangeErrorf(s.m.Line("line"),
					"line %d is out of range; annotations must target lines 1-%d", line, count)
			case line > count:
				c.rangeErrorf(s.m.Line("line"),
					"line %d exceeds code block of %d lines", line, count)
			}
		}
		annotations = append(annotations, types.Annotation{Line: line, Text: text})
	}
	return annotations
}

// lineCount counts the lines of a code listing, blank lines included.
func lineCount(code string) int {
	if code == "" {
		return 0
	}
	return len(strings.Split(strings.TrimSuffix(code, "\n"), "\n"))
}
