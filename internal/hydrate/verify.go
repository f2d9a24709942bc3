package hydrate

import (
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/robworks/fencer/internal/types"
)

// Problem describes a widget container whose embedded payload does not
// decode back into its typed spec.
type Problem struct {
	WidgetID types.WidgetID
	Tag      types.WidgetTag
	Err      error
}

// Verify parses a rendered page and checks that every widget container
// round-trips: the payload the emitter embedded must decode into the
// spec the runtime would hydrate from. It returns one Problem per
// defective container and the total number of containers found.
//
// Nothing is hydrated or marked; Verify is safe to run server-side on
// build output.
func Verify(r io.Reader) ([]Problem, int, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing page: %w", err)
	}

	var problems []Problem
	total := 0

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if tag, ok := containerTag(n); ok {
				total++
				if _, err := DecodePayload(tag, getAttr(n, configAttr)); err != nil {
					problems = append(problems, Problem{
						WidgetID: types.WidgetID(getAttr(n, widgetIDAttr)),
						Tag:      tag,
						Err:      err,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(root)

	return problems, total, nil
}
