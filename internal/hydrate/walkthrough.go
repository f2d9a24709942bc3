package hydrate

import (
	"strings"

	"github.com/robworks/fencer/internal/types"
)

// Walkthrough drives a code-walkthrough widget: hovering or clicking a
// source line activates it and surfaces the annotations targeting that
// line. Annotation lookup is precomputed at hydration.
type Walkthrough struct {
	id      types.WidgetID
	spec    types.WalkthroughSpec
	tracker Tracker
	lines   []string
	byLine  map[int][]string
	active  int
}

func newWalkthrough(id types.WidgetID, spec types.WalkthroughSpec, tracker Tracker) *Walkthrough {
	w := &Walkthrough{
		id:     id,
		spec:   spec,
		byLine: make(map[int][]string, len(spec.Annotations)),
	}
	w.tracker = tracker
	if spec.Code != "" {
		w.lines = strings.Split(strings.TrimSuffix(spec.Code, "\n"), "\n")
	}
	for _, a := range spec.Annotations {
		w.byLine[a.Line] = append(w.byLine[a.Line], a.Text)
	}
	return w
}

func (w *Walkthrough) ID() types.WidgetID   { return w.id }
func (w *Walkthrough) Tag() types.WidgetTag { return types.TagCodeWalkthrough }

// Lines returns the code listing split into display lines.
func (w *Walkthrough) Lines() []string { return w.lines }

// AnnotationsFor returns the annotation texts targeting a 1-based
// line, in authored order.
func (w *Walkthrough) AnnotationsFor(line int) []string {
	return w.byLine[line]
}

// Activate highlights a line and returns its annotations. Lines
// outside the listing are ignored and return nothing.
func (w *Walkthrough) Activate(line int) []string {
	if line < 1 || line > len(w.lines) {
		return nil
	}
	w.active = line

	annotations := w.byLine[line]
	track(w.tracker, EventWalkthroughView, map[string]any{
		"widget":    string(w.id),
		"line":      line,
		"annotated": len(annotations) > 0,
	})
	return annotations
}

// Active returns the highlighted line, or 0 when none is.
func (w *Walkthrough) Active() int { return w.active }

// Clear removes the highlight, as on mouse-out.
func (w *Walkthrough) Clear() { w.active = 0 }
