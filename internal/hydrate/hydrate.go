// Package hydrate is the client runtime: it discovers emitted widget
// containers in a rendered page, decodes each container's embedded
// payload, and attaches a per-widget controller that drives the
// widget's interaction state machine.
//
// Hydrate is idempotent. Every container it touches is stamped with a
// data-hydrated marker and skipped on later passes, so the navigation
// hook can call it after every page swap without double-binding
// widgets. A payload that fails to decode leaves its container on the
// static fallback rendering and logs a diagnostic; it never prevents
// the remaining widgets on the page from hydrating.
//
// Controllers are single-threaded by design, mirroring a browser event
// loop. Drive each controller from one goroutine.
package hydrate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/robworks/fencer/internal/types"
)

const (
	hydratedAttr  = "data-hydrated"
	configAttr    = "data-config"
	widgetIDAttr  = "data-widget-id"
	classPrefix   = "interactive-"
	fallbackClass = "interactive-fallback"
	errorClass    = "interactive-error"
)

// Interaction event names reported to the tracker.
const (
	EventQuizAnswered     = "quiz_answered"
	EventTerminalStep     = "terminal_step"
	EventExerciseHint     = "exercise_hint"
	EventExerciseSolution = "exercise_solution"
	EventBuilderChange    = "builder_change"
	EventWalkthroughView  = "walkthrough_view"
)

// Tracker is an optional analytics sink. A nil Tracker disables
// tracking without affecting widget behavior.
type Tracker interface {
	Track(event string, props map[string]any)
}

// Widget is the common surface of all hydrated controllers.
type Widget interface {
	ID() types.WidgetID
	Tag() types.WidgetTag
}

// Options configures a Hydrator.
type Options struct {
	// Tracker receives interaction events; nil disables tracking.
	Tracker Tracker
	// Logger receives hydration diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

// Hydrator discovers and activates widget containers.
type Hydrator struct {
	tracker Tracker
	logger  *slog.Logger
}

// New creates a Hydrator.
func New(opts Options) *Hydrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hydrator{tracker: opts.Tracker, logger: logger}
}

// Hydrate walks the tree under root, activates every unhydrated widget
// container, and returns the new controllers in document order.
// Already-hydrated containers are skipped.
func (h *Hydrator) Hydrate(root *html.Node) []Widget {
	var widgets []Widget

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if w := h.hydrateNode(n); w != nil {
				widgets = append(widgets, w)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(root)

	return widgets
}

// hydrateNode activates a single container, or returns nil when the
// node is not an unhydrated widget container. A decode failure is
// logged and the container is still marked, leaving it on its static
// fallback rather than retrying on every pass.
func (h *Hydrator) hydrateNode(n *html.Node) (w Widget) {
	tag, ok := containerTag(n)
	if !ok {
		return nil
	}
	if getAttr(n, hydratedAttr) != "" {
		return nil
	}
	setAttr(n, hydratedAttr, "true")

	// A defective payload must never block the rest of the page.
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("widget hydration panicked",
				"widget", getAttr(n, widgetIDAttr), "panic", r)
			w = nil
		}
	}()

	id := types.WidgetID(getAttr(n, widgetIDAttr))
	spec, err := DecodePayload(tag, getAttr(n, configAttr))
	if err != nil {
		h.logger.Error("widget payload is unusable, keeping static fallback",
			"widget", string(id), "tag", string(tag), "error", err)
		return nil
	}

	return h.controller(id, spec)
}

func (h *Hydrator) controller(id types.WidgetID, spec types.WidgetSpec) Widget {
	switch s := spec.(type) {
	case *types.QuizSpec:
		return newQuiz(id, *s, h.tracker)
	case *types.TerminalSpec:
		return newTerminal(id, *s, h.tracker)
	case *types.ExerciseSpec:
		return newExercise(id, *s, h.tracker)
	case *types.CommandBuilderSpec:
		return newBuilder(id, *s, h.tracker)
	case *types.WalkthroughSpec:
		return newWalkthrough(id, *s, h.tracker)
	default:
		return nil
	}
}

// DecodePayload parses a container's embedded JSON payload into the
// typed spec for its tag.
func DecodePayload(tag types.WidgetTag, payload string) (types.WidgetSpec, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, fmt.Errorf("widget payload is empty")
	}

	var spec types.WidgetSpec
	switch tag {
	case types.TagQuiz:
		spec = &types.QuizSpec{}
	case types.TagTerminal:
		spec = &types.TerminalSpec{}
	case types.TagExercise:
		spec = &types.ExerciseSpec{}
	case types.TagCommandBuilder:
		spec = &types.CommandBuilderSpec{}
	case types.TagCodeWalkthrough:
		spec = &types.WalkthroughSpec{}
	default:
		return nil, fmt.Errorf("unrecognized widget tag %q", tag)
	}

	if err := json.Unmarshal([]byte(payload), spec); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", tag, err)
	}
	return spec, nil
}

// containerTag reports whether the node is a widget container and, if
// so, which tag it carries. Fallback wrappers and error placeholders
// share the interactive- class prefix but are not containers.
func containerTag(n *html.Node) (types.WidgetTag, bool) {
	if getAttr(n, widgetIDAttr) == "" {
		return "", false
	}
	for _, class := range strings.Fields(getAttr(n, "class")) {
		if class == fallbackClass || class == errorClass {
			continue
		}
		if rest, ok := strings.CutPrefix(class, classPrefix); ok {
			tag := types.WidgetTag(rest)
			if tag.Recognized() {
				return tag, true
			}
		}
	}
	return "", false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// track forwards an event to the sink when one is configured.
func track(t Tracker, event string, props map[string]any) {
	if t == nil {
		return
	}
	t.Track(event, props)
}
