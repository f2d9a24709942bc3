// Package registry tracks the widgets produced by a build pass, keyed
// by widget ID, and fans change events out to watchers such as the
// preview server's live-reload hub.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/robworks/fencer/internal/types"
)

// WidgetRegistry manages all widgets discovered in the current build.
type WidgetRegistry struct {
	widgets  map[types.WidgetID]*types.IRNode
	mutex    sync.RWMutex
	watchers []chan types.WidgetEvent
}

// NewWidgetRegistry creates an empty registry.
func NewWidgetRegistry() *WidgetRegistry {
	return &WidgetRegistry{
		widgets:  make(map[types.WidgetID]*types.IRNode),
		watchers: make([]chan types.WidgetEvent, 0),
	}
}

// Register adds or updates a widget and notifies watchers.
func (r *WidgetRegistry) Register(node *types.IRNode) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := types.EventTypeAdded
	if _, exists := r.widgets[node.ID]; exists {
		eventType = types.EventTypeUpdated
	}
	r.widgets[node.ID] = node

	r.notify(types.WidgetEvent{
		Type:      eventType,
		Widget:    node,
		Timestamp: time.Now(),
	})
}

// Get retrieves a widget by ID.
func (r *WidgetRegistry) Get(id types.WidgetID) (*types.IRNode, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	node, exists := r.widgets[id]
	return node, exists
}

// All returns every registered widget ordered by document, then by
// ordinal within the document.
func (r *WidgetRegistry) All() []*types.IRNode {
	r.mutex.RLock()
	nodes := make([]*types.IRNode, 0, len(r.widgets))
	for _, node := range r.widgets {
		nodes = append(nodes, node)
	}
	r.mutex.RUnlock()

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].DocumentID != nodes[j].DocumentID {
			return nodes[i].DocumentID < nodes[j].DocumentID
		}
		return nodes[i].Ordinal < nodes[j].Ordinal
	})
	return nodes
}

// ForDocument returns the widgets of one document in ordinal order.
func (r *WidgetRegistry) ForDocument(documentID string) []*types.IRNode {
	r.mutex.RLock()
	var nodes []*types.IRNode
	for _, node := range r.widgets {
		if node.DocumentID == documentID {
			nodes = append(nodes, node)
		}
	}
	r.mutex.RUnlock()

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Ordinal < nodes[j].Ordinal })
	return nodes
}

// RemoveDocument drops every widget belonging to a document and
// notifies watchers once per removed widget. Watch-mode rebuilds call
// this before re-registering a changed document.
func (r *WidgetRegistry) RemoveDocument(documentID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for id, node := range r.widgets {
		if node.DocumentID != documentID {
			continue
		}
		delete(r.widgets, id)
		r.notify(types.WidgetEvent{
			Type:      types.EventTypeRemoved,
			Widget:    node,
			Timestamp: time.Now(),
		})
	}
}

// Clear drops every widget without notifying watchers.
func (r *WidgetRegistry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.widgets = make(map[types.WidgetID]*types.IRNode)
}

// Count returns the number of registered widgets.
func (r *WidgetRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.widgets)
}

// CountByTag returns per-tag widget totals.
func (r *WidgetRegistry) CountByTag() map[types.WidgetTag]int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	counts := make(map[types.WidgetTag]int)
	for _, node := range r.widgets {
		counts[node.Tag()]++
	}
	return counts
}

// Summary is the flattened listing row for one widget, shared by the
// list command and the preview server's widget API.
type Summary struct {
	ID       types.WidgetID  `json:"id" yaml:"id"`
	Document string          `json:"document" yaml:"document"`
	Ordinal  int             `json:"ordinal" yaml:"ordinal"`
	Line     int             `json:"line" yaml:"line"`
	Tag      types.WidgetTag `json:"tag" yaml:"tag"`
	Title    string          `json:"title" yaml:"title"`
}

// Summarize flattens a node into its listing row. The title column
// carries the most descriptive field each tag has: the quiz question,
// a title where the block declares one, or the builder's base command.
func Summarize(node *types.IRNode) Summary {
	s := Summary{
		ID:       node.ID,
		Document: node.DocumentID,
		Ordinal:  node.Ordinal,
		Line:     node.SourceLine,
		Tag:      node.Tag(),
	}
	switch spec := node.Spec.(type) {
	case types.QuizSpec:
		s.Title = spec.Question
	case types.TerminalSpec:
		s.Title = spec.Title
	case types.ExerciseSpec:
		s.Title = spec.Title
	case types.CommandBuilderSpec:
		s.Title = spec.Base
	case types.WalkthroughSpec:
		s.Title = spec.Title
	}
	return s
}

// Summaries returns the listing rows for every registered widget in
// document order.
func (r *WidgetRegistry) Summaries() []Summary {
	nodes := r.All()
	summaries := make([]Summary, len(nodes))
	for i, node := range nodes {
		summaries[i] = Summarize(node)
	}
	return summaries
}

// Watch returns a channel receiving widget events. Slow watchers drop
// events rather than blocking registration.
func (r *WidgetRegistry) Watch() <-chan types.WidgetEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.WidgetEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it.
func (r *WidgetRegistry) UnWatch(ch <-chan types.WidgetEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// notify requires the write lock.
func (r *WidgetRegistry) notify(event types.WidgetEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
