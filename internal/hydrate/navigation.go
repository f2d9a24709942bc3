package hydrate

import (
	"sync"
	"time"

	"golang.org/x/net/html"
)

// NavigationHook re-runs hydration after client-side navigation
// replaces the page's content region. Rapid replacements inside the
// debounce window collapse into a single pass over the latest root;
// already-hydrated widgets are skipped by the marker, so redundant
// passes are cheap and safe.
type NavigationHook struct {
	hydrator *Hydrator
	delay    time.Duration
	onPass   func([]Widget)

	mu      sync.Mutex
	timer   *time.Timer
	pending *html.Node
}

// NewNavigationHook creates a hook that hydrates with h after delay.
// onPass, if non-nil, receives the widgets each pass produced.
func NewNavigationHook(h *Hydrator, delay time.Duration, onPass func([]Widget)) *NavigationHook {
	return &NavigationHook{hydrator: h, delay: delay, onPass: onPass}
}

// ContentReplaced schedules a hydration pass over root. A call landing
// inside the debounce window supersedes the pending root and restarts
// the timer.
func (nh *NavigationHook) ContentReplaced(root *html.Node) {
	nh.mu.Lock()
	defer nh.mu.Unlock()

	nh.pending = root
	if nh.timer != nil {
		nh.timer.Stop()
	}
	nh.timer = time.AfterFunc(nh.delay, func() { nh.Flush() })
}

// Flush runs the pending pass immediately, if any.
func (nh *NavigationHook) Flush() {
	nh.mu.Lock()
	root := nh.pending
	nh.pending = nil
	if nh.timer != nil {
		nh.timer.Stop()
		nh.timer = nil
	}
	nh.mu.Unlock()

	if root == nil {
		return
	}
	widgets := nh.hydrator.Hydrate(root)
	if nh.onPass != nil {
		nh.onPass(widgets)
	}
}

// Stop cancels any scheduled pass without running it.
func (nh *NavigationHook) Stop() {
	nh.mu.Lock()
	defer nh.mu.Unlock()

	nh.pending = nil
	if nh.timer != nil {
		nh.timer.Stop()
		nh.timer = nil
	}
}
