package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.NotNil(t, watcher.logger)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFileWatcherAddFilterAndHandler(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(MarkdownFilter)
	watcher.AddFilter(NoHiddenFilter)
	assert.Len(t, watcher.filters, 2)

	watcher.AddHandler(func(events []ChangeEvent) error { return nil })
	assert.Len(t, watcher.handlers, 1)
}

func TestMarkdownFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"docs/guide.md", true},
		{"README.markdown", true},
		{"docs/GUIDE.MD", true},
		{"main.go", false},
		{"style.css", false},
		{"docs/notes", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, MarkdownFilter(tc.path))
		})
	}
}

func TestNoHiddenFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"docs/guide.md", true},
		{"docs/.#guide.md", false},
		{"docs/guide.md~", false},
		{".hidden.md", false},
		{"docs/.obsidian/cache.md", true}, // only the base name counts
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoHiddenFilter(tc.path))
		})
	}
}

func TestExcludePatternsFilter(t *testing.T) {
	filter := ExcludePatternsFilter([]string{"node_modules", ".git"})

	testCases := []struct {
		path     string
		expected bool
	}{
		{"docs/guide.md", true},
		{"node_modules/pkg/readme.md", false},
		{"docs/node_modules/readme.md", false},
		{".git/config", false},
		{"docs/gitlab/guide.md", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}

	empty := ExcludePatternsFilter(nil)
	assert.True(t, empty("anything/at/all.md"))
}

func TestAddPathValidation(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	err = watcher.AddPath("../../../etc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")

	err = watcher.AddPath("  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	err = watcher.AddPath(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	err = watcher.AddPath(t.TempDir())
	assert.NoError(t, err)
}

func TestAddRecursiveSkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	section := filepath.Join(root, "guides")
	excluded := filepath.Join(root, "node_modules")
	require.NoError(t, os.MkdirAll(section, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(excluded, "pkg"), 0755))

	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.ExcludeDirs("node_modules", ".git")
	require.NoError(t, watcher.AddRecursive(root))

	watched := watcher.watcher.WatchList()
	assert.Contains(t, watched, root)
	assert.Contains(t, watched, section)
	assert.NotContains(t, watched, excluded)
}

func waitForBatch(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("no change batch arrived before the deadline")
}

func TestWatcherDeliversFilteredBatch(t *testing.T) {
	root := t.TempDir()

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(MarkdownFilter)
	require.NoError(t, watcher.AddRecursive(root))

	var mu sync.Mutex
	var seen []ChangeEvent
	watcher.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		seen = append(seen, events...)
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "guide.md"), []byte("# Guide\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.txt"), []byte("noise"), 0644))

	waitForBatch(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	})

	mu.Lock()
	defer mu.Unlock()
	for _, event := range seen {
		assert.Equal(t, ".md", filepath.Ext(event.Path))
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(MarkdownFilter)
	require.NoError(t, watcher.AddRecursive(root))

	var mu sync.Mutex
	var seen []ChangeEvent
	watcher.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		seen = append(seen, events...)
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	time.Sleep(100 * time.Millisecond)

	section := filepath.Join(root, "new-section")
	require.NoError(t, os.Mkdir(section, 0755))
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(section, "intro.md"), []byte("# Intro\n"), 0644))

	waitForBatch(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, event := range seen {
			if filepath.Base(event.Path) == "intro.md" {
				return true
			}
		}
		return false
	})
}

func TestDebouncerDedupesAndSorts(t *testing.T) {
	debouncer := &Debouncer{
		delay:   30 * time.Millisecond,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go debouncer.start(ctx)

	debouncer.events <- ChangeEvent{Path: "b.md", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "a.md", Type: EventTypeCreated}
	debouncer.events <- ChangeEvent{Path: "a.md", Type: EventTypeModified}

	select {
	case batch := <-debouncer.output:
		require.Len(t, batch, 2)
		assert.Equal(t, "a.md", batch[0].Path)
		assert.Equal(t, EventTypeModified, batch[0].Type, "last event for a path wins")
		assert.Equal(t, "b.md", batch[1].Path)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}
}

func TestDebouncerCollapsesBursts(t *testing.T) {
	debouncer := &Debouncer{
		delay:   60 * time.Millisecond,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go debouncer.start(ctx)

	// Ten rapid saves of one file inside the debounce window.
	for i := 0; i < 10; i++ {
		debouncer.events <- ChangeEvent{Path: "guide.md", Type: EventTypeModified}
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case batch := <-debouncer.output:
		assert.Len(t, batch, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}

	// No second batch should follow.
	select {
	case extra := <-debouncer.output:
		t.Fatalf("unexpected second batch: %v", extra)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestStopTwice(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}
