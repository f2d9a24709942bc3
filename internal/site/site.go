// Package site loads a documentation source tree and holds the built
// pages the preview server serves from memory.
package site

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/robworks/fencer/internal/types"
)

// Tree is everything under the docs source directory, split into
// markdown documents destined for the pipeline and assets that pass
// through untouched.
type Tree struct {
	Documents []types.Document
	Assets    []Asset
}

// Asset is a non-markdown file carried through to the output.
type Asset struct {
	// Path is slash-separated, relative to the source root
	Path string
	Data []byte
}

// IsMarkdown reports whether a path names a markdown source file.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// LoadTree reads the source directory recursively. Directories and path
// segments matching an exclude pattern are skipped. Document IDs are
// slash-separated paths relative to the source root, so they are stable
// across platforms and rebuilds.
func LoadTree(sourceDir string, excludePatterns []string) (*Tree, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("docs directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs directory %s is not a directory", sourceDir)
	}

	excluded := make(map[string]bool, len(excludePatterns))
	for _, pattern := range excludePatterns {
		if pattern != "" {
			excluded[pattern] = true
		}
	}

	tree := &Tree{}
	err = filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != sourceDir && excluded[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}

		if IsMarkdown(path) {
			tree.Documents = append(tree.Documents, types.Document{
				ID:     rel,
				Source: string(data),
			})
		} else {
			tree.Assets = append(tree.Assets, Asset{Path: rel, Data: data})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Walk order is lexical per directory but make the contract explicit.
	sort.Slice(tree.Documents, func(i, j int) bool {
		return tree.Documents[i].ID < tree.Documents[j].ID
	})
	sort.Slice(tree.Assets, func(i, j int) bool {
		return tree.Assets[i].Path < tree.Assets[j].Path
	})

	return tree, nil
}

// LoadDocument reads a single markdown file below the source root and
// returns it with its tree-relative ID.
func LoadDocument(sourceDir, path string) (types.Document, error) {
	rel, err := filepath.Rel(sourceDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return types.Document{}, fmt.Errorf("%s is outside the docs directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, err
	}

	return types.Document{
		ID:     filepath.ToSlash(rel),
		Source: string(data),
	}, nil
}

// Store holds the built site in memory for the preview server. Values
// are replaced wholesale on rebuild, never mutated in place.
type Store struct {
	mu    sync.RWMutex
	pages map[string][]byte
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{pages: make(map[string][]byte)}
}

// Put stores a page under its tree-relative path.
func (s *Store) Put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[path] = data
}

// Get returns the stored page for a path.
func (s *Store) Get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.pages[path]
	return data, ok
}

// Remove drops a page.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, path)
}

// Paths returns every stored path, sorted.
func (s *Store) Paths() []string {
	s.mu.RLock()
	paths := make([]string, 0, len(s.pages))
	for path := range s.pages {
		paths = append(paths, path)
	}
	s.mu.RUnlock()

	sort.Strings(paths)
	return paths
}

// Len returns the number of stored pages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}
