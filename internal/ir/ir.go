// Package ir finalizes validated widget specs into IR nodes with
// stable build identities.
package ir

import (
	"fmt"
	"hash/crc32"
	"sync"

	"github.com/robworks/fencer/internal/types"
)

// DeriveID computes the deterministic identity of a widget from its
// document, ordinal and tag. The document path is folded to a crc32 so
// IDs stay short enough for DOM attributes while remaining distinct
// across documents; the ordinal and tag keep them distinct within one.
// Unchanged input derives the same ID on every rebuild.
func DeriveID(documentID string, ordinal int, tag types.WidgetTag) types.WidgetID {
	sum := crc32.ChecksumIEEE([]byte(documentID))
	return types.WidgetID(fmt.Sprintf("iw-%08x-%d-%s", sum, ordinal, tag))
}

// Options carries the build-level knobs resolved into IR nodes.
type Options struct {
	// QuizAllowRetry lets readers change a quiz answer after the first
	// selection. Site-wide; carried into each quiz payload.
	QuizAllowRetry bool
}

// Builder assigns widget IDs and resolves spec defaults for one build
// pass. ID derivation is deterministic, so a collision inside a build
// indicates a bug upstream; the builder still checks defensively and
// reports DuplicateIdError instead of emitting clashing DOM IDs.
// Builders are safe for concurrent use by document workers.
type Builder struct {
	opts Options

	mu   sync.Mutex
	seen map[types.WidgetID]origin
}

type origin struct {
	doc   string
	block int
}

// NewBuilder creates a Builder for a single build pass.
func NewBuilder(opts Options) *Builder {
	return &Builder{
		opts: opts,
		seen: make(map[types.WidgetID]origin),
	}
}

// Build produces the finalized IR node for a validated spec. The
// returned diagnostic is non-nil only for a duplicate ID, in which
// case the node is withheld.
func (b *Builder) Build(block types.FencedBlock, spec types.WidgetSpec) (*types.IRNode, *types.Diagnostic) {
	id := DeriveID(block.DocumentID, block.Ordinal, block.Tag)

	b.mu.Lock()
	prev, dup := b.seen[id]
	if !dup {
		b.seen[id] = origin{doc: block.DocumentID, block: block.Ordinal}
	}
	b.mu.Unlock()

	if dup {
		return nil, &types.Diagnostic{
			DocumentID:   block.DocumentID,
			BlockOrdinal: block.Ordinal,
			Kind:         types.DuplicateIdError,
			Severity:     types.SeverityError,
			Message:      fmt.Sprintf("widget id %s already assigned to %s block %d", id, prev.doc, prev.block),
			Line:         block.StartLine,
		}
	}

	return &types.IRNode{
		ID:         id,
		DocumentID: block.DocumentID,
		Ordinal:    block.Ordinal,
		SourceLine: block.StartLine,
		Spec:       b.resolve(spec),
	}, nil
}

// ForgetDocument drops the identities registered for one document so a
// watch-mode rebuild can process its next revision without tripping the
// duplicate check.
func (b *Builder) ForgetDocument(documentID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, o := range b.seen {
		if o.doc == documentID {
			delete(b.seen, id)
		}
	}
}

// resolve applies build-level defaults the validator cannot know.
func (b *Builder) resolve(spec types.WidgetSpec) types.WidgetSpec {
	switch s := spec.(type) {
	case types.QuizSpec:
		s.AllowRetry = b.opts.QuizAllowRetry
		return s
	default:
		return spec
	}
}
