// Package pipeline orchestrates the build-time flow for each document:
// scan for widget fences, decode and validate each block, assign IR
// identities, emit replacement HTML, and splice the fragments back over
// the source line ranges.
//
// Documents are independent, so ProcessAll fans them out across a
// bounded worker pool. The only shared mutable state is the diagnostics
// aggregator and the IR builder's identity table, both of which are
// safe for concurrent use.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/robworks/fencer/internal/decoder"
	"github.com/robworks/fencer/internal/diagnostics"
	"github.com/robworks/fencer/internal/emitter"
	"github.com/robworks/fencer/internal/hydrate"
	"github.com/robworks/fencer/internal/ir"
	"github.com/robworks/fencer/internal/scanner"
	"github.com/robworks/fencer/internal/schema"
	"github.com/robworks/fencer/internal/types"
)

// Options configures a pipeline.
type Options struct {
	// Workers bounds the number of documents processed concurrently.
	// Zero means one worker per CPU.
	Workers int
	// QuizAllowRetry is stamped onto every quiz spec during IR building.
	QuizAllowRetry bool
}

// Replacement is one line-range substitution in a document: the
// emitted fragment for a valid block, or a visible placeholder for a
// block that failed.
type Replacement struct {
	StartLine int
	EndLine   int
	Fragment  string
	Failed    bool
}

// DocumentResult carries everything one document's pass produced.
type DocumentResult struct {
	DocumentID   string
	Output       string
	Replacements []Replacement
	Widgets      []*types.IRNode
	Diagnostics  []types.Diagnostic
	Duration     time.Duration
}

// Metrics is a snapshot of cumulative pipeline activity.
type Metrics struct {
	Documents     int64
	Widgets       int64
	FailedBlocks  int64
	TotalDuration time.Duration
}

// ResultCallback is invoked once per document after ProcessAll
// finishes, in input order.
type ResultCallback func(DocumentResult)

// Pipeline runs the scan-decode-validate-emit flow over documents.
type Pipeline struct {
	scanner   *scanner.FenceScanner
	emitter   *emitter.Emitter
	builder   *ir.Builder
	agg       *diagnostics.Aggregator
	opts      Options
	callbacks []ResultCallback

	mu      sync.Mutex
	metrics Metrics
}

// New creates a pipeline recording into agg.
func New(agg *diagnostics.Aggregator, opts Options) *Pipeline {
	return &Pipeline{
		scanner: scanner.NewFenceScanner(),
		emitter: emitter.New(),
		builder: ir.NewBuilder(ir.Options{QuizAllowRetry: opts.QuizAllowRetry}),
		agg:     agg,
		opts:    opts,
	}
}

// AddCallback registers a callback invoked for each completed document.
// Callbacks run on the caller's goroutine in document input order, so
// they need no locking of their own. Not safe to call concurrently
// with ProcessAll.
func (p *Pipeline) AddCallback(cb ResultCallback) {
	p.callbacks = append(p.callbacks, cb)
}

// Metrics returns a snapshot of cumulative activity.
func (p *Pipeline) Metrics() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metrics
}

// Reset prepares the pipeline for a fresh pass: widget identities and
// metrics start over. Watch-mode rebuilds call this between passes.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.builder = ir.NewBuilder(ir.Options{QuizAllowRetry: p.opts.QuizAllowRetry})
	p.metrics = Metrics{}
}

// ForgetDocument clears one document's widget identities ahead of an
// incremental rebuild of just that document. Other documents keep their
// identities, so cross-document duplicate detection stays intact.
func (p *Pipeline) ForgetDocument(documentID string) {
	p.builder.ForgetDocument(documentID)
}

// ProcessAll runs every document through the pipeline using a bounded
// worker pool and returns per-document results in input order. Results
// are deterministic regardless of worker scheduling. Returns the
// context error if cancelled before all documents were fed.
func (p *Pipeline) ProcessAll(ctx context.Context, docs []types.Document) ([]DocumentResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	workers := p.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(docs) {
		workers = len(docs)
	}

	type job struct {
		index int
		doc   types.Document
	}
	jobs := make(chan job)
	results := make([]DocumentResult, len(docs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = p.ProcessDocument(j.doc)
			}
		}()
	}

	var fed int
feed:
	for i, doc := range docs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{index: i, doc: doc}:
			fed = i + 1
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results[:fed], err
	}

	for _, result := range results {
		for _, cb := range p.callbacks {
			cb(result)
		}
	}
	return results, nil
}

// ProcessDocument runs one document through the full pipeline. Safe for
// concurrent use.
func (p *Pipeline) ProcessDocument(doc types.Document) DocumentResult {
	start := time.Now()
	result := DocumentResult{DocumentID: doc.ID}

	blocks, scanDiags := p.scanner.Scan(doc)
	result.Diagnostics = append(result.Diagnostics, scanDiags...)

	for _, block := range blocks {
		fragment, node, diags := p.processBlock(block)
		result.Diagnostics = append(result.Diagnostics, diags...)
		if node != nil {
			result.Widgets = append(result.Widgets, node)
		}
		result.Replacements = append(result.Replacements, Replacement{
			StartLine: block.StartLine,
			EndLine:   block.EndLine,
			Fragment:  fragment,
			Failed:    node == nil,
		})
	}

	result.Output = Substitute(doc.Source, result.Replacements)
	result.Duration = time.Since(start)

	p.agg.RecordAll(result.Diagnostics)
	p.record(result)
	return result
}

// processBlock takes one fenced block through decode, validate, build,
// and emit. A failure at any stage yields the placeholder fragment and
// the stage's diagnostics; later stages are not attempted.
func (p *Pipeline) processBlock(block types.FencedBlock) (string, *types.IRNode, []types.Diagnostic) {
	config, parseDiag := decoder.Decode(block)
	if parseDiag != nil {
		diags := []types.Diagnostic{*parseDiag}
		return p.emitter.Placeholder(block, diags), nil, diags
	}

	spec, diags := schema.Validate(block, config)
	if spec == nil {
		return p.emitter.Placeholder(block, diags), nil, diags
	}

	node, dupDiag := p.builder.Build(block, spec)
	if dupDiag != nil {
		diags = append(diags, *dupDiag)
		return p.emitter.Placeholder(block, diags), nil, diags
	}

	fragment, err := p.emitter.Emit(node)
	if err != nil {
		diags = append(diags, types.Diagnostic{
			DocumentID:   block.DocumentID,
			BlockOrdinal: block.Ordinal,
			Kind:         types.ParseError,
			Severity:     types.SeverityError,
			Message:      err.Error(),
			Line:         block.StartLine,
		})
		return p.emitter.Placeholder(block, diags), nil, diags
	}
	return fragment, node, diags
}

// VerifyHydration runs the client runtime's discovery and decode pass
// over a document's output, proving every emitted payload round-trips
// into the config a browser would hydrate from. Each failure becomes an
// error diagnostic located at the originating block. The caller decides
// whether to record the diagnostics or just report them.
func (p *Pipeline) VerifyHydration(result DocumentResult) []types.Diagnostic {
	problems, _, err := hydrate.Verify(strings.NewReader(result.Output))
	if err != nil {
		return []types.Diagnostic{{
			DocumentID:   result.DocumentID,
			BlockOrdinal: -1,
			Kind:         types.ParseError,
			Severity:     types.SeverityError,
			Message:      "hydration: " + err.Error(),
			Line:         1,
		}}
	}

	byID := make(map[types.WidgetID]*types.IRNode, len(result.Widgets))
	for _, w := range result.Widgets {
		byID[w.ID] = w
	}

	var diags []types.Diagnostic
	for _, problem := range problems {
		d := types.Diagnostic{
			DocumentID:   result.DocumentID,
			BlockOrdinal: -1,
			Kind:         types.ParseError,
			Severity:     types.SeverityError,
			Message:      fmt.Sprintf("hydration: %s widget %s: %v", problem.Tag, problem.WidgetID, problem.Err),
			Line:         1,
		}
		if node, ok := byID[problem.WidgetID]; ok {
			d.BlockOrdinal = node.Ordinal
			d.Line = node.SourceLine
		}
		diags = append(diags, d)
	}
	return diags
}

func (p *Pipeline) record(result DocumentResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics.Documents++
	p.metrics.Widgets += int64(len(result.Widgets))
	for _, r := range result.Replacements {
		if r.Failed {
			p.metrics.FailedBlocks++
		}
	}
	p.metrics.TotalDuration += result.Duration
}

// Substitute splices each replacement fragment over its line range.
// Replacements must be ordered and disjoint, as the scanner emits
// them. Lines outside any range pass through untouched, and the
// presence or absence of a trailing newline is preserved.
func Substitute(source string, replacements []Replacement) string {
	if len(replacements) == 0 {
		return source
	}

	lines := strings.Split(source, "\n")
	var sb strings.Builder
	next := 0
	for i := 0; i < len(lines); i++ {
		if next < len(replacements) && i+1 == replacements[next].StartLine {
			r := replacements[next]
			sb.WriteString(r.Fragment)
			i = r.EndLine - 1
			if i < len(lines)-1 {
				sb.WriteString("\n")
			}
			next++
			continue
		}
		sb.WriteString(lines[i])
		if i < len(lines)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
