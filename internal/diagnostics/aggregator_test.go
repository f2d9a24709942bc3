package diagnostics

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robworks/fencer/internal/types"
)

func diag(doc string, line, ordinal int, sev types.Severity, msg string) types.Diagnostic {
	return types.Diagnostic{
		DocumentID:   doc,
		BlockOrdinal: ordinal,
		Kind:         types.SchemaError,
		Severity:     sev,
		Message:      msg,
		Line:         line,
	}
}

func TestRecordStampsAndCopies(t *testing.T) {
	a := NewAggregator()
	a.Record(diag("docs/a.md", 3, 0, types.SeverityError, "field question is required"))

	all := a.All()
	require.Len(t, all, 1)
	assert.False(t, all[0].Timestamp.IsZero())

	// Mutating the returned slice must not touch the aggregator.
	all[0].Message = "mutated"
	assert.Equal(t, "field question is required", a.All()[0].Message)
}

func TestAllSortsByDocumentLineOrdinal(t *testing.T) {
	a := NewAggregator()
	a.Record(diag("docs/b.md", 5, 0, types.SeverityError, "third"))
	a.Record(diag("docs/a.md", 9, 1, types.SeverityError, "second"))
	a.Record(diag("docs/a.md", 2, 0, types.SeverityError, "first"))

	var got []string
	for _, d := range a.All() {
		got = append(got, d.Message)
	}
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestForDocumentFilters(t *testing.T) {
	a := NewAggregator()
	a.Record(diag("docs/a.md", 3, 0, types.SeverityError, "one"))
	a.Record(diag("docs/b.md", 3, 0, types.SeverityError, "other"))
	a.Record(diag("docs/a.md", 8, 1, types.SeverityWarning, "two"))

	forA := a.ForDocument("docs/a.md")
	require.Len(t, forA, 2)
	assert.Equal(t, "one", forA[0].Message)
	assert.Equal(t, "two", forA[1].Message)
	assert.Empty(t, a.ForDocument("docs/missing.md"))
}

func TestHasErrorsIgnoresWarnings(t *testing.T) {
	a := NewAggregator()
	a.Record(diag("docs/a.md", 3, 0, types.SeverityWarning, "unknown field bonus ignored"))
	assert.False(t, a.HasErrors())

	a.Record(diag("docs/a.md", 3, 0, types.SeverityError, "field question is required"))
	assert.True(t, a.HasErrors())

	errors, warnings := a.Counts()
	assert.Equal(t, 1, errors)
	assert.Equal(t, 1, warnings)
}

func TestRecordAllAndClear(t *testing.T) {
	a := NewAggregator()
	a.RecordAll(nil)
	a.RecordAll([]types.Diagnostic{
		diag("docs/a.md", 3, 0, types.SeverityError, "one"),
		diag("docs/a.md", 9, 1, types.SeverityError, "two"),
	})
	assert.Equal(t, 2, a.Len())

	a.Clear()
	assert.Equal(t, 0, a.Len())
	assert.False(t, a.HasErrors())
}

func TestRemoveDocument(t *testing.T) {
	a := NewAggregator()
	a.RecordAll([]types.Diagnostic{
		diag("docs/a.md", 3, 0, types.SeverityError, "stale"),
		diag("docs/b.md", 5, 0, types.SeverityWarning, "kept"),
		diag("docs/a.md", 9, 1, types.SeverityError, "stale too"),
	})

	a.RemoveDocument("docs/a.md")

	assert.Equal(t, 1, a.Len())
	assert.Empty(t, a.ForDocument("docs/a.md"))
	assert.False(t, a.HasErrors())
	assert.Equal(t, []string{"docs/b.md"}, a.Documents())
}

func TestConcurrentProducers(t *testing.T) {
	a := NewAggregator()

	const workers = 20
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			doc := fmt.Sprintf("docs/%02d.md", w)
			for i := 0; i < perWorker; i++ {
				a.Record(diag(doc, i+1, i, types.SeverityError, "boom"))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, a.Len())
	assert.Len(t, a.Documents(), workers)
	assert.Len(t, a.ForDocument("docs/07.md"), perWorker)
}

func TestWriteReportGroupsByDocument(t *testing.T) {
	a := NewAggregator()
	a.Record(diag("docs/b.md", 4, 0, types.SeverityWarning, "unknown field bonus ignored"))
	a.Record(diag("docs/a.md", 12, 1, types.SeverityError, "field base is required and must be non-empty"))

	var buf bytes.Buffer
	a.WriteReport(&buf)
	out := buf.String()

	assert.Contains(t, out, "docs/a.md")
	assert.Contains(t, out, "docs/b.md")
	assert.Contains(t, out, "line 12, block 1")
	assert.Contains(t, out, "field base is required and must be non-empty")
	assert.Contains(t, out, "1 error, 1 warning in 2 documents")
	// a.md sorts before b.md regardless of record order
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("docs/a.md")), bytes.Index(buf.Bytes(), []byte("docs/b.md")))
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewAggregator().WriteReport(&buf)
	assert.Contains(t, buf.String(), "all widget blocks are valid")
}

func TestSummaryPluralizes(t *testing.T) {
	a := NewAggregator()
	assert.Equal(t, "0 errors, 0 warnings in 0 documents", a.Summary())

	a.Record(diag("docs/a.md", 3, 0, types.SeverityError, "one"))
	assert.Equal(t, "1 error, 0 warnings in 1 document", a.Summary())
}
