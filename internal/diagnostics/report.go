package diagnostics

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/robworks/fencer/internal/types"
)

// Color palette
var (
	colorError   = lipgloss.Color("#FF5F87")
	colorWarning = lipgloss.Color("#FFAF00")
	colorInfo    = lipgloss.Color("#5FAFFF")
	colorMuted   = lipgloss.Color("#888888")
	colorSuccess = lipgloss.Color("#00D787")
)

var (
	styleError    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleWarning  = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleInfo     = lipgloss.NewStyle().Foreground(colorInfo)
	styleMuted    = lipgloss.NewStyle().Foreground(colorMuted)
	styleSuccess  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleDocument = lipgloss.NewStyle().Bold(true)
)

func severityStyle(s types.Severity) lipgloss.Style {
	switch s {
	case types.SeverityError:
		return styleError
	case types.SeverityWarning:
		return styleWarning
	default:
		return styleInfo
	}
}

// WriteReport renders every collected diagnostic grouped by document,
// one line per finding, followed by a summary. The order is
// deterministic regardless of how many workers produced the findings.
func (a *Aggregator) WriteReport(w io.Writer) {
	diags := a.All()
	if len(diags) == 0 {
		fmt.Fprintln(w, styleSuccess.Render("✓")+" all widget blocks are valid")
		return
	}

	current := ""
	for _, d := range diags {
		if d.DocumentID != current {
			current = d.DocumentID
			fmt.Fprintln(w, styleDocument.Render(current))
		}
		fmt.Fprintf(w, "  %s  %s  %s\n",
			severityStyle(d.Severity).Render(fmt.Sprintf("%-7s", d.Severity)),
			styleMuted.Render(location(d)),
			d.Message)
	}
	fmt.Fprintf(w, "\n%s\n", a.Summary())
}

// Summary returns a one-line tally such as "2 errors, 1 warning in 2
// documents".
func (a *Aggregator) Summary() string {
	errors, warnings := a.Counts()
	docs := len(a.Documents())
	return fmt.Sprintf("%s, %s in %s",
		pluralize(errors, "error"),
		pluralize(warnings, "warning"),
		pluralize(docs, "document"))
}

func location(d types.Diagnostic) string {
	if d.BlockOrdinal < 0 {
		return fmt.Sprintf("line %d", d.Line)
	}
	return fmt.Sprintf("line %d, block %d", d.Line, d.BlockOrdinal)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
