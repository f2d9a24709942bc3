// Package emitter serializes IR nodes into replacement HTML fragments.
//
// Every widget renders as one container div carrying the widget's
// identity and its machine-readable payload, wrapped around a static
// fallback rendering of the same content. The payload is the typed
// spec encoded as JSON and HTML-escaped into the data-config
// attribute; the client runtime decodes it back into an identical
// value, so the attribute round-trips all Unicode text including
// quotes, backticks and block-scalar whitespace. Readers without
// JavaScript, and widgets whose payload fails to decode, see the
// fallback.
//
// Emission is deterministic: the same IR node always produces
// byte-identical HTML, which keeps unchanged rebuilds diffable.
package emitter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/robworks/fencer/internal/types"
)

// Emitter renders widget fragments. It is stateless and safe for
// concurrent use by document workers.
type Emitter struct{}

// New creates an Emitter.
func New() *Emitter { return &Emitter{} }

// Emit renders the replacement fragment for one IR node.
func (e *Emitter) Emit(node *types.IRNode) (string, error) {
	var sb strings.Builder
	if err := e.Component(node).Render(context.Background(), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Component returns the node's fragment as a templ component, for
// callers composing widgets into a larger render.
func (e *Emitter) Component(node *types.IRNode) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		payload, err := templ.JSONString(node.Spec)
		if err != nil {
			return fmt.Errorf("encoding payload for widget %s: %w", node.ID, err)
		}

		fw := &fragmentWriter{w: w}
		fw.writef("<div class=\"interactive-%s\" data-widget-id=\"%s\" data-config=\"%s\">\n",
			node.Tag(), templ.EscapeString(string(node.ID)), templ.EscapeString(payload))
		fw.write("<div class=\"interactive-fallback\">\n")
		writeFallback(fw, node.Spec)
		fw.write("</div>\n</div>")

		if fw.err != nil {
			return fmt.Errorf("rendering widget %s: %w", node.ID, fw.err)
		}
		return nil
	})
}

// Placeholder renders the visible admonition that substitutes for a
// block that failed to parse or validate. Only error-severity
// diagnostics are listed.
func (e *Emitter) Placeholder(block types.FencedBlock, diags []types.Diagnostic) string {
	var sb strings.Builder
	fw := &fragmentWriter{w: &sb}

	fw.write("<div class=\"admonition warning interactive-error\">\n")
	fw.writef("<p class=\"admonition-title\">Interactive %s block could not be rendered</p>\n",
		templ.EscapeString(string(block.Tag)))
	fw.write("<ul>\n")
	for _, d := range diags {
		if d.Severity < types.SeverityError {
			continue
		}
		fw.writef("<li>%s</li>\n", templ.EscapeString(d.Message))
	}
	fw.write("</ul>\n</div>")

	return sb.String()
}

// fragmentWriter accumulates HTML, remembering the first write error
// so fallback renderers can stay free of per-line error plumbing.
type fragmentWriter struct {
	w   io.Writer
	err error
}

func (fw *fragmentWriter) write(s string) {
	if fw.err != nil {
		return
	}
	_, fw.err = io.WriteString(fw.w, s)
}

func (fw *fragmentWriter) writef(format string, args ...any) {
	if fw.err != nil {
		return
	}
	_, fw.err = fmt.Fprintf(fw.w, format, args...)
}
