package server

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/robworks/fencer/internal/registry"
	"github.com/robworks/fencer/internal/site"
	"github.com/robworks/fencer/internal/types"
	"github.com/robworks/fencer/internal/version"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Fencer - Docs Preview</title>
    <style>
        body {
            font-family: system-ui, -apple-system, sans-serif;
            margin: 0;
            padding: 20px;
            background: #f5f5f5;
        }
        .container {
            max-width: 960px;
            margin: 0 auto;
            background: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        h1 {
            color: #333;
            border-bottom: 2px solid #007acc;
            padding-bottom: 10px;
        }
        .status {
            position: fixed;
            top: 20px;
            right: 20px;
            padding: 8px 16px;
            border-radius: 4px;
            color: white;
            font-weight: bold;
            z-index: 1000;
        }
        .status.connected { background: #28a745; }
        .status.disconnected { background: #dc3545; }
        ul.documents { list-style: none; padding: 0; }
        ul.documents li { padding: 4px 0; }
        ul.documents a { color: #007acc; text-decoration: none; }
        ul.documents a:hover { text-decoration: underline; }
        table.widgets { border-collapse: collapse; min-width: 640px; }
        table.widgets th, table.widgets td {
            text-align: left;
            padding: 6px 12px;
            border-bottom: 1px solid #ddd;
            font-size: 14px;
        }
        table.widgets th { color: #666; font-weight: 600; }
        table.widgets code { font-size: 13px; }
        .empty { color: #999; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Fencer Docs Preview</h1>
        <div id="status" class="status disconnected">Disconnected</div>
        <h2>Documents</h2>
        <ul id="documents" class="documents"><li class="empty">Loading...</li></ul>
        <h2>Widgets</h2>
        <table class="widgets">
            <thead>
                <tr><th>ID</th><th>Tag</th><th>Source</th><th>Title</th></tr>
            </thead>
            <tbody id="widget-rows">
                <tr><td colspan="4" class="empty">Loading...</td></tr>
            </tbody>
        </table>
    </div>

    <script>
        let ws;
        let reconnectInterval;

        function connect() {
            const protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
            ws = new WebSocket(protocol + '//' + window.location.host + '/ws');

            ws.onopen = function() {
                document.getElementById('status').className = 'status connected';
                document.getElementById('status').textContent = 'Connected';
                clearInterval(reconnectInterval);
                loadDocuments();
                loadWidgets();
            };

            ws.onmessage = function(event) {
                const message = JSON.parse(event.data);
                handleMessage(message);
            };

            ws.onclose = function() {
                document.getElementById('status').className = 'status disconnected';
                document.getElementById('status').textContent = 'Disconnected';

                // Try to reconnect
                reconnectInterval = setInterval(connect, 2000);
            };
        }

        function handleMessage(message) {
            switch (message.type) {
                case 'full_reload':
                    loadDocuments();
                    loadWidgets();
                    break;
                case 'widget_update':
                    loadWidgets();
                    break;
            }
        }

        function esc(s) {
            return String(s)
                .replace(/&/g, '&amp;')
                .replace(/</g, '&lt;')
                .replace(/>/g, '&gt;')
                .replace(/"/g, '&quot;');
        }

        function loadDocuments() {
            fetch('/api/documents')
                .then(function(response) { return response.json(); })
                .then(function(paths) {
                    const list = document.getElementById('documents');
                    if (!paths || paths.length === 0) {
                        list.innerHTML = '<li class="empty">No documents found</li>';
                        return;
                    }
                    list.innerHTML = '';
                    paths.forEach(function(path) {
                        const item = document.createElement('li');
                        item.innerHTML = '<a href="/' + esc(path) + '">' + esc(path) + '</a>';
                        list.appendChild(item);
                    });
                });
        }

        function loadWidgets() {
            fetch('/api/widgets')
                .then(function(response) { return response.json(); })
                .then(function(widgets) {
                    const rows = document.getElementById('widget-rows');
                    if (!widgets || widgets.length === 0) {
                        rows.innerHTML = '<tr><td colspan="4" class="empty">No widgets found</td></tr>';
                        return;
                    }
                    rows.innerHTML = '';
                    widgets.forEach(function(widget) {
                        const row = document.createElement('tr');
                        row.innerHTML =
                            '<td><code>' + esc(widget.id) + '</code></td>' +
                            '<td>' + esc(widget.tag) + '</td>' +
                            '<td><a href="/' + esc(widget.document) + '">' +
                                esc(widget.document) + ':' + widget.line + '</a></td>' +
                            '<td>' + esc(widget.title) + '</td>';
                        rows.appendChild(row);
                    });
                });
        }

        connect();
    </script>
</body>
</html>`

// previewPage wraps one substituted document for the browser. The
// substituted source keeps its markdown prose as written; widget
// fragments render as markup, showing the same view a reader without
// JavaScript gets. The inline script reloads the page on changes.
const previewPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s - fencer preview</title>
    <style>
        body {
            font-family: system-ui, -apple-system, sans-serif;
            max-width: 860px;
            margin: 0 auto;
            padding: 24px;
            background: #fff;
            color: #222;
        }
        .breadcrumb { font-size: 13px; color: #666; margin-bottom: 16px; }
        .breadcrumb a { color: #007acc; text-decoration: none; }
        .page-source { white-space: pre-wrap; line-height: 1.5; }
        .page-source div { white-space: normal; }
        .page-source pre { white-space: pre; background: #f5f5f5; padding: 12px; border-radius: 4px; overflow-x: auto; }
        .interactive-error {
            border: 1px solid #dc3545;
            background: #fdf2f2;
            padding: 8px 12px;
            border-radius: 4px;
        }
        .interactive-error .admonition-title { font-weight: bold; color: #dc3545; }
    </style>
</head>
<body>
    <p class="breadcrumb"><a href="/">index</a> / %s</p>
    <div class="page-source">%s</div>
    <script>
        (function() {
            let retry;
            function connect() {
                const protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
                const ws = new WebSocket(protocol + '//' + window.location.host + '/ws');
                ws.onopen = function() { clearTimeout(retry); };
                ws.onmessage = function(event) {
                    const message = JSON.parse(event.data);
                    if (message.type === 'full_reload') {
                        window.location.reload();
                    }
                };
                ws.onclose = function() { retry = setTimeout(connect, 2000); };
            }
            connect();
        })();
    </script>
</body>
</html>`

// handleRoot serves the dashboard at / and delegates everything else
// to the page handler.
func (s *PreviewServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		s.handleIndex(w, r)
		return
	}
	s.handlePage(w, r)
}

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(indexHTML)); err != nil {
		s.logger.Error(r.Context(), err, "cannot write index response")
	}
}

// handlePage serves one built page. Markdown documents get the preview
// shell with the reload script; assets are served as stored.
func (s *PreviewServer) handlePage(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	data, ok := s.site.Get(path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if site.IsMarkdown(path) {
		name := templ.EscapeString(path)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, previewPage, name, name, data)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(data); err != nil {
		s.logger.Error(r.Context(), err, "cannot write page response", "path", path)
	}
}

// handleHealth reports server health for monitoring and tests.
func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	errs, warns := s.agg.Counts()
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"documents": s.site.Len(),
		"widgets":   s.registry.Count(),
		"diagnostics": map[string]int{
			"errors":   errs,
			"warnings": warns,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Error(r.Context(), err, "cannot encode health response")
	}
}

func (s *PreviewServer) handleDocuments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.site.Paths()); err != nil {
		s.logger.Error(r.Context(), err, "cannot encode document list")
	}
}

func (s *PreviewServer) handleWidgets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.registry.Summaries()); err != nil {
		s.logger.Error(r.Context(), err, "cannot encode widget list")
	}
}

// handleWidget returns one widget's listing row plus its full spec.
func (s *PreviewServer) handleWidget(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/widgets/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid widget id", http.StatusBadRequest)
		return
	}

	node, ok := s.registry.Get(types.WidgetID(id))
	if !ok {
		http.NotFound(w, r)
		return
	}

	response := struct {
		registry.Summary
		Spec types.WidgetSpec `json:"spec"`
	}{
		Summary: registry.Summarize(node),
		Spec:    node.Spec,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error(r.Context(), err, "cannot encode widget", "id", id)
	}
}

func (s *PreviewServer) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	diags := s.agg.All()
	errs, warns := s.agg.Counts()

	response := map[string]interface{}{
		"diagnostics": diags,
		"errors":      errs,
		"warnings":    warns,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error(r.Context(), err, "cannot encode diagnostics")
	}
}
