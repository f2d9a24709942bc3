// Package server implements the fencer preview server. It builds the
// documentation tree into memory, serves the substituted pages and
// their assets, and pushes reload messages to connected browsers when
// source files change.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/robworks/fencer/internal/config"
	"github.com/robworks/fencer/internal/diagnostics"
	"github.com/robworks/fencer/internal/logging"
	"github.com/robworks/fencer/internal/pipeline"
	"github.com/robworks/fencer/internal/registry"
	"github.com/robworks/fencer/internal/site"
	"github.com/robworks/fencer/internal/types"
	"github.com/robworks/fencer/internal/watcher"
)

// coalesceWindow bounds how often widget_update messages go out.
// Rebuilding one document fires a removed plus an added event per
// widget; browsers only need to hear about the burst once.
const coalesceWindow = 150 * time.Millisecond

// Client represents one connected reload socket.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *PreviewServer
}

// PreviewServer serves the built documentation with live reload.
type PreviewServer struct {
	config       *config.Config
	logger       logging.Logger
	httpServer   *http.Server
	serverMutex  sync.RWMutex
	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *websocket.Conn
	registry     *registry.WidgetRegistry
	watcher      *watcher.FileWatcher
	pipeline     *pipeline.Pipeline
	agg          *diagnostics.Aggregator
	site         *site.Store
	shutdownOnce sync.Once
}

// UpdateMessage is a message pushed to the browser. Type is either
// full_reload, sent after a source change has been rebuilt, or
// widget_update, sent when the widget set changed.
type UpdateMessage struct {
	Type      string    `json:"type"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a preview server for the configured docs tree. Nothing
// is built or watched until Start.
func New(cfg *config.Config, logger logging.Logger) (*PreviewServer, error) {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	logger = logger.WithComponent("server")

	debounce := time.Duration(cfg.Build.DebounceMs) * time.Millisecond
	fileWatcher, err := watcher.NewFileWatcher(debounce, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	agg := diagnostics.NewAggregator()

	return &PreviewServer{
		config:     cfg,
		logger:     logger,
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client, 8),
		unregister: make(chan *websocket.Conn, 8),
		registry:   registry.NewWidgetRegistry(),
		watcher:    fileWatcher,
		pipeline: pipeline.New(agg, pipeline.Options{
			Workers:        cfg.Build.Workers,
			QuizAllowRetry: cfg.Widgets.Quiz.AllowRetry,
		}),
		agg:  agg,
		site: site.NewStore(),
	}, nil
}

// Start builds the site, begins watching for changes, and serves until
// the listener fails or Shutdown is called.
func (s *PreviewServer) Start(ctx context.Context) error {
	if err := s.rebuildAll(ctx); err != nil {
		return err
	}

	s.setupWatcher(ctx)

	go s.runWebSocketHub(ctx)
	go s.watchRegistry(ctx)

	handler := s.routes()
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "preview server listening", "addr", addr)

	if s.config.Server.Open {
		go s.openBrowser(fmt.Sprintf("http://%s", addr))
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// routes assembles the HTTP surface: the reload socket, the health and
// widget APIs, and the catch-all page handler.
func (s *PreviewServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/documents", s.handleDocuments)
	mux.HandleFunc("/api/widgets", s.handleWidgets)
	mux.HandleFunc("/api/widgets/", s.handleWidget)
	mux.HandleFunc("/api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/", s.handleRoot)

	return s.addMiddleware(mux)
}

func (s *PreviewServer) setupWatcher(ctx context.Context) {
	// No markdown filter here: asset edits must reload the browser too.
	s.watcher.AddFilter(watcher.NoHiddenFilter)
	s.watcher.AddFilter(watcher.ExcludePatternsFilter(s.config.Docs.ExcludePatterns))
	s.watcher.ExcludeDirs(s.config.Docs.ExcludePatterns...)
	s.watcher.AddHandler(s.handleFileChange)

	if err := s.watcher.AddRecursive(s.config.Docs.SourceDir); err != nil {
		s.logger.Warn(ctx, err, "cannot watch docs directory", "dir", s.config.Docs.SourceDir)
	}
	if err := s.watcher.Start(ctx); err != nil {
		s.logger.Warn(ctx, err, "cannot start file watcher")
	}
}

// rebuildAll loads the whole source tree and rebuilds every document
// from scratch. Used once at startup; later changes apply incrementally.
func (s *PreviewServer) rebuildAll(ctx context.Context) error {
	tree, err := site.LoadTree(s.config.Docs.SourceDir, s.config.Docs.ExcludePatterns)
	if err != nil {
		return err
	}

	s.pipeline.Reset()
	s.agg.Clear()
	s.registry.Clear()

	results, err := s.pipeline.ProcessAll(ctx, tree.Documents)
	if err != nil {
		return err
	}

	for _, asset := range tree.Assets {
		s.site.Put(asset.Path, asset.Data)
	}
	for _, result := range results {
		s.applyResult(ctx, result)
	}

	s.logger.Info(ctx, "site built",
		"documents", len(tree.Documents),
		"assets", len(tree.Assets),
		"widgets", s.registry.Count(),
		"diagnostics", s.agg.Len())

	return nil
}

// applyResult publishes one document's build output: the page bytes
// and its widgets. Hydration dry-run findings surface as warnings in
// watch mode rather than failing the build.
func (s *PreviewServer) applyResult(ctx context.Context, result pipeline.DocumentResult) {
	s.site.Put(result.DocumentID, []byte(result.Output))

	s.registry.RemoveDocument(result.DocumentID)
	for _, node := range result.Widgets {
		s.registry.Register(node)
	}

	for _, diag := range s.pipeline.VerifyHydration(result) {
		s.logger.Warn(ctx, nil, diag.Message,
			"document", diag.DocumentID,
			"line", diag.Line)
	}
}

// handleFileChange applies one debounced batch of source changes.
// Markdown edits rebuild just the affected documents; assets are
// copied straight into the page store. One reload goes out per batch.
func (s *PreviewServer) handleFileChange(events []watcher.ChangeEvent) error {
	ctx := context.Background()

	var docs []types.Document
	var touched []string

	for _, event := range events {
		rel, err := filepath.Rel(s.config.Docs.SourceDir, event.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		id := filepath.ToSlash(rel)

		// A rename delivers the old path only; the new path arrives
		// as its own create event.
		gone := event.Type == watcher.EventTypeDeleted || event.Type == watcher.EventTypeRenamed

		s.logger.Debug(ctx, "file changed", "path", id, "event", event.Type.String())

		switch {
		case site.IsMarkdown(event.Path) && gone:
			s.site.Remove(id)
			s.registry.RemoveDocument(id)
			s.agg.RemoveDocument(id)
			s.pipeline.ForgetDocument(id)
			touched = append(touched, id)
		case site.IsMarkdown(event.Path):
			doc, err := site.LoadDocument(s.config.Docs.SourceDir, event.Path)
			if err != nil {
				s.logger.Warn(ctx, err, "cannot reload document", "path", id)
				continue
			}
			s.pipeline.ForgetDocument(id)
			s.agg.RemoveDocument(id)
			docs = append(docs, doc)
			touched = append(touched, id)
		case gone:
			s.site.Remove(id)
			touched = append(touched, id)
		default:
			data, err := os.ReadFile(event.Path)
			if err != nil {
				s.logger.Warn(ctx, err, "cannot reload asset", "path", id)
				continue
			}
			s.site.Put(id, data)
			touched = append(touched, id)
		}
	}

	if len(docs) > 0 {
		results, err := s.pipeline.ProcessAll(ctx, docs)
		if err != nil {
			return err
		}
		for _, result := range results {
			s.applyResult(ctx, result)
		}
	}

	if len(touched) == 0 {
		return nil
	}

	msg := UpdateMessage{Type: "full_reload", Timestamp: time.Now()}
	if len(touched) == 1 {
		msg.Path = touched[0]
	}
	s.broadcastMessage(msg)

	return nil
}

// watchRegistry folds bursts of widget events into single
// widget_update pushes, which the index page uses to refresh its
// widget table without a full reload.
func (s *PreviewServer) watchRegistry(ctx context.Context) {
	events := s.registry.Watch()
	defer s.registry.UnWatch(events)

	var mu sync.Mutex
	var pending *time.Timer

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			mu.Lock()
			if pending == nil {
				pending = time.AfterFunc(coalesceWindow, func() {
					mu.Lock()
					pending = nil
					mu.Unlock()
					s.broadcastMessage(UpdateMessage{Type: "widget_update", Timestamp: time.Now()})
				})
			}
			mu.Unlock()
		}
	}
}

func (s *PreviewServer) broadcastMessage(msg UpdateMessage) {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(context.Background(), err, "cannot marshal update message")
		jsonData = []byte(`{"type":"full_reload"}`)
	}

	select {
	case s.broadcast <- jsonData:
	default:
		// Hub stalled or stopped; drop rather than block a rebuild.
	}
}

func (s *PreviewServer) openBrowser(url string) {
	time.Sleep(100 * time.Millisecond) // Give server time to start

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return
	}

	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		s.logger.Warn(context.Background(), err, "cannot open browser", "url", url)
	}
}

// addMiddleware wraps the routes with CORS handling and request
// logging.
func (s *PreviewServer) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

// isAllowedOrigin checks the configured cross-origin allow list.
func (s *PreviewServer) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range s.config.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// Shutdown stops watching, closes reload sockets, and drains the HTTP
// server. Safe to call more than once.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "shutting down preview server")

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "watcher stop failed")
			}
		}

		s.clientsMutex.Lock()
		for conn, client := range s.clients {
			close(client.send)
			conn.Close(websocket.StatusNormalClosure, "")
		}
		s.clients = make(map[*websocket.Conn]*Client)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}
